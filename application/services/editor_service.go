package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"mindgraph/domain/config"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/domain/events"
	domain "mindgraph/domain/services"
)

// ErrNoSelection is returned by intents that need an active node while none
// is selected
var ErrNoSelection = errors.New("no node selected")

// Selection is the editor's view of what the user is working on. Active is
// Selected, or LastSelected when nothing is selected.
type Selection struct {
	Selected     valueobjects.NodeID   `json:"selected,omitempty"`
	LastSelected valueobjects.NodeID   `json:"lastSelected,omitempty"`
	Editing      valueobjects.NodeID   `json:"editing,omitempty"`
	Multi        []valueobjects.NodeID `json:"multi,omitempty"`
}

// EditorService turns editing intents (create a child, move the selection
// left, toggle the layout) into store mutations. It keeps the selection
// state the intents depend on.
type EditorService struct {
	store      *GraphStore
	layout     *LayoutCoordinator
	selector   *domain.DirectionalSelector
	allocator  *domain.PositionAllocator
	cfg        *config.DomainConfig
	logger     *zap.Logger
	autoLayout bool

	mu  sync.Mutex
	sel Selection
}

// NewEditorService creates the service. layout may be nil, which disables
// relayout after structural edits regardless of autoLayout.
func NewEditorService(store *GraphStore, layout *LayoutCoordinator, cfg *config.DomainConfig, logger *zap.Logger, autoLayout bool) *EditorService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &EditorService{
		store:      store,
		layout:     layout,
		selector:   domain.NewDirectionalSelector(cfg),
		allocator:  domain.NewPositionAllocator(cfg),
		cfg:        cfg,
		logger:     logger,
		autoLayout: autoLayout && layout != nil,
	}
	store.Subscribe(e.onStoreEvent)
	return e
}

// Store returns the store the editor works on
func (e *EditorService) Store() *GraphStore {
	return e.store
}

// Selection returns a copy of the selection state
func (e *EditorService) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.sel
	out.Multi = append([]valueobjects.NodeID(nil), e.sel.Multi...)
	return out
}

// Select makes id the selected node. A zero id clears the selection but
// remembers the last selected node.
func (e *EditorService) Select(id valueobjects.NodeID) error {
	if !id.IsZero() {
		if m := e.store.Current(); m == nil || !m.HasNode(id) {
			return aggregates.ErrNodeNotFound
		}
	}
	e.mu.Lock()
	e.selectLocked(id)
	e.mu.Unlock()
	return nil
}

func (e *EditorService) selectLocked(id valueobjects.NodeID) {
	e.sel.Selected = id
	if !id.IsZero() {
		e.sel.LastSelected = id
	}
	e.sel.Multi = nil
}

// ToggleMultiSelect adds id to or removes it from the multi-selection used
// by LayoutSelection
func (e *EditorService) ToggleMultiSelect(id valueobjects.NodeID) error {
	if m := e.store.Current(); m == nil || !m.HasNode(id) {
		return aggregates.ErrNodeNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cur := range e.sel.Multi {
		if cur == id {
			e.sel.Multi = append(e.sel.Multi[:i], e.sel.Multi[i+1:]...)
			e.sel.LastSelected = id
			return nil
		}
	}
	e.sel.Multi = append(e.sel.Multi, id)
	e.sel.LastSelected = id
	return nil
}

// active returns the node intents apply to, if it still exists
func (e *EditorService) active(m *aggregates.MindMap) (entities.Node, bool) {
	e.mu.Lock()
	id := e.sel.Selected
	if id.IsZero() {
		id = e.sel.LastSelected
	}
	e.mu.Unlock()

	if id.IsZero() || m == nil {
		return entities.Node{}, false
	}
	return m.GetNode(id)
}

// CreateChild adds a node under the active node, one step along the layout
// direction, and selects it.
func (e *EditorService) CreateChild(ctx context.Context) (valueobjects.NodeID, error) {
	m := e.store.Current()
	if m == nil {
		return "", ErrNoCurrentMap
	}
	parent, ok := e.active(m)
	if !ok {
		return "", ErrNoSelection
	}

	pos := e.allocator.ChildPosition(parent.Position, m.LayoutDirection)
	return e.create(ctx, m, pos, parent.ID)
}

// CreateSibling adds a node next to the active node under its first parent.
// A node without parents gets an unconnected sibling. With nothing selected
// the first node of the map becomes selected and nothing is created.
func (e *EditorService) CreateSibling(ctx context.Context) (valueobjects.NodeID, error) {
	m := e.store.Current()
	if m == nil {
		return "", ErrNoCurrentMap
	}
	node, ok := e.active(m)
	if !ok {
		if len(m.Nodes) > 0 {
			e.mu.Lock()
			e.selectLocked(m.Nodes[0].ID)
			e.mu.Unlock()
		}
		return "", ErrNoSelection
	}

	var parentID valueobjects.NodeID
	if parents := domain.NewRelationIndex(m.Nodes, m.Edges).ParentsOf(node.ID); len(parents) > 0 {
		parentID = parents[0]
	}
	pos := e.allocator.SiblingPosition(node.Position, m.LayoutDirection)
	return e.create(ctx, m, pos, parentID)
}

func (e *EditorService) create(ctx context.Context, m *aggregates.MindMap, pos valueobjects.Position, parentID valueobjects.NodeID) (valueobjects.NodeID, error) {
	pos = e.allocator.AvoidOverlap(pos, m.Nodes, domain.SpreadAxis(m.LayoutDirection))
	sourceHandle, targetHandle := valueobjects.HandlesFor(m.LayoutDirection)

	id, err := e.store.AddNode(entities.NodeDraft{
		Content:  entities.TextContent(e.cfg.NewNodeText),
		Position: pos,
	}, ParentLink{
		ParentID:     parentID,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	})
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	e.selectLocked(id)
	e.mu.Unlock()

	e.relayout(ctx)
	return id, nil
}

// DeleteSelected removes the active node and clears the selection
func (e *EditorService) DeleteSelected(ctx context.Context) (valueobjects.NodeID, error) {
	m := e.store.Current()
	if m == nil {
		return "", ErrNoCurrentMap
	}
	node, ok := e.active(m)
	if !ok {
		return "", ErrNoSelection
	}
	if err := e.store.DeleteNode(node.ID); err != nil {
		return "", err
	}

	e.mu.Lock()
	e.sel.Selected = ""
	e.sel.LastSelected = ""
	if e.sel.Editing == node.ID {
		e.sel.Editing = ""
	}
	e.mu.Unlock()

	e.relayout(ctx)
	return node.ID, nil
}

// Navigate moves the selection to the nearest node in dir, starting from
// the active node or the first node of the map. When nothing lies that way
// and nothing is selected, the last selected node is reselected.
func (e *EditorService) Navigate(dir valueobjects.Direction) (valueobjects.NodeID, bool) {
	m := e.store.Current()
	if m == nil || len(m.Nodes) == 0 {
		return "", false
	}

	origin := m.Nodes[0].ID
	if node, ok := e.active(m); ok {
		origin = node.ID
	}
	target, found := e.selector.NearestInDirection(origin, dir, m.Nodes)

	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case found:
		e.selectLocked(target.ID)
		return target.ID, true
	case e.sel.Selected.IsZero() && !e.sel.LastSelected.IsZero() && m.HasNode(e.sel.LastSelected):
		e.selectLocked(e.sel.LastSelected)
		return e.sel.Selected, true
	default:
		return "", false
	}
}

// BeginEdit marks the active node as being edited
func (e *EditorService) BeginEdit() (valueobjects.NodeID, error) {
	m := e.store.Current()
	node, ok := e.active(m)
	if !ok {
		return "", ErrNoSelection
	}
	e.mu.Lock()
	e.selectLocked(node.ID)
	e.sel.Editing = node.ID
	e.mu.Unlock()
	return node.ID, nil
}

// FinishEdit ends editing
func (e *EditorService) FinishEdit() {
	e.mu.Lock()
	e.sel.Editing = ""
	e.mu.Unlock()
}

// ToggleLayoutDirection cycles DOWN, RIGHT, UP, LEFT and relays out
func (e *EditorService) ToggleLayoutDirection(ctx context.Context) (valueobjects.LayoutDirection, error) {
	m := e.store.Current()
	if m == nil {
		return "", ErrNoCurrentMap
	}
	next := m.LayoutDirection.Next()
	if err := e.store.SetLayoutDirection(next); err != nil {
		return "", err
	}
	e.relayout(ctx)
	return next, nil
}

// SetLayoutDirection switches to dir and relays out
func (e *EditorService) SetLayoutDirection(ctx context.Context, dir valueobjects.LayoutDirection) error {
	if err := e.store.SetLayoutDirection(dir); err != nil {
		return err
	}
	e.relayout(ctx)
	return nil
}

// Undo steps the store back and reports whether anything changed
func (e *EditorService) Undo() bool {
	return e.store.Undo()
}

// Redo steps the store forward and reports whether anything changed
func (e *EditorService) Redo() bool {
	return e.store.Redo()
}

// LayoutSelection relays out the multi-selection, or the whole map when it
// is empty
func (e *EditorService) LayoutSelection(ctx context.Context) (int, error) {
	if e.layout == nil {
		return 0, nil
	}
	sel := e.Selection()
	return e.layout.ApplySubset(ctx, e.store, sel.Multi)
}

// LayoutNodes relays out the given nodes, or the whole map when ids is
// empty
func (e *EditorService) LayoutNodes(ctx context.Context, ids []valueobjects.NodeID) (int, error) {
	if e.layout == nil {
		return 0, nil
	}
	return e.layout.ApplySubset(ctx, e.store, ids)
}

// LayoutAsync starts laying out ids (or the whole map) in the background and
// returns at once. Nodes deleted before the engine finishes are skipped.
// It reports false when no layout engine is configured.
func (e *EditorService) LayoutAsync(ctx context.Context, ids []valueobjects.NodeID) bool {
	if e.layout == nil {
		return false
	}
	done := e.layout.ApplyAsync(context.WithoutCancel(ctx), e.store, ids)
	go func() {
		out := <-done
		if out.Err != nil {
			e.logger.Warn("Background layout failed", zap.Error(out.Err))
			return
		}
		e.logger.Debug("Background layout applied", zap.Int("moved", out.Moved))
	}()
	return true
}

func (e *EditorService) relayout(ctx context.Context) {
	if !e.autoLayout {
		return
	}
	if _, err := e.layout.Apply(ctx, e.store); err != nil {
		e.logger.Warn("Auto layout failed", zap.Error(err))
	}
}

// onStoreEvent drops selection entries that no longer exist, which happens
// after undo, redo, deletes and map replacement.
func (e *EditorService) onStoreEvent(events.DomainEvent) {
	m := e.store.Current()

	e.mu.Lock()
	defer e.mu.Unlock()
	exists := func(id valueobjects.NodeID) bool { return m != nil && m.HasNode(id) }

	if !e.sel.Selected.IsZero() && !exists(e.sel.Selected) {
		e.sel.Selected = ""
	}
	if !e.sel.LastSelected.IsZero() && !exists(e.sel.LastSelected) {
		e.sel.LastSelected = ""
	}
	if !e.sel.Editing.IsZero() && !exists(e.sel.Editing) {
		e.sel.Editing = ""
	}
	kept := e.sel.Multi[:0]
	for _, id := range e.sel.Multi {
		if exists(id) {
			kept = append(kept, id)
		}
	}
	e.sel.Multi = kept
}
