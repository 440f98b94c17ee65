package services

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindgraph/domain/config"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/domain/events"
)

// ErrNoCurrentMap is returned by every mutation while no map is loaded
var ErrNoCurrentMap = errors.New("no current map")

// errUnchanged lets a mutation finish without publishing anything
var errUnchanged = errors.New("unchanged")

// StoreMetrics receives engine activity. *observability.Collector
// satisfies it.
type StoreMetrics interface {
	MutationApplied(op string)
	MutationRejected(op, reason string)
	HistoryMoved(direction string)
	HistoryDepthChanged(n int)
}

// Observer is notified of every change to the store, after the change is
// visible to readers.
type Observer func(event events.DomainEvent)

// HistoryState describes the undo timeline. Index is the position of the
// current map in a timeline of Length entries.
type HistoryState struct {
	Length  int  `json:"length"`
	Index   int  `json:"index"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

// ParentLink optionally attaches a new node under an existing one
type ParentLink struct {
	ParentID     valueobjects.NodeID
	SourceHandle valueobjects.Handle
	TargetHandle valueobjects.Handle
}

// PositionUpdate moves one node
type PositionUpdate struct {
	ID       valueobjects.NodeID   `json:"id"`
	Position valueobjects.Position `json:"position"`
}

// GraphStore owns the current mind map and is the only way to change it.
//
// Every structural mutation snapshots the map first so it can be undone.
// Mutations that would break an invariant leave the map untouched and
// report why through the returned error; callers that only care about the
// outcome can ignore it. Maps handed out by Current are copies.
type GraphStore struct {
	mu      sync.RWMutex
	cfg     *config.DomainConfig
	logger  *zap.Logger
	metrics StoreMetrics
	now     func() time.Time

	current  *aggregates.MindMap
	fileID   string
	dirty    bool
	revision uint64
	past    []*aggregates.MindMap
	future  []*aggregates.MindMap

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// StoreOption customises a GraphStore
type StoreOption func(*GraphStore)

// WithClock replaces the time source
func WithClock(now func() time.Time) StoreOption {
	return func(s *GraphStore) { s.now = now }
}

// WithStoreMetrics reports store activity to m
func WithStoreMetrics(m StoreMetrics) StoreOption {
	return func(s *GraphStore) { s.metrics = m }
}

// NewGraphStore creates an empty store. No map is current until CreateMap or
// SetCurrentMap is called.
func NewGraphStore(cfg *config.DomainConfig, logger *zap.Logger, opts ...StoreOption) *GraphStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &GraphStore{
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer and returns a function that removes it
func (s *GraphStore) Subscribe(o Observer) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *GraphStore) notify(evts []events.DomainEvent) {
	if len(evts) == 0 {
		return
	}
	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.obsMu.Unlock()

	for _, e := range evts {
		for _, o := range observers {
			o(e)
		}
	}
}

// Current returns a copy of the current map, or nil when none is loaded
func (s *GraphStore) Current() *aggregates.MindMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Snapshot returns copies of the current nodes and edges together with the
// layout direction. ok is false when no map is loaded.
func (s *GraphStore) Snapshot() (nodes []entities.Node, edges []entities.Edge, dir valueobjects.LayoutDirection, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, nil, "", false
	}
	c := s.current.Clone()
	return c.Nodes, c.Edges, c.LayoutDirection, true
}

// CurrentFileID returns the storage id of the current map, empty if it was
// never saved
func (s *GraphStore) CurrentFileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fileID
}

// IsDirty reports unsaved changes
func (s *GraphStore) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// SaveSnapshot returns a copy of the current map together with its file id
// and revision. The revision changes with every mutation, undo, redo and
// map replacement. m is nil when no map is loaded.
func (s *GraphStore) SaveSnapshot() (m *aggregates.MindMap, fileID string, revision uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone(), s.fileID, s.revision
}

// MarkSaved records that revision of map mapID was stored as fileID. The
// file id is kept as long as mapID is still current, but the dirty flag is
// cleared only when nothing changed since revision. It reports whether the
// map is now clean.
func (s *GraphStore) MarkSaved(mapID valueobjects.MapID, fileID string, revision uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != mapID {
		return false
	}
	s.fileID = fileID
	if s.revision == revision {
		s.dirty = false
	}
	return !s.dirty
}

// Detach forgets the document backing the current map when it is fileID,
// leaving the map open and unsaved. It returns the current map's id and
// whether anything changed.
func (s *GraphStore) Detach(fileID string) (valueobjects.MapID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || fileID == "" || s.fileID != fileID {
		return "", false
	}
	s.fileID = ""
	s.dirty = true
	s.revision++
	return s.current.ID, true
}

// HistoryState returns the shape of the undo timeline
func (s *GraphStore) HistoryState() HistoryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return HistoryState{Index: -1}
	}
	return HistoryState{
		Length:  len(s.past) + 1 + len(s.future),
		Index:   len(s.past),
		CanUndo: len(s.past) > 0,
		CanRedo: len(s.future) > 0,
	}
}

// CreateMap replaces the current map with a fresh one holding a single root
// node at the origin. History restarts. An empty name uses the default.
func (s *GraphStore) CreateMap(name string) *aggregates.MindMap {
	if name == "" {
		name = s.cfg.DefaultMapName
	}
	m := aggregates.NewMindMap(name, entities.TextContent(s.cfg.RootNodeText), s.now())
	s.replace(m, "")
	return m.Clone()
}

// SetCurrentMap makes m the current map, as after opening a document.
// History restarts and the map counts as saved.
func (s *GraphStore) SetCurrentMap(m *aggregates.MindMap, fileID string) {
	if m == nil {
		return
	}
	c := m.Clone()
	c.Normalize()
	s.replace(c, fileID)
}

func (s *GraphStore) replace(m *aggregates.MindMap, fileID string) {
	s.mu.Lock()
	s.current = m
	s.fileID = fileID
	s.dirty = false
	s.revision++
	s.past = nil
	s.future = nil
	s.mu.Unlock()

	s.logger.Info("Map loaded",
		zap.String("mapID", m.ID.String()),
		zap.String("fileID", fileID),
		zap.Int("nodes", len(m.Nodes)),
		zap.Int("edges", len(m.Edges)),
	)
	s.historyDepth(0)
	s.notify([]events.DomainEvent{events.NewMapReplaced(m.ID, m.Name, fileID, s.now().UTC())})
}

// mutate runs fn against a copy of the current map and publishes the copy
// if fn succeeds. With checkpoint set the previous map is pushed onto the
// undo stack first.
func (s *GraphStore) mutate(op string, checkpoint bool, fn func(m *aggregates.MindMap, now time.Time) error) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		s.rejected(op, ErrNoCurrentMap)
		return ErrNoCurrentMap
	}

	next := s.current.Clone()
	if err := fn(next, s.now()); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return nil
		}
		s.rejected(op, err)
		return err
	}

	if checkpoint {
		s.past = append(s.past, s.current)
		if over := len(s.past) - s.cfg.HistoryLimit; over > 0 {
			s.past = append([]*aggregates.MindMap(nil), s.past[over:]...)
		}
		s.future = nil
	}
	evts := next.GetUncommittedEvents()
	next.MarkEventsAsCommitted()
	s.current = next
	s.dirty = true
	s.revision++
	depth := len(s.past)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.MutationApplied(op)
	}
	if checkpoint {
		s.historyDepth(depth)
	}
	s.notify(evts)
	return nil
}

func (s *GraphStore) rejected(op string, err error) {
	reason := rejectionReason(err)
	s.logger.Debug("Mutation rejected",
		zap.String("operation", op),
		zap.String("reason", reason),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.MutationRejected(op, reason)
	}
}

func (s *GraphStore) historyDepth(n int) {
	if s.metrics != nil {
		s.metrics.HistoryDepthChanged(n)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrNoCurrentMap):
		return "no_map"
	case errors.Is(err, aggregates.ErrSelfLoop):
		return "self_loop"
	case errors.Is(err, aggregates.ErrDuplicateEdge):
		return "duplicate_edge"
	case errors.Is(err, aggregates.ErrLastNode):
		return "last_node"
	case errors.Is(err, aggregates.ErrNodeNotFound):
		return "node_not_found"
	case errors.Is(err, aggregates.ErrEdgeNotFound):
		return "edge_not_found"
	case errors.Is(err, aggregates.ErrInvalidDirection):
		return "invalid_direction"
	default:
		return "other"
	}
}

// AddNode creates a node from draft and returns its new id. When parent
// names an existing node an edge from it to the new node is added in the
// same step; a parent that does not exist is ignored.
func (s *GraphStore) AddNode(draft entities.NodeDraft, parent ParentLink) (valueobjects.NodeID, error) {
	id := valueobjects.NewNodeID()
	err := s.mutate("addNode", true, func(m *aggregates.MindMap, now time.Time) error {
		n := entities.Node{
			ID:       id,
			Content:  draft.Content,
			Position: draft.Position,
			Width:    draft.Width,
			Height:   draft.Height,
		}
		if err := m.AddNode(n, now); err != nil {
			return err
		}

		var parentID valueobjects.NodeID
		if !parent.ParentID.IsZero() && m.HasNode(parent.ParentID) {
			parentID = parent.ParentID
			edge := entities.Edge{
				ID:           valueobjects.NewEdgeID(),
				Source:       parentID,
				Target:       id,
				SourceHandle: parent.SourceHandle,
				TargetHandle: parent.TargetHandle,
			}
			if err := m.ConnectNodes(edge, now); err != nil {
				return err
			}
		}
		m.RecordEvent(events.NewNodeAdded(m.ID, id, parentID, m.UpdatedAt))
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateNode merges patch into the node. Unknown ids change nothing and take
// no snapshot.
func (s *GraphStore) UpdateNode(id valueobjects.NodeID, patch entities.NodePatch) error {
	return s.mutate("updateNode", true, func(m *aggregates.MindMap, now time.Time) error {
		return m.UpdateNode(id, patch, now)
	})
}

// DeleteNode removes a node and every edge touching it. The last node of a
// map is never deleted.
func (s *GraphStore) DeleteNode(id valueobjects.NodeID) error {
	return s.mutate("deleteNode", true, func(m *aggregates.MindMap, now time.Time) error {
		_, err := m.RemoveNode(id, now)
		return err
	})
}

// UpdateNodePositions writes many positions at once without touching the
// undo history. It serves drag feedback and layout results; ids that no
// longer exist are skipped. It fails only when none of the ids exist.
func (s *GraphStore) UpdateNodePositions(updates []PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	positions := make(map[valueobjects.NodeID]valueobjects.Position, len(updates))
	for _, u := range updates {
		positions[u.ID] = u.Position
	}
	return s.mutate("updateNodePositions", false, func(m *aggregates.MindMap, now time.Time) error {
		if applied := m.SetPositions(positions, now); len(applied) == 0 {
			return aggregates.ErrNodeNotFound
		}
		return nil
	})
}

// MergePositions writes the positions of ids that still exist and returns
// how many were written. Stale ids are skipped, so a result whose nodes
// are all gone merges nothing and is not an error. History is untouched.
func (s *GraphStore) MergePositions(updates []PositionUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	positions := make(map[valueobjects.NodeID]valueobjects.Position, len(updates))
	for _, u := range updates {
		positions[u.ID] = u.Position
	}
	var written int
	err := s.mutate("mergePositions", false, func(m *aggregates.MindMap, now time.Time) error {
		written = len(m.SetPositions(positions, now))
		if written == 0 {
			return errUnchanged
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// AddEdge connects source to target and returns the new edge id. Self-loops,
// a second edge for the same ordered pair, and unknown endpoints are
// rejected before any snapshot is taken.
func (s *GraphStore) AddEdge(source, target valueobjects.NodeID, sourceHandle, targetHandle valueobjects.Handle, label string) (valueobjects.EdgeID, error) {
	id := valueobjects.NewEdgeID()
	err := s.mutate("addEdge", true, func(m *aggregates.MindMap, now time.Time) error {
		return m.ConnectNodes(entities.Edge{
			ID:           id,
			Source:       source,
			Target:       target,
			SourceHandle: sourceHandle,
			TargetHandle: targetHandle,
			Label:        label,
		}, now)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateEdge merges patch into the edge
func (s *GraphStore) UpdateEdge(id valueobjects.EdgeID, patch entities.EdgePatch) error {
	return s.mutate("updateEdge", true, func(m *aggregates.MindMap, now time.Time) error {
		return m.UpdateEdge(id, patch, now)
	})
}

// DeleteEdge removes a single edge
func (s *GraphStore) DeleteEdge(id valueobjects.EdgeID) error {
	return s.mutate("deleteEdge", true, func(m *aggregates.MindMap, now time.Time) error {
		return m.RemoveEdge(id, now)
	})
}

// SetLayoutDirection changes the flow direction used for layout
func (s *GraphStore) SetLayoutDirection(dir valueobjects.LayoutDirection) error {
	return s.mutate("setLayoutDirection", true, func(m *aggregates.MindMap, now time.Time) error {
		return m.SetLayoutDirection(dir, now)
	})
}

// RenameMap changes the map's name. Renaming is metadata and is not undoable.
func (s *GraphStore) RenameMap(name string) error {
	return s.mutate("renameMap", false, func(m *aggregates.MindMap, now time.Time) error {
		m.Rename(name, now)
		return nil
	})
}

// Undo steps back one snapshot. It reports false when there is nothing to
// undo.
func (s *GraphStore) Undo() bool {
	return s.step("undo")
}

// Redo re-applies the most recently undone snapshot. It reports false when
// there is nothing to redo.
func (s *GraphStore) Redo() bool {
	return s.step("redo")
}

func (s *GraphStore) step(direction string) bool {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return false
	}

	from, to := &s.past, &s.future
	if direction == "redo" {
		from, to = &s.future, &s.past
	}
	if len(*from) == 0 {
		s.mu.Unlock()
		return false
	}

	last := len(*from) - 1
	*to = append(*to, s.current)
	s.current = (*from)[last]
	(*from)[last] = nil
	*from = (*from)[:last]
	s.dirty = true
	s.revision++

	m := s.current
	index, length := len(s.past), len(s.past)+1+len(s.future)
	s.mu.Unlock()

	s.logger.Debug("History moved",
		zap.String("direction", direction),
		zap.Int("index", index),
		zap.Int("length", length),
	)
	if s.metrics != nil {
		s.metrics.HistoryMoved(direction)
	}
	s.historyDepth(index)
	s.notify([]events.DomainEvent{events.NewHistoryMoved(m.ID, index, length, s.now().UTC())})
	return true
}
