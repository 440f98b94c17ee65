package handlers

import (
	"context"

	"mindgraph/application/queries"
	"mindgraph/application/queries/bus"
	"mindgraph/application/services"
	"mindgraph/domain/config"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
	domain "mindgraph/domain/services"
	"mindgraph/pkg/common"
)

// ReadHandlers answers queries from the editor's current state. Relations
// are derived from a fresh snapshot on every call.
type ReadHandlers struct {
	editor    *services.EditorService
	documents *services.DocumentService
	selector  *domain.DirectionalSelector
}

func NewReadHandlers(editor *services.EditorService, documents *services.DocumentService, cfg *config.DomainConfig) *ReadHandlers {
	return &ReadHandlers{
		editor:    editor,
		documents: documents,
		selector:  domain.NewDirectionalSelector(cfg),
	}
}

// Register installs every query handler on b
func (h *ReadHandlers) Register(b *bus.QueryBus) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandlerFunc
	}{
		{queries.GetMapQuery{}, h.getMap},
		{queries.RelationsQuery{}, h.relations},
		{queries.NearestQuery{}, h.nearest},
		{queries.CyclesQuery{}, h.cycles},
		{queries.HistoryQuery{}, h.history},
		{queries.ListDocumentsQuery{}, h.listDocuments},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *ReadHandlers) getMap(_ context.Context, _ bus.Query) (interface{}, error) {
	store := h.editor.Store()
	m := store.Current()
	if m == nil {
		return nil, services.ErrNoCurrentMap
	}
	return queries.MapView{
		Map:       m,
		FileID:    store.CurrentFileID(),
		Dirty:     store.IsDirty(),
		History:   store.HistoryState(),
		Selection: h.editor.Selection(),
	}, nil
}

func (h *ReadHandlers) relations(_ context.Context, q bus.Query) (interface{}, error) {
	id := q.(queries.RelationsQuery).NodeID
	nodes, edges, _, ok := h.editor.Store().Snapshot()
	if !ok {
		return nil, services.ErrNoCurrentMap
	}
	if !contains(nodes, id) {
		return nil, aggregates.ErrNodeNotFound
	}

	idx := domain.NewRelationIndex(nodes, edges)
	out := queries.Relations{
		NodeID:   id,
		Parents:  nonNil(idx.ParentsOf(id)),
		Children: nonNil(idx.ChildrenOf(id)),
		Siblings: nonNil(idx.SiblingsOf(id)),
	}
	if n, ok := idx.NextSibling(id); ok {
		out.NextSibling = n.ID
	}
	if n, ok := idx.PrevSibling(id); ok {
		out.PrevSibling = n.ID
	}
	return out, nil
}

func (h *ReadHandlers) nearest(_ context.Context, q bus.Query) (interface{}, error) {
	nq := q.(queries.NearestQuery)
	nodes, _, _, ok := h.editor.Store().Snapshot()
	if !ok {
		return nil, services.ErrNoCurrentMap
	}
	if !contains(nodes, nq.NodeID) {
		return nil, aggregates.ErrNodeNotFound
	}
	n, found := h.selector.NearestInDirection(nq.NodeID, nq.Direction, nodes)
	return queries.Nearest{NodeID: n.ID, Found: found}, nil
}

func (h *ReadHandlers) cycles(_ context.Context, _ bus.Query) (interface{}, error) {
	_, edges, _, ok := h.editor.Store().Snapshot()
	if !ok {
		return nil, services.ErrNoCurrentMap
	}
	found := domain.DetectCycles(edges)
	if found == nil {
		found = [][]valueobjects.NodeID{}
	}
	return queries.Cycles{Cycles: found}, nil
}

func (h *ReadHandlers) history(_ context.Context, _ bus.Query) (interface{}, error) {
	return h.editor.Store().HistoryState(), nil
}

func (h *ReadHandlers) listDocuments(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.ListDocumentsQuery)
	metas, err := h.documents.List(ctx)
	if err != nil {
		return nil, err
	}
	return common.Paginate(metas, common.PageParams{Page: query.Page, PageSize: query.PageSize}), nil
}

func contains(nodes []entities.Node, id valueobjects.NodeID) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func nonNil(ids []valueobjects.NodeID) []valueobjects.NodeID {
	if ids == nil {
		return []valueobjects.NodeID{}
	}
	return ids
}
