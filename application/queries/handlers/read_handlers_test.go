package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/application/queries"
	"mindgraph/application/queries/bus"
	"mindgraph/application/services"
	"mindgraph/domain/config"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/infrastructure/persistence/memory"
	"mindgraph/pkg/common"
)

type countingRecorder map[string]int

func (c countingRecorder) RecordQuery(name string, err error) {
	if err != nil {
		name += ":error"
	}
	c[name]++
}

// newReadFixture builds root -> a, root -> b, a -> c with a at the left of b
func newReadFixture(t *testing.T, rec countingRecorder) (*bus.QueryBus, *services.GraphStore, map[string]valueobjects.NodeID) {
	t.Helper()
	cfg := config.DefaultDomainConfig()
	store := services.NewGraphStore(cfg, zap.NewNop())
	m := store.CreateMap("reads")
	root := m.Nodes[0].ID

	add := func(parent valueobjects.NodeID, x, y float64) valueobjects.NodeID {
		id, err := store.AddNode(entities.NodeDraft{Position: valueobjects.Position{X: x, Y: y}}, services.ParentLink{ParentID: parent})
		require.NoError(t, err)
		return id
	}
	a := add(root, 0, 200)
	b := add(root, 300, 200)
	c := add(a, 0, 400)

	editor := services.NewEditorService(store, nil, cfg, zap.NewNop(), false)
	docs := services.NewDocumentService(store, memory.NewMapRepository(), nil, cfg, zap.NewNop())

	qb := bus.NewQueryBus(bus.LoggingMiddleware(zap.NewNop()), bus.MetricsMiddleware(rec))
	require.NoError(t, NewReadHandlers(editor, docs, cfg).Register(qb))
	return qb, store, map[string]valueobjects.NodeID{"root": root, "a": a, "b": b, "c": c}
}

func TestReadHandlers_Relations(t *testing.T) {
	qb, _, ids := newReadFixture(t, countingRecorder{})

	res, err := qb.Ask(context.Background(), queries.RelationsQuery{NodeID: ids["a"]})
	require.NoError(t, err)
	rel := res.(queries.Relations)
	assert.Equal(t, []valueobjects.NodeID{ids["root"]}, rel.Parents)
	assert.Equal(t, []valueobjects.NodeID{ids["c"]}, rel.Children)
	assert.Equal(t, []valueobjects.NodeID{ids["b"]}, rel.Siblings)
	assert.Equal(t, ids["b"], rel.NextSibling)

	res, err = qb.Ask(context.Background(), queries.RelationsQuery{NodeID: ids["root"]})
	require.NoError(t, err)
	assert.Empty(t, res.(queries.Relations).Parents)
	assert.NotNil(t, res.(queries.Relations).Parents)

	_, err = qb.Ask(context.Background(), queries.RelationsQuery{NodeID: "ghost"})
	assert.ErrorIs(t, err, aggregates.ErrNodeNotFound)
}

func TestReadHandlers_Nearest(t *testing.T) {
	qb, _, ids := newReadFixture(t, countingRecorder{})

	res, err := qb.Ask(context.Background(), queries.NearestQuery{NodeID: ids["a"], Direction: valueobjects.DirectionRight})
	require.NoError(t, err)
	assert.Equal(t, queries.Nearest{NodeID: ids["b"], Found: true}, res)

	res, err = qb.Ask(context.Background(), queries.NearestQuery{NodeID: ids["b"], Direction: valueobjects.DirectionRight})
	require.NoError(t, err)
	assert.False(t, res.(queries.Nearest).Found)

	_, err = qb.Ask(context.Background(), queries.NearestQuery{NodeID: ids["a"], Direction: "sideways"})
	assert.ErrorIs(t, err, bus.ErrValidationFailed)
}

func TestReadHandlers_CyclesAndHistory(t *testing.T) {
	qb, store, ids := newReadFixture(t, countingRecorder{})

	res, err := qb.Ask(context.Background(), queries.CyclesQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.(queries.Cycles).Cycles)

	_, err = store.AddEdge(ids["c"], ids["root"], "", "", "")
	require.NoError(t, err)
	res, err = qb.Ask(context.Background(), queries.CyclesQuery{})
	require.NoError(t, err)
	assert.Len(t, res.(queries.Cycles).Cycles, 1)

	res, err = qb.Ask(context.Background(), queries.HistoryQuery{})
	require.NoError(t, err)
	h := res.(services.HistoryState)
	assert.True(t, h.CanUndo)
	assert.False(t, h.CanRedo)
}

func TestReadHandlers_GetMapAndDocuments(t *testing.T) {
	rec := countingRecorder{}
	qb, _, _ := newReadFixture(t, rec)

	res, err := qb.Ask(context.Background(), queries.GetMapQuery{})
	require.NoError(t, err)
	view := res.(queries.MapView)
	assert.Len(t, view.Map.Nodes, 4)
	assert.True(t, view.Dirty)

	res, err = qb.Ask(context.Background(), queries.ListDocumentsQuery{})
	require.NoError(t, err)
	page := res.(common.Page[ports.MapMeta])
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.Page)

	_, err = qb.Ask(context.Background(), queries.ListDocumentsQuery{PageSize: 500})
	assert.ErrorIs(t, err, bus.ErrValidationFailed)

	assert.Equal(t, 1, rec["GetMapQuery"])
	assert.Equal(t, 1, rec["ListDocumentsQuery"])
}

func TestReadHandlers_NoCurrentMap(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	store := services.NewGraphStore(cfg, zap.NewNop())
	editor := services.NewEditorService(store, nil, cfg, zap.NewNop(), false)
	docs := services.NewDocumentService(store, memory.NewMapRepository(), nil, cfg, zap.NewNop())
	rec := countingRecorder{}
	qb := bus.NewQueryBus(bus.MetricsMiddleware(rec))
	require.NoError(t, NewReadHandlers(editor, docs, cfg).Register(qb))

	_, err := qb.Ask(context.Background(), queries.GetMapQuery{})
	assert.ErrorIs(t, err, services.ErrNoCurrentMap)
	_, err = qb.Ask(context.Background(), queries.CyclesQuery{})
	assert.ErrorIs(t, err, services.ErrNoCurrentMap)
	assert.Equal(t, 2, len(rec))
	assert.Equal(t, 1, rec["GetMapQuery:error"])
}
