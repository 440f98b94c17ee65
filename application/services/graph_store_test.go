package services

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgraph/domain/config"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/domain/events"
)

// tickingClock advances one second per call so every mutation gets a
// distinct timestamp.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T, opts ...StoreOption) *GraphStore {
	t.Helper()
	opts = append([]StoreOption{WithClock(tickingClock())}, opts...)
	s := NewGraphStore(config.DefaultDomainConfig(), zap.NewNop(), opts...)
	s.CreateMap("test")
	return s
}

func rootID(t *testing.T, s *GraphStore) valueobjects.NodeID {
	t.Helper()
	m := s.Current()
	require.NotNil(t, m)
	return m.Nodes[0].ID
}

func assertNoDanglingEdges(t *testing.T, m *aggregates.MindMap) {
	t.Helper()
	ids := make(map[valueobjects.NodeID]bool)
	for _, n := range m.Nodes {
		ids[n.ID] = true
	}
	for _, e := range m.Edges {
		assert.True(t, ids[e.Source], "edge %s has dangling source", e.ID)
		assert.True(t, ids[e.Target], "edge %s has dangling target", e.ID)
	}
}

func TestMutationsWithoutMapAreNoOps(t *testing.T) {
	s := NewGraphStore(nil, nil)

	id, err := s.AddNode(entities.NodeDraft{}, ParentLink{})
	assert.ErrorIs(t, err, ErrNoCurrentMap)
	assert.True(t, id.IsZero())

	_, err = s.AddEdge("a", "b", "", "", "")
	assert.ErrorIs(t, err, ErrNoCurrentMap)
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.Nil(t, s.Current())
	assert.Equal(t, -1, s.HistoryState().Index)
}

func TestCreateMap(t *testing.T) {
	s := newTestStore(t)
	m := s.Current()

	assert.Equal(t, "test", m.Name)
	assert.Len(t, m.Nodes, 1)
	assert.Empty(t, m.Edges)
	assert.Equal(t, valueobjects.LayoutRight, m.LayoutDirection)
	assert.False(t, s.IsDirty())
	assert.Equal(t, HistoryState{Length: 1, Index: 0}, s.HistoryState())

	s.CreateMap("")
	assert.Equal(t, config.DefaultDomainConfig().DefaultMapName, s.Current().Name)
}

func TestAddNodeWithParent(t *testing.T) {
	s := newTestStore(t)
	root := rootID(t, s)

	child, err := s.AddNode(entities.NodeDraft{Content: "c", Position: valueobjects.Position{X: 200}},
		ParentLink{ParentID: root, SourceHandle: valueobjects.HandleRight, TargetHandle: valueobjects.HandleLeft})
	require.NoError(t, err)

	m := s.Current()
	require.Len(t, m.Nodes, 2)
	require.Len(t, m.Edges, 1)
	assert.Equal(t, root, m.Edges[0].Source)
	assert.Equal(t, child, m.Edges[0].Target)
	assert.Equal(t, valueobjects.HandleRight, m.Edges[0].SourceHandle)
	assert.True(t, s.IsDirty())
}

func TestAddNodeUnknownParentAddsNoEdge(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddNode(entities.NodeDraft{}, ParentLink{ParentID: "ghost"})
	require.NoError(t, err)
	assert.Len(t, s.Current().Nodes, 2)
	assert.Empty(t, s.Current().Edges)
}

func TestDeleteSoleNodeRejected(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteNode(rootID(t, s))
	assert.ErrorIs(t, err, aggregates.ErrLastNode)
	assert.Len(t, s.Current().Nodes, 1)
	assert.False(t, s.HistoryState().CanUndo, "rejected delete takes no snapshot")
}

func TestAddEdgeRules(t *testing.T) {
	s := newTestStore(t)
	a := rootID(t, s)
	b, err := s.AddNode(entities.NodeDraft{}, ParentLink{})
	require.NoError(t, err)

	id, err := s.AddEdge(a, a, "", "", "")
	assert.ErrorIs(t, err, aggregates.ErrSelfLoop)
	assert.True(t, id.IsZero())
	assert.Empty(t, s.Current().Edges)

	_, err = s.AddEdge(a, b, "", "", "")
	require.NoError(t, err)
	depth := s.HistoryState().Length

	_, err = s.AddEdge(a, b, "", "", "")
	assert.ErrorIs(t, err, aggregates.ErrDuplicateEdge)
	assert.Len(t, s.Current().Edges, 1)
	assert.Equal(t, depth, s.HistoryState().Length, "rejected edge takes no snapshot")

	_, err = s.AddEdge(b, a, "", "", "label")
	require.NoError(t, err)
	assert.Len(t, s.Current().Edges, 2)
}

func TestNoDanglingEdgesUnderRandomMutations(t *testing.T) {
	s := newTestStore(t)
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		nodes := s.Current().Nodes
		pick := func() valueobjects.NodeID { return nodes[r.Intn(len(nodes))].ID }
		switch r.Intn(3) {
		case 0:
			_, _ = s.AddNode(entities.NodeDraft{}, ParentLink{ParentID: pick()})
		case 1:
			_, _ = s.AddEdge(pick(), pick(), "", "", "")
		case 2:
			_ = s.DeleteNode(pick())
		}
		m := s.Current()
		require.NotEmpty(t, m.Nodes)
		assertNoDanglingEdges(t, m)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newTestStore(t)
	before := s.Current()
	root := before.Nodes[0].ID

	child, err := s.AddNode(entities.NodeDraft{Content: "child"}, ParentLink{ParentID: root})
	require.NoError(t, err)
	content := "edited"
	require.NoError(t, s.UpdateNode(child, entities.NodePatch{Content: &content}))
	other, err := s.AddNode(entities.NodeDraft{}, ParentLink{})
	require.NoError(t, err)
	_, err = s.AddEdge(other, child, "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.SetLayoutDirection(valueobjects.LayoutDown))
	after := s.Current()

	const n = 5
	for i := 0; i < n; i++ {
		require.True(t, s.Undo())
	}
	assert.False(t, s.Undo(), "undo at the start is a no-op")
	assert.Equal(t, before, s.Current())

	for i := 0; i < n; i++ {
		require.True(t, s.Redo())
	}
	assert.False(t, s.Redo(), "redo at the end is a no-op")
	assert.Equal(t, after, s.Current())
}

func TestMutationAfterUndoDropsRedo(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddNode(entities.NodeDraft{}, ParentLink{})
	require.NoError(t, err)
	require.True(t, s.Undo())
	assert.True(t, s.HistoryState().CanRedo)

	_, err = s.AddNode(entities.NodeDraft{}, ParentLink{})
	require.NoError(t, err)
	assert.False(t, s.HistoryState().CanRedo)
	assert.False(t, s.Redo())
}

func TestUpdateNodePositionsSkipsHistory(t *testing.T) {
	s := newTestStore(t)
	root := rootID(t, s)
	_, err := s.AddNode(entities.NodeDraft{}, ParentLink{ParentID: root})
	require.NoError(t, err)
	before := s.HistoryState()

	require.NoError(t, s.UpdateNodePositions([]PositionUpdate{
		{ID: root, Position: valueobjects.Position{X: 5, Y: 6}},
		{ID: "gone", Position: valueobjects.Position{X: 1, Y: 1}},
	}))

	assert.Equal(t, before, s.HistoryState())
	n, ok := s.Current().GetNode(root)
	require.True(t, ok)
	assert.Equal(t, valueobjects.Position{X: 5, Y: 6}, n.Position)

	err = s.UpdateNodePositions([]PositionUpdate{{ID: "gone"}})
	assert.ErrorIs(t, err, aggregates.ErrNodeNotFound)
	assert.Equal(t, before, s.HistoryState())
}

func TestHistoryIsBounded(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.HistoryLimit = 3
	s := NewGraphStore(cfg, zap.NewNop())
	s.CreateMap("bounded")

	for i := 0; i < 10; i++ {
		_, err := s.AddNode(entities.NodeDraft{}, ParentLink{})
		require.NoError(t, err)
	}
	assert.Equal(t, HistoryState{Length: 4, Index: 3, CanUndo: true}, s.HistoryState())

	undone := 0
	for s.Undo() {
		undone++
	}
	assert.Equal(t, 3, undone)
	assert.Len(t, s.Current().Nodes, 8)
}

func TestSetCurrentMapResetsState(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddNode(entities.NodeDraft{}, ParentLink{})
	require.NoError(t, err)

	loaded := aggregates.NewSampleMindMap("sample", time.Now())
	s.SetCurrentMap(loaded, "file-1")

	assert.Equal(t, "file-1", s.CurrentFileID())
	assert.False(t, s.IsDirty())
	assert.False(t, s.HistoryState().CanUndo)
	assert.Equal(t, loaded.ID, s.Current().ID)

	loaded.Name = "mutated outside"
	assert.Equal(t, "sample", s.Current().Name, "store keeps its own copy")
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	m := s.Current()
	m.Nodes[0].Content = "tampered"
	assert.NotEqual(t, "tampered", s.Current().Nodes[0].Content)
}

func TestRenameMapNotUndoable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RenameMap("renamed"))
	assert.Equal(t, "renamed", s.Current().Name)
	assert.True(t, s.IsDirty())
	assert.False(t, s.HistoryState().CanUndo)

	m, _, rev := s.SaveSnapshot()
	assert.True(t, s.MarkSaved(m.ID, "f", rev))
	assert.False(t, s.IsDirty())
	assert.Equal(t, "f", s.CurrentFileID())
}

func TestMarkSavedKeepsLaterEditsDirty(t *testing.T) {
	s := newTestStore(t)
	m, _, rev := s.SaveSnapshot()

	_, err := s.AddNode(entities.NodeDraft{}, ParentLink{ParentID: rootID(t, s)})
	require.NoError(t, err)

	assert.False(t, s.MarkSaved(m.ID, "f", rev))
	assert.True(t, s.IsDirty())
	assert.Equal(t, "f", s.CurrentFileID(), "file id is kept for the next save")

	_, _, rev = s.SaveSnapshot()
	require.True(t, s.Undo())
	assert.False(t, s.MarkSaved(m.ID, "f", rev), "undo counts as a change")
}

func TestMarkSavedIgnoresReplacedMap(t *testing.T) {
	s := newTestStore(t)
	m, _, rev := s.SaveSnapshot()

	s.CreateMap("other")
	assert.False(t, s.MarkSaved(m.ID, "f", rev))
	assert.Empty(t, s.CurrentFileID())
}

func TestMergePositionsSkipsStaleIDs(t *testing.T) {
	s := newTestStore(t)
	root := rootID(t, s)
	history := s.HistoryState()

	n, err := s.MergePositions([]PositionUpdate{
		{ID: root, Position: valueobjects.Position{X: 5, Y: 6}},
		{ID: "gone", Position: valueobjects.Position{X: 1, Y: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, history, s.HistoryState())

	_, _, rev := s.SaveSnapshot()
	n, err = s.MergePositions([]PositionUpdate{{ID: "gone"}})
	require.NoError(t, err)
	assert.Zero(t, n)
	_, _, after := s.SaveSnapshot()
	assert.Equal(t, rev, after, "nothing merged, nothing changed")

	assert.ErrorIs(t, s.UpdateNodePositions([]PositionUpdate{{ID: "gone"}}), aggregates.ErrNodeNotFound)
}

func TestObserversReceiveEvents(t *testing.T) {
	s := newTestStore(t)
	var got []string
	unsubscribe := s.Subscribe(func(e events.DomainEvent) {
		got = append(got, e.GetEventType())
	})

	root := rootID(t, s)
	_, err := s.AddNode(entities.NodeDraft{}, ParentLink{ParentID: root})
	require.NoError(t, err)
	s.Undo()
	_, _ = s.AddEdge(root, root, "", "", "")

	assert.Equal(t, []string{events.TypeEdgeAdded, events.TypeNodeAdded, events.TypeHistoryMoved}, got)

	unsubscribe()
	_, err = s.AddNode(entities.NodeDraft{}, ParentLink{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

type recordingMetrics struct {
	mu       sync.Mutex
	applied  map[string]int
	rejected map[string]int
	depth    int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{applied: map[string]int{}, rejected: map[string]int{}}
}

func (r *recordingMetrics) MutationApplied(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied[op]++
}

func (r *recordingMetrics) MutationRejected(op, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[op+":"+reason]++
}

func (r *recordingMetrics) HistoryMoved(string) {}

func (r *recordingMetrics) HistoryDepthChanged(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depth = n
}

func TestStoreReportsMetrics(t *testing.T) {
	rec := newRecordingMetrics()
	s := newTestStore(t, WithStoreMetrics(rec))
	root := rootID(t, s)

	_, _ = s.AddNode(entities.NodeDraft{}, ParentLink{ParentID: root})
	_, _ = s.AddEdge(root, root, "", "", "")
	_ = s.DeleteEdge("missing")

	assert.Equal(t, 1, rec.applied["addNode"])
	assert.Equal(t, 1, rec.rejected["addEdge:self_loop"])
	assert.Equal(t, 1, rec.rejected["deleteEdge:edge_not_found"])
	assert.Equal(t, 1, rec.depth)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	s := newTestStore(t)
	root := rootID(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddNode(entities.NodeDraft{}, ParentLink{ParentID: root})
			_ = s.Current()
		}()
	}
	wg.Wait()

	m := s.Current()
	assert.Len(t, m.Nodes, 21)
	assert.Len(t, m.Edges, 20)
}
