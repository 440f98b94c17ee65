package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgraph/domain/config"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

func newTestEditor(t *testing.T, engine *fakeEngine) (*EditorService, *GraphStore) {
	t.Helper()
	store := newTestStore(t)
	var coordinator *LayoutCoordinator
	if engine != nil {
		coordinator = NewLayoutCoordinator(engine, config.DefaultDomainConfig(), 0, zap.NewNop(), nil)
	}
	return NewEditorService(store, coordinator, config.DefaultDomainConfig(), zap.NewNop(), engine != nil), store
}

func TestEditor_CreateChildSiblingDeleteUndo(t *testing.T) {
	ctx := context.Background()
	editor, store := newTestEditor(t, nil)
	original := store.Current()
	root := rootID(t, store)

	require.NoError(t, editor.Select(root))
	child, err := editor.CreateChild(ctx)
	require.NoError(t, err)
	sibling, err := editor.CreateSibling(ctx)
	require.NoError(t, err)

	require.NoError(t, editor.Select(child))
	deleted, err := editor.DeleteSelected(ctx)
	require.NoError(t, err)
	assert.Equal(t, child, deleted)

	m := store.Current()
	require.Len(t, m.Nodes, 2)
	require.Len(t, m.Edges, 1)
	assert.Equal(t, root, m.Edges[0].Source)
	assert.Equal(t, sibling, m.Edges[0].Target)

	for i := 0; i < 3; i++ {
		require.True(t, editor.Undo())
	}
	restored := store.Current()
	assert.Len(t, restored.Nodes, 1)
	assert.Empty(t, restored.Edges)
	assert.Equal(t, original.Nodes, restored.Nodes)
	assert.False(t, editor.Undo())
}

func TestEditor_CreateChildPlacement(t *testing.T) {
	editor, store := newTestEditor(t, nil)
	root := rootID(t, store)
	require.NoError(t, editor.Select(root))

	id, err := editor.CreateChild(context.Background())
	require.NoError(t, err)

	m := store.Current()
	node, ok := m.GetNode(id)
	require.True(t, ok)
	assert.Equal(t, valueobjects.Position{X: 200, Y: 0}, node.Position)
	assert.Equal(t, "New node", entities.PlainText(node.Content))

	require.Len(t, m.Edges, 1)
	assert.Equal(t, valueobjects.HandleRight, m.Edges[0].SourceHandle)
	assert.Equal(t, valueobjects.HandleLeft, m.Edges[0].TargetHandle)
	assert.Equal(t, id, editor.Selection().Selected)
}

func TestEditor_CreateChildAvoidsOverlap(t *testing.T) {
	editor, store := newTestEditor(t, nil)
	root := rootID(t, store)
	require.NoError(t, editor.Select(root))

	first, err := editor.CreateChild(context.Background())
	require.NoError(t, err)
	require.NoError(t, editor.Select(root))
	second, err := editor.CreateChild(context.Background())
	require.NoError(t, err)

	m := store.Current()
	a, _ := m.GetNode(first)
	b, _ := m.GetNode(second)
	assert.Equal(t, a.Position.X, b.Position.X)
	assert.Equal(t, a.Position.Y+100, b.Position.Y, "shifted along the spread axis")
}

func TestEditor_SiblingOfRootIsUnconnected(t *testing.T) {
	editor, store := newTestEditor(t, nil)
	require.NoError(t, editor.Select(rootID(t, store)))

	id, err := editor.CreateSibling(context.Background())
	require.NoError(t, err)

	m := store.Current()
	node, _ := m.GetNode(id)
	assert.Equal(t, valueobjects.Position{X: 0, Y: 100}, node.Position)
	assert.Empty(t, m.Edges)
}

func TestEditor_IntentsWithoutSelection(t *testing.T) {
	ctx := context.Background()
	editor, store := newTestEditor(t, nil)

	_, err := editor.CreateChild(ctx)
	assert.ErrorIs(t, err, ErrNoSelection)
	_, err = editor.DeleteSelected(ctx)
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = editor.CreateSibling(ctx)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, rootID(t, store), editor.Selection().Selected, "first node becomes selected")
	assert.Len(t, store.Current().Nodes, 1)
}

func TestEditor_IntentsWithoutMap(t *testing.T) {
	store := NewGraphStore(nil, nil)
	editor := NewEditorService(store, nil, nil, nil, false)

	_, err := editor.CreateChild(context.Background())
	assert.ErrorIs(t, err, ErrNoCurrentMap)
	_, ok := editor.Navigate(valueobjects.DirectionDown)
	assert.False(t, ok)
	_, err = editor.ToggleLayoutDirection(context.Background())
	assert.ErrorIs(t, err, ErrNoCurrentMap)
}

func TestEditor_SelectUnknownNode(t *testing.T) {
	editor, _ := newTestEditor(t, nil)
	assert.Error(t, editor.Select("missing"))
}

func TestEditor_Navigate(t *testing.T) {
	editor, store := newTestEditor(t, nil)
	root := rootID(t, store)
	below, err := store.AddNode(entities.NodeDraft{Position: valueobjects.Position{X: 0, Y: 200}}, ParentLink{})
	require.NoError(t, err)
	right, err := store.AddNode(entities.NodeDraft{Position: valueobjects.Position{X: 300, Y: 0}}, ParentLink{})
	require.NoError(t, err)

	got, ok := editor.Navigate(valueobjects.DirectionDown)
	require.True(t, ok, "starts from the first node without a selection")
	assert.Equal(t, below, got)

	got, ok = editor.Navigate(valueobjects.DirectionUp)
	require.True(t, ok)
	assert.Equal(t, root, got)

	got, ok = editor.Navigate(valueobjects.DirectionRight)
	require.True(t, ok)
	assert.Equal(t, right, got)

	_, ok = editor.Navigate(valueobjects.DirectionRight)
	assert.False(t, ok)
	assert.Equal(t, right, editor.Selection().Selected)

	require.NoError(t, editor.Select(""))
	got, ok = editor.Navigate(valueobjects.DirectionRight)
	require.True(t, ok, "falls back to the last selected node")
	assert.Equal(t, right, got)
}

func TestEditor_EditLifecycle(t *testing.T) {
	editor, store := newTestEditor(t, nil)
	_, err := editor.BeginEdit()
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, editor.Select(rootID(t, store)))
	id, err := editor.BeginEdit()
	require.NoError(t, err)
	assert.Equal(t, id, editor.Selection().Editing)

	editor.FinishEdit()
	assert.True(t, editor.Selection().Editing.IsZero())
}

func TestEditor_ToggleLayoutDirection(t *testing.T) {
	engine := &fakeEngine{}
	editor, store := newTestEditor(t, engine)

	dir, err := editor.ToggleLayoutDirection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, valueobjects.LayoutUp, dir)
	assert.Equal(t, valueobjects.LayoutUp, store.Current().LayoutDirection)
	assert.Equal(t, valueobjects.LayoutUp, engine.lastCall().Direction)

	require.True(t, editor.Undo())
	assert.Equal(t, valueobjects.DefaultLayoutDirection, store.Current().LayoutDirection)
}

func TestEditor_AutoLayoutDoesNotAddHistory(t *testing.T) {
	engine := &fakeEngine{}
	editor, store := newTestEditor(t, engine)
	require.NoError(t, editor.Select(rootID(t, store)))

	id, err := editor.CreateChild(context.Background())
	require.NoError(t, err)

	node, _ := store.Current().GetNode(id)
	assert.Equal(t, valueobjects.Position{X: 1000, Y: 1000}, node.Position)
	assert.Equal(t, 1, store.HistoryState().Index)
}

func TestEditor_UndoDropsStaleSelection(t *testing.T) {
	editor, store := newTestEditor(t, nil)
	require.NoError(t, editor.Select(rootID(t, store)))
	child, err := editor.CreateChild(context.Background())
	require.NoError(t, err)
	require.Equal(t, child, editor.Selection().Selected)

	require.True(t, editor.Undo())
	sel := editor.Selection()
	assert.True(t, sel.Selected.IsZero())
	assert.True(t, sel.LastSelected.IsZero())
}

func TestEditor_LayoutSelection(t *testing.T) {
	engine := &fakeEngine{}
	editor, store := newTestEditor(t, engine)
	root := rootID(t, store)
	other, err := store.AddNode(entities.NodeDraft{Position: valueobjects.Position{X: 500, Y: 500}}, ParentLink{ParentID: root})
	require.NoError(t, err)

	require.NoError(t, editor.ToggleMultiSelect(root))
	require.NoError(t, editor.ToggleMultiSelect(other))
	require.NoError(t, editor.ToggleMultiSelect(other))
	assert.Equal(t, []valueobjects.NodeID{root}, editor.Selection().Multi)

	moved, err := editor.LayoutSelection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Len(t, engine.lastCall().Nodes, 2, "selection plus its neighbour")
}

func TestEditor_LayoutAsync(t *testing.T) {
	engine := &fakeEngine{}
	editor, store := newTestEditor(t, engine)
	id, err := store.AddNode(entities.NodeDraft{
		Content:  entities.TextContent("far"),
		Position: valueobjects.Position{X: 7, Y: 7},
	}, ParentLink{})
	require.NoError(t, err)

	require.True(t, editor.LayoutAsync(context.Background(), nil))
	assert.Eventually(t, func() bool {
		n, ok := store.Current().GetNode(id)
		return ok && n.Position == valueobjects.Position{X: 1000, Y: 1000}
	}, time.Second, 10*time.Millisecond)

	plain, _ := newTestEditor(t, nil)
	assert.False(t, plain.LayoutAsync(context.Background(), nil))
}
