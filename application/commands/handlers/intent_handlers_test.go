package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgraph/application/commands"
	"mindgraph/application/commands/bus"
	"mindgraph/application/keybinds"
	"mindgraph/application/services"
	"mindgraph/domain/config"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/infrastructure/persistence/memory"
)

type fixture struct {
	bus    *bus.CommandBus
	editor *services.EditorService
	store  *services.GraphStore
	repo   *memory.MapRepository
	root   valueobjects.NodeID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DefaultDomainConfig()
	store := services.NewGraphStore(cfg, zap.NewNop())
	m := store.CreateMap("intents")
	editor := services.NewEditorService(store, nil, cfg, zap.NewNop(), false)
	repo := memory.NewMapRepository()
	docs := services.NewDocumentService(store, repo, nil, cfg, zap.NewNop())
	keys, err := keybinds.NewRegistry(nil)
	require.NoError(t, err)

	b := bus.NewCommandBus(bus.LoggingMiddleware(zap.NewNop()))
	require.NoError(t, NewIntentHandlers(editor, docs, keys).Register(b))
	return &fixture{bus: b, editor: editor, store: store, repo: repo, root: m.Nodes[0].ID}
}

func (f *fixture) send(t *testing.T, cmd bus.Command) commands.IntentResult {
	t.Helper()
	res, err := f.bus.Send(context.Background(), cmd)
	require.NoError(t, err)
	return res.(commands.IntentResult)
}

func TestIntents_CreateAndUndo(t *testing.T) {
	f := newFixture(t)
	f.send(t, commands.SelectCommand{NodeID: f.root})

	child := f.send(t, commands.CreateChildCommand{})
	assert.True(t, child.Changed)
	assert.Equal(t, keybinds.CreateChildNode, child.Action)
	assert.Len(t, f.store.Current().Nodes, 2)
	assert.Equal(t, child.NodeID, f.editor.Selection().Selected)

	undo := f.send(t, commands.UndoCommand{})
	assert.True(t, undo.Changed)
	assert.Len(t, f.store.Current().Nodes, 1)

	redo := f.send(t, commands.RedoCommand{})
	assert.True(t, redo.Changed)
	assert.Len(t, f.store.Current().Nodes, 2)

	assert.False(t, f.send(t, commands.RedoCommand{}).Changed)
}

func TestIntents_KeyPressResolvesBinding(t *testing.T) {
	f := newFixture(t)
	f.send(t, commands.SelectCommand{NodeID: f.root})

	res := f.send(t, commands.KeyPressCommand{Key: "Tab"})
	assert.Equal(t, keybinds.CreateChildNode, res.Action)
	assert.True(t, res.Changed)
	assert.Len(t, f.store.Current().Nodes, 2)

	res = f.send(t, commands.KeyPressCommand{Key: "z", Modifiers: keybinds.Modifiers{Meta: true}})
	assert.Equal(t, keybinds.Undo, res.Action)
	assert.Len(t, f.store.Current().Nodes, 1)

	res = f.send(t, commands.KeyPressCommand{Key: "q"})
	assert.Equal(t, commands.IntentResult{}, res, "unbound keys do nothing")
}

func TestIntents_ToggleLayoutDirection(t *testing.T) {
	f := newFixture(t)
	before := f.store.Current().LayoutDirection

	res := f.send(t, commands.ToggleLayoutDirectionCommand{})
	assert.Equal(t, before.Next(), res.Direction)
	assert.Equal(t, before.Next(), f.store.Current().LayoutDirection)
}

func TestIntents_SaveWritesRepository(t *testing.T) {
	f := newFixture(t)

	res := f.send(t, commands.SaveCommand{})
	require.NotEmpty(t, res.FileID)
	assert.False(t, f.store.IsDirty())

	stored, err := f.repo.Load(context.Background(), res.FileID)
	require.NoError(t, err)
	assert.Equal(t, f.store.Current().ID, stored.ID)
}

func TestIntents_ViewActionsChangeNothing(t *testing.T) {
	f := newFixture(t)
	history := f.store.HistoryState()

	res := f.send(t, commands.KeyPressCommand{Key: "=", Modifiers: keybinds.Modifiers{Ctrl: true}})
	assert.Equal(t, keybinds.ZoomIn, res.Action)
	assert.False(t, res.Changed)
	assert.Equal(t, history, f.store.HistoryState())
}

func TestIntents_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.bus.Send(context.Background(), commands.CreateChildCommand{})
	assert.ErrorIs(t, err, services.ErrNoSelection)

	_, err = f.bus.Send(context.Background(), commands.NavigateCommand{Direction: "north"})
	assert.ErrorIs(t, err, bus.ErrValidationFailed)

	_, err = f.bus.Send(context.Background(), commands.ApplyLayoutCommand{UseSelection: true, NodeIDs: []valueobjects.NodeID{f.root}})
	assert.ErrorIs(t, err, bus.ErrValidationFailed)
}
