package handlers

import (
	"context"
	"fmt"

	"mindgraph/application/commands"
	"mindgraph/application/commands/bus"
	"mindgraph/application/keybinds"
	"mindgraph/application/services"
	"mindgraph/domain/core/valueobjects"
)

// IntentHandlers executes editing intents against the editor and document
// services
type IntentHandlers struct {
	editor    *services.EditorService
	documents *services.DocumentService
	keys      *keybinds.Registry
	bus       *bus.CommandBus
}

// NewIntentHandlers creates the handler set
func NewIntentHandlers(editor *services.EditorService, documents *services.DocumentService, keys *keybinds.Registry) *IntentHandlers {
	return &IntentHandlers{editor: editor, documents: documents, keys: keys}
}

// Register installs every intent handler on b
func (h *IntentHandlers) Register(b *bus.CommandBus) error {
	h.bus = b
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandlerFunc
	}{
		{commands.CreateChildCommand{}, h.createChild},
		{commands.CreateSiblingCommand{}, h.createSibling},
		{commands.DeleteSelectedCommand{}, h.deleteSelected},
		{commands.SelectCommand{}, h.selectNode},
		{commands.ToggleMultiSelectCommand{}, h.toggleMultiSelect},
		{commands.NavigateCommand{}, h.navigate},
		{commands.BeginEditCommand{}, h.beginEdit},
		{commands.FinishEditCommand{}, h.finishEdit},
		{commands.UndoCommand{}, h.undo},
		{commands.RedoCommand{}, h.redo},
		{commands.ToggleLayoutDirectionCommand{}, h.toggleLayoutDirection},
		{commands.ApplyLayoutCommand{}, h.applyLayout},
		{commands.SaveCommand{}, h.save},
		{commands.ViewCommand{}, h.view},
		{commands.KeyPressCommand{}, h.keyPress},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *IntentHandlers) createChild(ctx context.Context, _ bus.Command) (interface{}, error) {
	id, err := h.editor.CreateChild(ctx)
	if err != nil {
		return nil, err
	}
	return commands.IntentResult{Action: keybinds.CreateChildNode, Changed: true, NodeID: id}, nil
}

func (h *IntentHandlers) createSibling(ctx context.Context, _ bus.Command) (interface{}, error) {
	id, err := h.editor.CreateSibling(ctx)
	if err != nil {
		return nil, err
	}
	return commands.IntentResult{Action: keybinds.CreateSiblingNode, Changed: true, NodeID: id}, nil
}

func (h *IntentHandlers) deleteSelected(ctx context.Context, _ bus.Command) (interface{}, error) {
	id, err := h.editor.DeleteSelected(ctx)
	if err != nil {
		return nil, err
	}
	return commands.IntentResult{Action: keybinds.DeleteNode, Changed: true, NodeID: id}, nil
}

func (h *IntentHandlers) selectNode(_ context.Context, cmd bus.Command) (interface{}, error) {
	c := cmd.(commands.SelectCommand)
	if err := h.editor.Select(c.NodeID); err != nil {
		return nil, err
	}
	return commands.IntentResult{NodeID: c.NodeID}, nil
}

func (h *IntentHandlers) toggleMultiSelect(_ context.Context, cmd bus.Command) (interface{}, error) {
	c := cmd.(commands.ToggleMultiSelectCommand)
	if err := h.editor.ToggleMultiSelect(c.NodeID); err != nil {
		return nil, err
	}
	return commands.IntentResult{NodeID: c.NodeID}, nil
}

func (h *IntentHandlers) navigate(_ context.Context, cmd bus.Command) (interface{}, error) {
	c := cmd.(commands.NavigateCommand)
	id, moved := h.editor.Navigate(c.Direction)
	return commands.IntentResult{Action: navigationAction(c), Changed: moved, NodeID: id}, nil
}

func navigationAction(c commands.NavigateCommand) keybinds.Action {
	switch c.Direction {
	case valueobjects.DirectionUp:
		return keybinds.SelectParent
	case valueobjects.DirectionDown:
		return keybinds.SelectChild
	case valueobjects.DirectionLeft:
		return keybinds.SelectPrevSibling
	default:
		return keybinds.SelectNextSibling
	}
}

func (h *IntentHandlers) beginEdit(_ context.Context, _ bus.Command) (interface{}, error) {
	id, err := h.editor.BeginEdit()
	if err != nil {
		return nil, err
	}
	return commands.IntentResult{Action: keybinds.EditNode, NodeID: id}, nil
}

func (h *IntentHandlers) finishEdit(_ context.Context, _ bus.Command) (interface{}, error) {
	h.editor.FinishEdit()
	return commands.IntentResult{Action: keybinds.FinishEdit}, nil
}

func (h *IntentHandlers) undo(_ context.Context, _ bus.Command) (interface{}, error) {
	return commands.IntentResult{Action: keybinds.Undo, Changed: h.editor.Undo()}, nil
}

func (h *IntentHandlers) redo(_ context.Context, _ bus.Command) (interface{}, error) {
	return commands.IntentResult{Action: keybinds.Redo, Changed: h.editor.Redo()}, nil
}

func (h *IntentHandlers) toggleLayoutDirection(ctx context.Context, _ bus.Command) (interface{}, error) {
	dir, err := h.editor.ToggleLayoutDirection(ctx)
	if err != nil {
		return nil, err
	}
	return commands.IntentResult{Action: keybinds.ToggleLayoutDirection, Changed: true, Direction: dir}, nil
}

func (h *IntentHandlers) applyLayout(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c := cmd.(commands.ApplyLayoutCommand)
	if c.Async {
		ids := c.NodeIDs
		if c.UseSelection {
			ids = h.editor.Selection().Multi
		}
		return commands.IntentResult{Pending: h.editor.LayoutAsync(ctx, ids)}, nil
	}
	var (
		moved int
		err   error
	)
	switch {
	case c.UseSelection:
		moved, err = h.editor.LayoutSelection(ctx)
	default:
		moved, err = h.editor.LayoutNodes(ctx, c.NodeIDs)
	}
	if err != nil {
		return nil, err
	}
	return commands.IntentResult{Changed: moved > 0, Moved: moved}, nil
}

func (h *IntentHandlers) save(ctx context.Context, _ bus.Command) (interface{}, error) {
	fileID, err := h.documents.Save(ctx)
	if err != nil {
		return nil, err
	}
	return commands.IntentResult{Action: keybinds.Save, Changed: true, FileID: fileID}, nil
}

func (h *IntentHandlers) view(_ context.Context, cmd bus.Command) (interface{}, error) {
	return commands.IntentResult{Action: cmd.(commands.ViewCommand).Action}, nil
}

// keyPress runs the action bound to a key. Unbound keys do nothing.
func (h *IntentHandlers) keyPress(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c := cmd.(commands.KeyPressCommand)
	action, ok := h.keys.ActionForKey(c.Key, c.Modifiers)
	if !ok {
		return commands.IntentResult{}, nil
	}
	next, err := commands.ForAction(action)
	if err != nil {
		return nil, err
	}
	if h.bus == nil {
		return nil, fmt.Errorf("intent handlers are not registered on a bus")
	}
	res, err := h.bus.Send(ctx, next)
	if err != nil {
		return nil, err
	}
	result := res.(commands.IntentResult)
	result.Action = action
	return result, nil
}
