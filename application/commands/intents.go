// Package commands defines the editing intents the editor accepts, either
// directly or resolved from a key press.
package commands

import (
	"errors"
	"fmt"

	"mindgraph/application/commands/bus"
	"mindgraph/application/keybinds"
	"mindgraph/domain/core/valueobjects"
)

// CreateChildCommand adds a node under the active node
type CreateChildCommand struct{}

func (CreateChildCommand) Validate() error { return nil }

// CreateSiblingCommand adds a node beside the active node
type CreateSiblingCommand struct{}

func (CreateSiblingCommand) Validate() error { return nil }

// DeleteSelectedCommand removes the active node
type DeleteSelectedCommand struct{}

func (DeleteSelectedCommand) Validate() error { return nil }

// SelectCommand selects a node, or clears the selection when NodeID is empty
type SelectCommand struct {
	NodeID valueobjects.NodeID `json:"nodeId"`
}

func (SelectCommand) Validate() error { return nil }

// ToggleMultiSelectCommand adds or removes a node from the multi-selection
type ToggleMultiSelectCommand struct {
	NodeID valueobjects.NodeID `json:"nodeId"`
}

func (c ToggleMultiSelectCommand) Validate() error {
	if c.NodeID.IsZero() {
		return errors.New("node id is required")
	}
	return nil
}

// NavigateCommand moves the selection to the nearest node in a direction
type NavigateCommand struct {
	Direction valueobjects.Direction `json:"direction"`
}

func (c NavigateCommand) Validate() error {
	if !c.Direction.IsValid() {
		return fmt.Errorf("invalid direction %q", c.Direction)
	}
	return nil
}

// BeginEditCommand starts editing the active node
type BeginEditCommand struct{}

func (BeginEditCommand) Validate() error { return nil }

// FinishEditCommand stops editing
type FinishEditCommand struct{}

func (FinishEditCommand) Validate() error { return nil }

// UndoCommand steps back in history
type UndoCommand struct{}

func (UndoCommand) Validate() error { return nil }

// RedoCommand steps forward in history
type RedoCommand struct{}

func (RedoCommand) Validate() error { return nil }

// ToggleLayoutDirectionCommand cycles the layout direction
type ToggleLayoutDirectionCommand struct{}

func (ToggleLayoutDirectionCommand) Validate() error { return nil }

// ApplyLayoutCommand lays out the given nodes, the multi-selection when
// UseSelection is set, or the whole map. Async returns before the layout is
// applied.
type ApplyLayoutCommand struct {
	NodeIDs      []valueobjects.NodeID `json:"nodeIds"`
	UseSelection bool                  `json:"useSelection"`
	Async        bool                  `json:"async"`
}

func (c ApplyLayoutCommand) Validate() error {
	if c.UseSelection && len(c.NodeIDs) > 0 {
		return errors.New("nodeIds and useSelection are exclusive")
	}
	return nil
}

// SaveCommand writes the current map to storage
type SaveCommand struct{}

func (SaveCommand) Validate() error { return nil }

// ViewCommand is an action that only concerns the client's viewport (zoom,
// fit). The engine acknowledges it without changing anything.
type ViewCommand struct {
	Action keybinds.Action `json:"action"`
}

func (c ViewCommand) Validate() error {
	switch c.Action {
	case keybinds.ZoomIn, keybinds.ZoomOut, keybinds.FitView:
		return nil
	}
	return fmt.Errorf("%q is not a view action", c.Action)
}

// KeyPressCommand resolves a key press through the keybind registry and
// runs the bound action
type KeyPressCommand struct {
	Key       string             `json:"key"`
	Modifiers keybinds.Modifiers `json:"modifiers"`
}

func (c KeyPressCommand) Validate() error {
	if c.Key == "" {
		return errors.New("key is required")
	}
	return nil
}

// ForAction maps a keybind action to its command
func ForAction(a keybinds.Action) (bus.Command, error) {
	switch a {
	case keybinds.CreateChildNode:
		return CreateChildCommand{}, nil
	case keybinds.CreateSiblingNode:
		return CreateSiblingCommand{}, nil
	case keybinds.DeleteNode:
		return DeleteSelectedCommand{}, nil
	case keybinds.EditNode:
		return BeginEditCommand{}, nil
	case keybinds.FinishEdit:
		return FinishEditCommand{}, nil
	case keybinds.SelectParent:
		return NavigateCommand{Direction: valueobjects.DirectionUp}, nil
	case keybinds.SelectChild:
		return NavigateCommand{Direction: valueobjects.DirectionDown}, nil
	case keybinds.SelectPrevSibling:
		return NavigateCommand{Direction: valueobjects.DirectionLeft}, nil
	case keybinds.SelectNextSibling:
		return NavigateCommand{Direction: valueobjects.DirectionRight}, nil
	case keybinds.Undo:
		return UndoCommand{}, nil
	case keybinds.Redo:
		return RedoCommand{}, nil
	case keybinds.Save:
		return SaveCommand{}, nil
	case keybinds.ZoomIn, keybinds.ZoomOut, keybinds.FitView:
		return ViewCommand{Action: a}, nil
	case keybinds.ToggleLayoutDirection:
		return ToggleLayoutDirectionCommand{}, nil
	}
	return nil, fmt.Errorf("unknown action %q", a)
}

// IntentResult reports what an intent did
type IntentResult struct {
	Action    keybinds.Action              `json:"action,omitempty"`
	Changed   bool                         `json:"changed"`
	NodeID    valueobjects.NodeID          `json:"nodeId,omitempty"`
	Direction valueobjects.LayoutDirection `json:"direction,omitempty"`
	FileID    string                       `json:"fileId,omitempty"`
	Moved     int                          `json:"moved,omitempty"`
	Pending   bool                         `json:"pending,omitempty"`
}
