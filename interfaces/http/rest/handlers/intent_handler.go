package handlers

import (
	"net/http"

	"mindgraph/application/commands"
	"mindgraph/application/commands/bus"
	"mindgraph/application/keybinds"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/pkg/errors"
)

// IntentHandler runs editing intents and layout requests
type IntentHandler struct {
	base
}

func NewIntentHandler(deps Deps) *IntentHandler {
	return &IntentHandler{base{deps}}
}

// intentRequest names either an action or a key press. The select actions
// take a node id.
type intentRequest struct {
	Action    string              `json:"action" validate:"required_without=Key"`
	Key       string              `json:"key" validate:"required_without=Action"`
	Modifiers keybinds.Modifiers  `json:"modifiers"`
	NodeID    valueobjects.NodeID `json:"nodeId"`
}

const (
	actionSelect            = "select"
	actionToggleMultiSelect = "toggleMultiSelect"
)

type layoutRequest struct {
	NodeIDs      []valueobjects.NodeID `json:"nodeIds"`
	UseSelection bool                  `json:"useSelection"`
	Async        bool                  `json:"async"`
}

// Intent handles POST /intents
func (h *IntentHandler) Intent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	cmd, err := req.command()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.send(w, r, cmd)
}

func (req intentRequest) command() (bus.Command, error) {
	if req.Key != "" {
		return commands.KeyPressCommand{Key: req.Key, Modifiers: req.Modifiers}, nil
	}
	switch req.Action {
	case actionSelect:
		return commands.SelectCommand{NodeID: req.NodeID}, nil
	case actionToggleMultiSelect:
		return commands.ToggleMultiSelectCommand{NodeID: req.NodeID}, nil
	}
	action, err := keybinds.ParseAction(req.Action)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	return commands.ForAction(action)
}

// Layout handles POST /layout. Without node ids the whole map is laid out.
func (h *IntentHandler) Layout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if r.ContentLength != 0 {
		if err := h.decode(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.send(w, r, commands.ApplyLayoutCommand{
		NodeIDs:      req.NodeIDs,
		UseSelection: req.UseSelection,
		Async:        req.Async,
	})
}
