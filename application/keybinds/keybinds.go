// Package keybinds resolves keyboard input into editor actions.
package keybinds

import (
	"fmt"
	"strings"
	"sync"
)

// Action is an editor intent a key can trigger
type Action string

const (
	CreateChildNode       Action = "createChildNode"
	CreateSiblingNode     Action = "createSiblingNode"
	DeleteNode            Action = "deleteNode"
	EditNode              Action = "editNode"
	FinishEdit            Action = "finishEdit"
	SelectParent          Action = "selectParent"
	SelectChild           Action = "selectChild"
	SelectPrevSibling     Action = "selectPrevSibling"
	SelectNextSibling     Action = "selectNextSibling"
	Undo                  Action = "undo"
	Redo                  Action = "redo"
	Save                  Action = "save"
	ZoomIn                Action = "zoomIn"
	ZoomOut               Action = "zoomOut"
	FitView               Action = "fitView"
	ToggleLayoutDirection Action = "toggleLayoutDirection"
)

// Actions lists every action in resolution order
var Actions = []Action{
	CreateChildNode, CreateSiblingNode, DeleteNode, EditNode, FinishEdit,
	SelectParent, SelectChild, SelectPrevSibling, SelectNextSibling,
	Undo, Redo, Save, ZoomIn, ZoomOut, FitView, ToggleLayoutDirection,
}

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Defaults returns a fresh copy of the default bindings
func Defaults() map[Action]string {
	return map[Action]string{
		CreateChildNode:       "Tab",
		CreateSiblingNode:     "Enter",
		DeleteNode:            "Delete",
		EditNode:              "F2",
		FinishEdit:            "Escape",
		SelectParent:          "ArrowUp",
		SelectChild:           "ArrowDown",
		SelectPrevSibling:     "ArrowLeft",
		SelectNextSibling:     "ArrowRight",
		Undo:                  "Ctrl+z",
		Redo:                  "Ctrl+Shift+z",
		Save:                  "Ctrl+s",
		ZoomIn:                "Ctrl+=",
		ZoomOut:               "Ctrl+-",
		FitView:               "Ctrl+0",
		ToggleLayoutDirection: "Ctrl+d",
	}
}

// Modifiers is the modifier state of a key press. Meta counts as Ctrl.
type Modifiers struct {
	Ctrl  bool `json:"ctrl"`
	Shift bool `json:"shift"`
	Alt   bool `json:"alt"`
	Meta  bool `json:"meta"`
}

// NormalizeKey renders a key press as "Ctrl+Shift+Alt+key", omitting
// modifiers that are not held.
func NormalizeKey(key string, mods Modifiers) string {
	var parts []string
	if mods.Ctrl || mods.Meta {
		parts = append(parts, "Ctrl")
	}
	if mods.Shift {
		parts = append(parts, "Shift")
	}
	if mods.Alt {
		parts = append(parts, "Alt")
	}
	return strings.Join(append(parts, key), "+")
}

// Registry holds the active bindings. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bindings map[Action]string
}

// NewRegistry starts from the defaults and applies overrides
func NewRegistry(overrides map[string]string) (*Registry, error) {
	r := &Registry{bindings: Defaults()}
	if err := r.Load(overrides); err != nil {
		return nil, err
	}
	return r, nil
}

// Load resets to the defaults and applies overrides keyed by action name.
// Nothing changes when an override names an unknown action.
func (r *Registry) Load(overrides map[string]string) error {
	next := Defaults()
	for name, key := range overrides {
		a, err := ParseAction(name)
		if err != nil {
			return err
		}
		next[a] = key
	}

	r.mu.Lock()
	r.bindings = next
	r.mu.Unlock()
	return nil
}

// Set binds key to action
func (r *Registry) Set(action Action, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[action] = key
}

// Reset restores the defaults
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = Defaults()
}

// Bindings returns a copy of the active bindings
func (r *Registry) Bindings() map[Action]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Action]string, len(r.bindings))
	for a, k := range r.bindings {
		out[a] = k
	}
	return out
}

// ActionForKey returns the action bound to the key press. When two actions
// share a key the one listed first in Actions wins.
func (r *Registry) ActionForKey(key string, mods Modifiers) (Action, bool) {
	normalized := NormalizeKey(key, mods)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range Actions {
		if r.bindings[a] == normalized {
			return a, true
		}
	}
	return "", false
}
