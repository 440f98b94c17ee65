package handlers

import (
	"net/http"

	"mindgraph/application/commands"
	"mindgraph/application/queries"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/valueobjects"
)

// MapHandler serves the current map and its history
type MapHandler struct {
	base
}

func NewMapHandler(deps Deps) *MapHandler {
	return &MapHandler{base{deps}}
}

type newMapRequest struct {
	Name   string `json:"name" validate:"max=200"`
	Sample bool   `json:"sample"`
}

type renameMapRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type layoutDirectionRequest struct {
	Direction valueobjects.LayoutDirection `json:"direction" validate:"required,layoutdir"`
}

// GetMap handles GET /map
func (h *MapHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetMapQuery{})
}

// CreateMap handles POST /map. The new map replaces the current one.
func (h *MapHandler) CreateMap(w http.ResponseWriter, r *http.Request) {
	var req newMapRequest
	if r.ContentLength != 0 {
		if err := h.decode(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	var m *aggregates.MindMap
	if req.Sample {
		m = h.Documents.NewSample(req.Name)
	} else {
		m = h.Documents.New(req.Name)
	}
	h.created(w, m)
}

// ImportMap handles PUT /map with a complete map document
func (h *MapHandler) ImportMap(w http.ResponseWriter, r *http.Request) {
	var m aggregates.MindMap
	if err := h.decode(r, &m); err != nil {
		h.fail(w, r, err)
		return
	}
	current, err := h.Documents.Import(&m)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, current)
}

// RenameMap handles PATCH /map
func (h *MapHandler) RenameMap(w http.ResponseWriter, r *http.Request) {
	var req renameMapRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Editor.Store().RenameMap(req.Name); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, h.Editor.Store().Current())
}

// Undo handles POST /map/undo
func (h *MapHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.UndoCommand{})
}

// Redo handles POST /map/redo
func (h *MapHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.RedoCommand{})
}

// SetLayoutDirection handles PUT /map/layout-direction
func (h *MapHandler) SetLayoutDirection(w http.ResponseWriter, r *http.Request) {
	var req layoutDirectionRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Editor.SetLayoutDirection(r.Context(), req.Direction); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, commands.IntentResult{Changed: true, Direction: req.Direction})
}

// History handles GET /map/history
func (h *MapHandler) History(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.HistoryQuery{})
}

// Cycles handles GET /map/cycles
func (h *MapHandler) Cycles(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.CyclesQuery{})
}
