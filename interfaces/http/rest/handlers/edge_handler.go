package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

// EdgeHandler handles edge mutations
type EdgeHandler struct {
	base
}

func NewEdgeHandler(deps Deps) *EdgeHandler {
	return &EdgeHandler{base{deps}}
}

type createEdgeRequest struct {
	Source       valueobjects.NodeID `json:"source" validate:"required"`
	Target       valueobjects.NodeID `json:"target" validate:"required"`
	SourceHandle valueobjects.Handle `json:"sourceHandle" validate:"handle"`
	TargetHandle valueobjects.Handle `json:"targetHandle" validate:"handle"`
	Label        string              `json:"label" validate:"max=500"`
}

type updateEdgeRequest struct {
	SourceHandle *valueobjects.Handle `json:"sourceHandle" validate:"omitempty,handle"`
	TargetHandle *valueobjects.Handle `json:"targetHandle" validate:"omitempty,handle"`
	Label        *string              `json:"label" validate:"omitempty,max=500"`
}

func edgeID(r *http.Request) valueobjects.EdgeID {
	return valueobjects.EdgeID(chi.URLParam(r, "edgeID"))
}

// CreateEdge handles POST /edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := h.Editor.Store().AddEdge(req.Source, req.Target, req.SourceHandle, req.TargetHandle, req.Label)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, createdResponse{ID: id.String()})
}

// UpdateEdge handles PATCH /edges/{edgeID}
func (h *EdgeHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var req updateEdgeRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	id := edgeID(r)
	err := h.Editor.Store().UpdateEdge(id, entities.EdgePatch{
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
		Label:        req.Label,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, _ := h.Editor.Store().Current().GetEdge(id)
	h.ok(w, e)
}

// DeleteEdge handles DELETE /edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.Editor.Store().DeleteEdge(edgeID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
