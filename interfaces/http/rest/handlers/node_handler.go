package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mindgraph/application/queries"
	"mindgraph/application/services"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

// NodeHandler handles node mutations and node-centred queries
type NodeHandler struct {
	base
}

func NewNodeHandler(deps Deps) *NodeHandler {
	return &NodeHandler{base{deps}}
}

type createNodeRequest struct {
	Content      string                `json:"content" validate:"max=50000"`
	Position     valueobjects.Position `json:"position"`
	Width        float64               `json:"width" validate:"gte=0"`
	Height       float64               `json:"height" validate:"gte=0"`
	ParentID     valueobjects.NodeID   `json:"parentId"`
	SourceHandle valueobjects.Handle   `json:"sourceHandle" validate:"handle"`
	TargetHandle valueobjects.Handle   `json:"targetHandle" validate:"handle"`
}

type updateNodeRequest struct {
	Content  *string                `json:"content" validate:"omitempty,max=50000"`
	Position *valueobjects.Position `json:"position"`
	Width    *float64               `json:"width" validate:"omitempty,gte=0"`
	Height   *float64               `json:"height" validate:"omitempty,gte=0"`
}

type positionsRequest struct {
	Positions []services.PositionUpdate `json:"positions" validate:"required,min=1,dive"`
}

type createdResponse struct {
	ID string `json:"id"`
}

func nodeID(r *http.Request) valueobjects.NodeID {
	return valueobjects.NodeID(chi.URLParam(r, "nodeID"))
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	content := req.Content
	if content == "" {
		content = entities.TextContent("")
	}
	id, err := h.Editor.Store().AddNode(entities.NodeDraft{
		Content:  content,
		Position: req.Position,
		Width:    req.Width,
		Height:   req.Height,
	}, services.ParentLink{
		ParentID:     req.ParentID,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, createdResponse{ID: id.String()})
}

// UpdateNode handles PATCH /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req updateNodeRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	id := nodeID(r)
	err := h.Editor.Store().UpdateNode(id, entities.NodePatch{
		Content:  req.Content,
		Position: req.Position,
		Width:    req.Width,
		Height:   req.Height,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	n, _ := h.Editor.Store().Current().GetNode(id)
	h.ok(w, n)
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.Editor.Store().DeleteNode(nodeID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePositions handles PUT /nodes/positions. Position updates do not
// create undo steps.
func (h *NodeHandler) UpdatePositions(w http.ResponseWriter, r *http.Request) {
	var req positionsRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Editor.Store().UpdateNodePositions(req.Positions); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, h.Editor.Store().HistoryState())
}

// Relations handles GET /nodes/{nodeID}/relations
func (h *NodeHandler) Relations(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.RelationsQuery{NodeID: nodeID(r)})
}

// Nearest handles GET /nodes/{nodeID}/nearest?direction=
func (h *NodeHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.NearestQuery{
		NodeID:    nodeID(r),
		Direction: valueobjects.Direction(r.URL.Query().Get("direction")),
	})
}
