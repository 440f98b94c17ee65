package entities

import "mindgraph/domain/core/valueobjects"

// Edge is a directed connection from a parent node to a child node.
type Edge struct {
	ID           valueobjects.EdgeID `json:"id"`
	Source       valueobjects.NodeID `json:"source"`
	Target       valueobjects.NodeID `json:"target"`
	SourceHandle valueobjects.Handle `json:"sourceHandle,omitempty"`
	TargetHandle valueobjects.Handle `json:"targetHandle,omitempty"`
	Label        string              `json:"label,omitempty"`
}

// Touches reports whether id is either endpoint of the edge.
func (e Edge) Touches(id valueobjects.NodeID) bool {
	return e.Source == id || e.Target == id
}

// EdgePatch updates the presentational attributes of an edge. Endpoints are
// fixed once an edge exists; reconnecting means deleting and adding.
type EdgePatch struct {
	SourceHandle *valueobjects.Handle
	TargetHandle *valueobjects.Handle
	Label        *string
}

func (p EdgePatch) IsEmpty() bool {
	return p.SourceHandle == nil && p.TargetHandle == nil && p.Label == nil
}

// Apply returns a copy of e with the patch applied.
func (p EdgePatch) Apply(e Edge) Edge {
	if p.SourceHandle != nil {
		e.SourceHandle = *p.SourceHandle
	}
	if p.TargetHandle != nil {
		e.TargetHandle = *p.TargetHandle
	}
	if p.Label != nil {
		e.Label = *p.Label
	}
	return e
}
