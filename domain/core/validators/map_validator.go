package validators

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/pkg/errors"
)

// MapValidator checks maps that enter the engine from outside (documents
// opened from storage, imports over the API). Unlike MindMap.Validate it
// reports every problem it finds, keyed by field path.
type MapValidator struct {
	nameMaxLength    int
	contentMaxLength int
	labelMaxLength   int
	maxNodes         int
	maxEdges         int
	forbidden        []string
}

// NewMapValidator creates a validator with default limits
func NewMapValidator() *MapValidator {
	return &MapValidator{
		nameMaxLength:    200,
		contentMaxLength: 50000,
		labelMaxLength:   500,
		maxNodes:         5000,
		maxEdges:         20000,
		forbidden:        []string{"<script", "javascript:"},
	}
}

// Validate returns nil or an *errors.ValidationErrors
func (v *MapValidator) Validate(m *aggregates.MindMap) error {
	verrs := errors.NewValidationErrors()
	if m == nil {
		verrs.Add("map", "map is required")
		return verrs
	}

	name := strings.TrimSpace(m.Name)
	if name == "" {
		verrs.Add("name", "name is required")
	} else if utf8.RuneCountInString(name) > v.nameMaxLength {
		verrs.Add("name", fmt.Sprintf("name exceeds %d characters", v.nameMaxLength))
	}
	if m.LayoutDirection != "" && !m.LayoutDirection.IsValid() {
		verrs.Add("layoutDirection", fmt.Sprintf("unknown layout direction %q", m.LayoutDirection))
	}

	switch {
	case len(m.Nodes) == 0:
		verrs.Add("nodes", "map must contain at least one node")
	case len(m.Nodes) > v.maxNodes:
		verrs.Add("nodes", fmt.Sprintf("map exceeds %d nodes", v.maxNodes))
	}
	if len(m.Edges) > v.maxEdges {
		verrs.Add("edges", fmt.Sprintf("map exceeds %d edges", v.maxEdges))
	}

	ids := make(map[valueobjects.NodeID]bool, len(m.Nodes))
	for i, n := range m.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if n.ID.IsZero() {
			verrs.Add(field+".id", "id is required")
		} else if ids[n.ID] {
			verrs.Add(field+".id", fmt.Sprintf("duplicate node id %s", n.ID))
		}
		ids[n.ID] = true
		v.validateNode(verrs, field, n)
	}

	edgeIDs := make(map[valueobjects.EdgeID]bool, len(m.Edges))
	pairs := make(map[[2]valueobjects.NodeID]bool, len(m.Edges))
	for i, e := range m.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if e.ID.IsZero() {
			verrs.Add(field+".id", "id is required")
		} else if edgeIDs[e.ID] {
			verrs.Add(field+".id", fmt.Sprintf("duplicate edge id %s", e.ID))
		}
		edgeIDs[e.ID] = true

		if !ids[e.Source] {
			verrs.Add(field+".source", fmt.Sprintf("unknown node %s", e.Source))
		}
		if !ids[e.Target] {
			verrs.Add(field+".target", fmt.Sprintf("unknown node %s", e.Target))
		}
		if e.Source == e.Target {
			verrs.Add(field, "edge connects a node to itself")
		}
		pair := [2]valueobjects.NodeID{e.Source, e.Target}
		if pairs[pair] {
			verrs.Add(field, fmt.Sprintf("duplicate edge %s -> %s", e.Source, e.Target))
		}
		pairs[pair] = true

		v.validateHandle(verrs, field+".sourceHandle", e.SourceHandle)
		v.validateHandle(verrs, field+".targetHandle", e.TargetHandle)
		if utf8.RuneCountInString(e.Label) > v.labelMaxLength {
			verrs.Add(field+".label", fmt.Sprintf("label exceeds %d characters", v.labelMaxLength))
		}
	}

	if verrs.HasErrors() {
		return verrs
	}
	return nil
}

func (v *MapValidator) validateNode(verrs *errors.ValidationErrors, field string, n entities.Node) {
	if len(n.Content) > v.contentMaxLength {
		verrs.Add(field+".content", fmt.Sprintf("content exceeds %d bytes", v.contentMaxLength))
	}
	lower := strings.ToLower(n.Content)
	for _, word := range v.forbidden {
		if strings.Contains(lower, word) {
			verrs.Add(field+".content", "content contains potentially malicious code")
			break
		}
	}
	if !finite(n.Position.X) || !finite(n.Position.Y) {
		verrs.Add(field+".position", "position must be finite")
	}
	if n.Width < 0 || n.Height < 0 {
		verrs.Add(field, "size cannot be negative")
	}
}

func (v *MapValidator) validateHandle(verrs *errors.ValidationErrors, field string, h valueobjects.Handle) {
	if h != "" && !h.IsValid() {
		verrs.Add(field, fmt.Sprintf("unknown handle %q", h))
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
