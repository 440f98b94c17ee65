package aggregates

import (
	"time"

	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

// NewSampleMindMap builds the first-run example map: one idea fanning out into
// three paths whose outcomes cross-link and converge again, so several nodes
// have more than one parent.
func NewSampleMindMap(name string, now time.Time) *MindMap {
	m := &MindMap{
		ID:              valueobjects.NewMapID(),
		Name:            name,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
		LayoutDirection: valueobjects.LayoutRight,
	}

	add := func(text string, x, y float64) valueobjects.NodeID {
		id := valueobjects.NewNodeID()
		m.Nodes = append(m.Nodes, entities.Node{
			ID:       id,
			Content:  entities.TextContent(text),
			Position: valueobjects.Position{X: x, Y: y},
		})
		return id
	}
	link := func(source, target valueobjects.NodeID, sh, th valueobjects.Handle) {
		m.Edges = append(m.Edges, entities.Edge{
			ID:           valueobjects.NewEdgeID(),
			Source:       source,
			Target:       target,
			SourceHandle: sh,
			TargetHandle: th,
		})
	}

	root := add("Start from one idea", 0, 150)
	ask := add("Ask a question", 250, 0)
	research := add("Look it up", 250, 150)
	talk := add("Talk to someone", 250, 300)
	awareness := add("Awareness", 500, 0)
	discovery := add("Discovery", 500, 150)
	inspiration := add("Inspiration", 500, 300)
	next := add("On to the next idea", 750, 150)

	r, l := valueobjects.HandleRight, valueobjects.HandleLeft
	b, t := valueobjects.HandleBottom, valueobjects.HandleTop

	link(root, ask, r, l)
	link(root, research, r, l)
	link(root, talk, r, l)
	link(ask, awareness, r, l)
	link(research, discovery, r, l)
	link(talk, inspiration, r, l)
	link(awareness, discovery, b, t)
	link(discovery, inspiration, b, t)
	link(awareness, next, r, l)
	link(discovery, next, r, l)
	link(inspiration, next, r, l)

	return m
}
