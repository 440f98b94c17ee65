package services

import (
	"math"

	"mindgraph/domain/config"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

// DirectionalSelector picks the node a keyboard arrow should move to.
type DirectionalSelector struct {
	threshold float64
	dominance float64
}

// NewDirectionalSelector creates a selector using the navigation tunables of
// cfg, or the defaults when cfg is nil.
func NewDirectionalSelector(cfg *config.DomainConfig) *DirectionalSelector {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &DirectionalSelector{
		threshold: cfg.DirectionThreshold,
		dominance: cfg.DominanceFactor,
	}
}

// NearestInDirection returns the closest node lying in dir as seen from
// nodeID. A candidate qualifies when its offset along the direction's axis
// exceeds the threshold in the right sense and outweighs the cross-axis
// offset times the dominance factor. Equal distances resolve to the earliest
// node in the slice.
func (s *DirectionalSelector) NearestInDirection(nodeID valueobjects.NodeID, dir valueobjects.Direction, nodes []entities.Node) (entities.Node, bool) {
	var origin *entities.Node
	for i := range nodes {
		if nodes[i].ID == nodeID {
			origin = &nodes[i]
			break
		}
	}
	if origin == nil {
		return entities.Node{}, false
	}

	best := -1
	bestDist := math.Inf(1)
	for i, n := range nodes {
		if n.ID == nodeID {
			continue
		}
		dx := n.Position.X - origin.Position.X
		dy := n.Position.Y - origin.Position.Y
		if !s.inDirection(dir, dx, dy) {
			continue
		}
		if d := math.Hypot(dx, dy); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return entities.Node{}, false
	}
	return nodes[best], true
}

func (s *DirectionalSelector) inDirection(dir valueobjects.Direction, dx, dy float64) bool {
	switch dir {
	case valueobjects.DirectionUp:
		return dy < -s.threshold && math.Abs(dy) > math.Abs(dx)*s.dominance
	case valueobjects.DirectionDown:
		return dy > s.threshold && math.Abs(dy) > math.Abs(dx)*s.dominance
	case valueobjects.DirectionLeft:
		return dx < -s.threshold && math.Abs(dx) > math.Abs(dy)*s.dominance
	case valueobjects.DirectionRight:
		return dx > s.threshold && math.Abs(dx) > math.Abs(dy)*s.dominance
	}
	return false
}
