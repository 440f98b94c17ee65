package services

import (
	"math"

	"mindgraph/domain/config"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

// PositionAllocator finds free spots for newly created nodes.
type PositionAllocator struct {
	cfg *config.DomainConfig
}

func NewPositionAllocator(cfg *config.DomainConfig) *PositionAllocator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &PositionAllocator{cfg: cfg}
}

// AvoidOverlap shifts candidate along axis until it no longer collides with
// any existing node, giving up after a bounded number of attempts. The last
// tried position is returned either way, so the result may still overlap.
// Collision is a fixed box check on top-left corners and ignores real node
// sizes.
func (a *PositionAllocator) AvoidOverlap(candidate valueobjects.Position, existing []entities.Node, axis valueobjects.Axis) valueobjects.Position {
	pos := candidate
	for attempt := 0; attempt < a.cfg.OverlapMaxAttempts; attempt++ {
		if !a.overlapsAny(pos, existing) {
			return pos
		}
		switch axis {
		case valueobjects.AxisX:
			pos.X += a.cfg.OverlapStep
		case valueobjects.AxisY:
			pos.Y += a.cfg.OverlapStep
		default:
			pos.X += a.cfg.OverlapStep
			pos.Y += a.cfg.OverlapStep
		}
	}
	return pos
}

func (a *PositionAllocator) overlapsAny(p valueobjects.Position, existing []entities.Node) bool {
	for _, n := range existing {
		if math.Abs(n.Position.X-p.X) < a.cfg.OverlapWidth && math.Abs(n.Position.Y-p.Y) < a.cfg.OverlapHeight {
			return true
		}
	}
	return false
}

// ChildPosition returns where a new child of parent starts out: one step
// further along the layout flow.
func (a *PositionAllocator) ChildPosition(parent valueobjects.Position, dir valueobjects.LayoutDirection) valueobjects.Position {
	switch dir {
	case valueobjects.LayoutDown:
		return valueobjects.Position{X: parent.X, Y: parent.Y + a.cfg.ChildOffsetVertical}
	case valueobjects.LayoutUp:
		return valueobjects.Position{X: parent.X, Y: parent.Y - a.cfg.ChildOffsetVertical}
	case valueobjects.LayoutLeft:
		return valueobjects.Position{X: parent.X - a.cfg.ChildOffsetHorizontal, Y: parent.Y}
	default:
		return valueobjects.Position{X: parent.X + a.cfg.ChildOffsetHorizontal, Y: parent.Y}
	}
}

// SiblingPosition returns where a new sibling of node starts out: beside it,
// across the layout flow.
func (a *PositionAllocator) SiblingPosition(node valueobjects.Position, dir valueobjects.LayoutDirection) valueobjects.Position {
	if dir.IsVertical() {
		return valueobjects.Position{X: node.X + a.cfg.SiblingOffsetVertical, Y: node.Y}
	}
	return valueobjects.Position{X: node.X, Y: node.Y + a.cfg.SiblingOffsetHorizontal}
}

// SpreadAxis is the axis along which nodes of one layer are spread for a
// layout direction.
func SpreadAxis(dir valueobjects.LayoutDirection) valueobjects.Axis {
	if dir.IsVertical() {
		return valueobjects.AxisX
	}
	return valueobjects.AxisY
}
