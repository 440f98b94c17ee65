package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mindgraph/domain/config"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

func TestAvoidOverlap(t *testing.T) {
	alloc := NewPositionAllocator(nil)
	existing := []entities.Node{node("a", 200, 0), node("b", 200, 100)}

	tests := []struct {
		name string
		in   valueobjects.Position
		axis valueobjects.Axis
		want valueobjects.Position
	}{
		{"free spot unchanged", valueobjects.Position{X: 600, Y: 0}, valueobjects.AxisY, valueobjects.Position{X: 600, Y: 0}},
		{"shift along y", valueobjects.Position{X: 200, Y: 0}, valueobjects.AxisY, valueobjects.Position{X: 200, Y: 200}},
		{"shift along x", valueobjects.Position{X: 200, Y: 0}, valueobjects.AxisX, valueobjects.Position{X: 400, Y: 0}},
		{"shift both", valueobjects.Position{X: 200, Y: 0}, valueobjects.AxisBoth, valueobjects.Position{X: 400, Y: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alloc.AvoidOverlap(tt.in, existing, tt.axis))
		})
	}
}

func TestAvoidOverlapGivesUp(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.OverlapMaxAttempts = 3
	alloc := NewPositionAllocator(cfg)

	var wall []entities.Node
	for i := 0; i < 10; i++ {
		wall = append(wall, node(nid(rune('a'+i)), 0, float64(i*100)))
	}

	got := alloc.AvoidOverlap(valueobjects.Position{}, wall, valueobjects.AxisY)
	assert.Equal(t, valueobjects.Position{X: 0, Y: 300}, got)
}

func TestChildAndSiblingPositions(t *testing.T) {
	alloc := NewPositionAllocator(nil)
	origin := valueobjects.Position{X: 10, Y: 10}

	assert.Equal(t, valueobjects.Position{X: 10, Y: 130}, alloc.ChildPosition(origin, valueobjects.LayoutDown))
	assert.Equal(t, valueobjects.Position{X: 10, Y: -110}, alloc.ChildPosition(origin, valueobjects.LayoutUp))
	assert.Equal(t, valueobjects.Position{X: 210, Y: 10}, alloc.ChildPosition(origin, valueobjects.LayoutRight))
	assert.Equal(t, valueobjects.Position{X: -190, Y: 10}, alloc.ChildPosition(origin, valueobjects.LayoutLeft))

	assert.Equal(t, valueobjects.Position{X: 210, Y: 10}, alloc.SiblingPosition(origin, valueobjects.LayoutDown))
	assert.Equal(t, valueobjects.Position{X: 10, Y: 110}, alloc.SiblingPosition(origin, valueobjects.LayoutRight))

	assert.Equal(t, valueobjects.AxisX, SpreadAxis(valueobjects.LayoutUp))
	assert.Equal(t, valueobjects.AxisY, SpreadAxis(valueobjects.LayoutLeft))
}
