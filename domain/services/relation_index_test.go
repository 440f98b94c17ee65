package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

type nid = valueobjects.NodeID

func node(id nid, x, y float64) entities.Node {
	return entities.Node{ID: id, Position: valueobjects.Position{X: x, Y: y}}
}

func edge(s, t nid) entities.Edge {
	return entities.Edge{ID: valueobjects.EdgeID(string(s) + "->" + string(t)), Source: s, Target: t}
}

func TestSiblingsOfUnionAcrossParents(t *testing.T) {
	nodes := []entities.Node{node("p1", 0, 0), node("p2", 0, 100), node("x", 200, 0), node("y", 200, 100), node("z", 200, 200)}
	edges := []entities.Edge{edge("p1", "x"), edge("p1", "y"), edge("p2", "x"), edge("p2", "z")}

	idx := NewRelationIndex(nodes, edges)

	assert.ElementsMatch(t, []nid{"y", "z"}, idx.SiblingsOf("x"))
	assert.Equal(t, []nid{"p1", "p2"}, idx.ParentsOf("x"))
	assert.Equal(t, []nid{"x", "y"}, idx.ChildrenOf("p1"))
	assert.Equal(t, []nid{"x"}, idx.SiblingsOf("y"))
	assert.Empty(t, idx.SiblingsOf("p1"))
}

func TestRelationIndexDeduplicates(t *testing.T) {
	nodes := []entities.Node{node("a", 0, 0), node("b", 0, 0)}
	// duplicate ordered pairs can only come from hand-edited files
	edges := []entities.Edge{edge("a", "b"), {ID: "dup", Source: "a", Target: "b"}}

	idx := NewRelationIndex(nodes, edges)
	assert.Equal(t, []nid{"b"}, idx.ChildrenOf("a"))
	assert.Equal(t, []nid{"a"}, idx.ParentsOf("b"))
	assert.Empty(t, idx.ParentsOf("missing"))
}

func TestRootNodes(t *testing.T) {
	nodes := []entities.Node{node("a", 0, 0), node("b", 0, 0), node("c", 0, 0), node("d", 0, 0)}
	edges := []entities.Edge{edge("a", "b"), edge("b", "c")}

	roots := RootNodes(nodes, edges)
	require.Len(t, roots, 2)
	assert.Equal(t, nid("a"), roots[0].ID)
	assert.Equal(t, nid("d"), roots[1].ID)

	// a pure cycle has no root
	assert.Empty(t, RootNodes(nodes[:2], []entities.Edge{edge("a", "b"), edge("b", "a")}))
}

func TestDetectCycles(t *testing.T) {
	tests := []struct {
		name  string
		edges []entities.Edge
		want  [][]nid
	}{
		{
			name:  "acyclic",
			edges: []entities.Edge{edge("a", "b"), edge("b", "c"), edge("a", "c")},
			want:  nil,
		},
		{
			name:  "triangle",
			edges: []entities.Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")},
			want:  [][]nid{{"a", "b", "c", "a"}},
		},
		{
			name:  "two cycle in the middle of a path",
			edges: []entities.Edge{edge("r", "a"), edge("a", "b"), edge("b", "a")},
			want:  [][]nid{{"a", "b", "a"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCycles(tt.edges))
		})
	}
}

func TestNextPrevSiblingWrap(t *testing.T) {
	nodes := []entities.Node{node("p", 0, 0), node("a", 100, 0), node("b", 200, 0), node("c", 300, 0)}
	edges := []entities.Edge{edge("p", "a"), edge("p", "b"), edge("p", "c")}
	idx := NewRelationIndex(nodes, edges)

	next, ok := idx.NextSibling("a")
	require.True(t, ok)
	assert.Equal(t, nid("b"), next.ID)

	next, ok = idx.NextSibling("c")
	require.True(t, ok)
	assert.Equal(t, nid("a"), next.ID, "wraps to the first sibling")

	prev, ok := idx.PrevSibling("a")
	require.True(t, ok)
	assert.Equal(t, nid("c"), prev.ID, "wraps to the last sibling")

	prev, ok = idx.PrevSibling("c")
	require.True(t, ok)
	assert.Equal(t, nid("b"), prev.ID)

	_, ok = idx.NextSibling("p")
	assert.False(t, ok)
}
