package services

import (
	"sort"

	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

// RelationIndex is a read-only view of the parent, child and sibling
// relations of one map snapshot. It is cheap to build and is rebuilt for every
// query rather than kept in sync with the store.
type RelationIndex struct {
	nodes    []entities.Node
	byID     map[valueobjects.NodeID]int
	parents  map[valueobjects.NodeID][]valueobjects.NodeID
	children map[valueobjects.NodeID][]valueobjects.NodeID
	siblings map[valueobjects.NodeID][]valueobjects.NodeID
}

// NewRelationIndex derives relations from nodes and edges. Edges whose
// endpoints are not among nodes are ignored.
func NewRelationIndex(nodes []entities.Node, edges []entities.Edge) *RelationIndex {
	idx := &RelationIndex{
		nodes:    nodes,
		byID:     make(map[valueobjects.NodeID]int, len(nodes)),
		parents:  make(map[valueobjects.NodeID][]valueobjects.NodeID, len(nodes)),
		children: make(map[valueobjects.NodeID][]valueobjects.NodeID, len(nodes)),
		siblings: make(map[valueobjects.NodeID][]valueobjects.NodeID, len(nodes)),
	}
	for i, n := range nodes {
		idx.byID[n.ID] = i
	}

	for _, e := range edges {
		if _, ok := idx.byID[e.Target]; ok {
			idx.parents[e.Target] = appendUnique(idx.parents[e.Target], e.Source)
		}
		if _, ok := idx.byID[e.Source]; ok {
			idx.children[e.Source] = appendUnique(idx.children[e.Source], e.Target)
		}
	}

	for _, n := range nodes {
		seen := make(map[valueobjects.NodeID]struct{})
		var sibs []valueobjects.NodeID
		for _, p := range idx.parents[n.ID] {
			for _, c := range idx.children[p] {
				if c == n.ID {
					continue
				}
				if _, dup := seen[c]; dup {
					continue
				}
				seen[c] = struct{}{}
				sibs = append(sibs, c)
			}
		}
		idx.siblings[n.ID] = sibs
	}
	return idx
}

// ParentsOf returns the distinct sources of edges into id, in edge order.
func (r *RelationIndex) ParentsOf(id valueobjects.NodeID) []valueobjects.NodeID {
	return clone(r.parents[id])
}

// ChildrenOf returns the distinct targets of edges out of id, in edge order.
func (r *RelationIndex) ChildrenOf(id valueobjects.NodeID) []valueobjects.NodeID {
	return clone(r.children[id])
}

// SiblingsOf returns every node sharing at least one parent with id. With
// several parents this is the union of each parent's children.
func (r *RelationIndex) SiblingsOf(id valueobjects.NodeID) []valueobjects.NodeID {
	return clone(r.siblings[id])
}

// NextSibling returns the sibling that follows id when siblings are ordered
// left to right, then top to bottom. It wraps to the first sibling.
func (r *RelationIndex) NextSibling(id valueobjects.NodeID) (entities.Node, bool) {
	return r.stepSibling(id, true)
}

// PrevSibling is the mirror of NextSibling and wraps to the last sibling.
func (r *RelationIndex) PrevSibling(id valueobjects.NodeID) (entities.Node, bool) {
	return r.stepSibling(id, false)
}

func (r *RelationIndex) stepSibling(id valueobjects.NodeID, forward bool) (entities.Node, bool) {
	ci, ok := r.byID[id]
	if !ok {
		return entities.Node{}, false
	}
	current := r.nodes[ci].Position

	var sibs []entities.Node
	for _, n := range r.nodes {
		for _, s := range r.siblings[id] {
			if n.ID == s {
				sibs = append(sibs, n)
				break
			}
		}
	}
	if len(sibs) == 0 {
		return entities.Node{}, false
	}

	less := func(a, b valueobjects.Position) bool {
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	}
	sort.SliceStable(sibs, func(i, j int) bool {
		if forward {
			return less(sibs[i].Position, sibs[j].Position)
		}
		return less(sibs[j].Position, sibs[i].Position)
	})

	for _, s := range sibs {
		if forward && less(current, s.Position) {
			return s, true
		}
		if !forward && less(s.Position, current) {
			return s, true
		}
	}
	return sibs[0], true
}

// RootNodes returns the nodes that are not the target of any edge, in node
// order.
func RootNodes(nodes []entities.Node, edges []entities.Edge) []entities.Node {
	hasParent := make(map[valueobjects.NodeID]struct{}, len(edges))
	for _, e := range edges {
		hasParent[e.Target] = struct{}{}
	}
	roots := make([]entities.Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := hasParent[n.ID]; !ok {
			roots = append(roots, n)
		}
	}
	return roots
}

// DetectCycles reports the cycles found by a depth-first walk of the edge
// set. Each cycle starts at the node the walk re-entered and repeats it at the
// end, e.g. [a b c a]. Walks start from endpoints in first-seen edge order, so
// the result is deterministic but not every elementary cycle is listed.
func DetectCycles(edges []entities.Edge) [][]valueobjects.NodeID {
	adjacency := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	var order []valueobjects.NodeID
	seen := make(map[valueobjects.NodeID]struct{})
	note := func(id valueobjects.NodeID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			order = append(order, id)
		}
	}
	for _, e := range edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		note(e.Source)
		note(e.Target)
	}

	var (
		cycles  [][]valueobjects.NodeID
		visited = make(map[valueobjects.NodeID]bool)
		onStack = make(map[valueobjects.NodeID]bool)
		path    []valueobjects.NodeID
	)

	var dfs func(id valueobjects.NodeID)
	dfs = func(id valueobjects.NodeID) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, next := range adjacency[id] {
			if !visited[next] {
				dfs(next)
				continue
			}
			if onStack[next] {
				for i, p := range path {
					if p == next {
						cycle := make([]valueobjects.NodeID, 0, len(path)-i+1)
						cycle = append(cycle, path[i:]...)
						cycles = append(cycles, append(cycle, next))
						break
					}
				}
			}
		}

		path = path[:len(path)-1]
		onStack[id] = false
	}

	for _, id := range order {
		if !visited[id] {
			dfs(id)
		}
	}
	return cycles
}

func appendUnique(list []valueobjects.NodeID, id valueobjects.NodeID) []valueobjects.NodeID {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}

func clone(ids []valueobjects.NodeID) []valueobjects.NodeID {
	if len(ids) == 0 {
		return []valueobjects.NodeID{}
	}
	out := make([]valueobjects.NodeID, len(ids))
	copy(out, ids)
	return out
}
