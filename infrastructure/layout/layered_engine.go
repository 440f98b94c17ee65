// Package layout holds the layout engine adapters: a layered graph layout
// and the decorators that add caching, tracing and a circuit breaker to any
// engine.
package layout

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"mindgraph/application/ports"
	"mindgraph/domain/core/valueobjects"
)

const defaultSweeps = 4

// LayeredEngine is a Sugiyama style layout. It runs in four phases:
// cycle removal, layer assignment, in-layer ordering that reduces edge
// crossings, and coordinate assignment for the requested direction.
type LayeredEngine struct {
	sweeps int
	logger *zap.Logger
}

// NewLayeredEngine creates the engine. sweeps is the number of down and up
// passes of crossing reduction; values below one use the default.
func NewLayeredEngine(sweeps int, logger *zap.Logger) *LayeredEngine {
	if sweeps < 1 {
		sweeps = defaultSweeps
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayeredEngine{sweeps: sweeps, logger: logger}
}

// layered is the working state of one run. Node i is g.Nodes[i].
type layered struct {
	n      int
	width  []float64
	height []float64
	succ   [][]int
	pred   [][]int
	layer  []int
	layers [][]int
	pos    []int
}

// Layout implements ports.LayoutEngine
func (e *LayeredEngine) Layout(ctx context.Context, g ports.LayoutGraph) (map[valueobjects.NodeID]valueobjects.Position, error) {
	if len(g.Nodes) == 0 {
		return map[valueobjects.NodeID]valueobjects.Position{}, nil
	}

	l, err := e.build(g)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.assignLayers(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.order(e.sweeps)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	coords := l.coordinates(g.Direction, g.NodeSpacing, g.LayerSpacing)
	out := make(map[valueobjects.NodeID]valueobjects.Position, len(g.Nodes))
	for i, n := range g.Nodes {
		out[n.ID] = coords[i]
	}

	e.logger.Debug("Layered layout computed",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)),
		zap.Int("layers", len(l.layers)),
		zap.String("direction", string(g.Direction)),
	)
	return out, nil
}

// build indexes the graph and removes cycles. Inside every strongly
// connected component, edges that point from a later node to an earlier one
// in input order are reversed, which leaves each component acyclic while
// edges between components already form a DAG.
func (e *LayeredEngine) build(g ports.LayoutGraph) (*layered, error) {
	n := len(g.Nodes)
	index := make(map[valueobjects.NodeID]int, n)
	l := &layered{
		n:      n,
		width:  make([]float64, n),
		height: make([]float64, n),
		succ:   make([][]int, n),
		pred:   make([][]int, n),
	}

	dg := simple.NewDirectedGraph()
	for i, node := range g.Nodes {
		if _, dup := index[node.ID]; dup {
			return nil, fmt.Errorf("layout: duplicate node %q", node.ID)
		}
		index[node.ID] = i
		l.width[i] = node.Width
		l.height[i] = node.Height
		dg.AddNode(simple.Node(int64(i)))
	}

	type pair struct{ from, to int }
	var edges []pair
	for _, edge := range g.Edges {
		s, okS := index[edge.Source]
		t, okT := index[edge.Target]
		if !okS || !okT {
			return nil, fmt.Errorf("layout: edge %s->%s references unknown node", edge.Source, edge.Target)
		}
		if s == t || dg.HasEdgeFromTo(int64(s), int64(t)) {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(int64(s)), simple.Node(int64(t))))
		edges = append(edges, pair{s, t})
	}

	component := make([]int, n)
	for c, scc := range topo.TarjanSCC(dg) {
		for _, node := range scc {
			component[node.ID()] = c
		}
	}

	seen := make(map[pair]bool, len(edges))
	for _, p := range edges {
		if component[p.from] == component[p.to] && p.from > p.to {
			p = pair{p.to, p.from}
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		l.succ[p.from] = append(l.succ[p.from], p.to)
		l.pred[p.to] = append(l.pred[p.to], p.from)
	}
	return l, nil
}

// assignLayers places every node one layer below its deepest predecessor
// (longest path layering).
func (l *layered) assignLayers() error {
	dag := simple.NewDirectedGraph()
	for i := 0; i < l.n; i++ {
		dag.AddNode(simple.Node(int64(i)))
	}
	for from, tos := range l.succ {
		for _, to := range tos {
			dag.SetEdge(dag.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
		}
	}
	sorted, err := topo.Sort(dag)
	if err != nil {
		return fmt.Errorf("layout: cycle removal left a cycle: %w", err)
	}

	l.layer = make([]int, l.n)
	depth := 0
	for _, node := range sorted {
		u := int(node.ID())
		for _, v := range l.succ[u] {
			if l.layer[u]+1 > l.layer[v] {
				l.layer[v] = l.layer[u] + 1
			}
		}
		if l.layer[u] > depth {
			depth = l.layer[u]
		}
	}

	l.layers = make([][]int, depth+1)
	for i := 0; i < l.n; i++ {
		l.layers[l.layer[i]] = append(l.layers[l.layer[i]], i)
	}
	l.pos = make([]int, l.n)
	l.reindex()
	return nil
}

func (l *layered) reindex() {
	for _, nodes := range l.layers {
		for p, v := range nodes {
			l.pos[v] = p
		}
	}
}

// order reorders nodes inside layers with barycenter sweeps and keeps the
// arrangement with the fewest crossings seen.
func (l *layered) order(sweeps int) {
	best := l.snapshot()
	bestCrossings := l.crossings()

	for i := 0; i < sweeps && bestCrossings > 0; i++ {
		for k := 1; k < len(l.layers); k++ {
			l.sortByBarycenter(k, l.pred)
		}
		for k := len(l.layers) - 2; k >= 0; k-- {
			l.sortByBarycenter(k, l.succ)
		}
		if c := l.crossings(); c < bestCrossings {
			best, bestCrossings = l.snapshot(), c
		}
	}

	l.layers = best
	l.reindex()
}

func (l *layered) sortByBarycenter(k int, neighbours [][]int) {
	nodes := l.layers[k]
	bary := make(map[int]float64, len(nodes))
	for _, v := range nodes {
		if len(neighbours[v]) == 0 {
			bary[v] = float64(l.pos[v])
			continue
		}
		sum := 0.0
		for _, u := range neighbours[v] {
			sum += float64(l.pos[u])
		}
		bary[v] = sum / float64(len(neighbours[v]))
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return bary[nodes[i]] < bary[nodes[j]]
	})
	for p, v := range nodes {
		l.pos[v] = p
	}
}

// crossings counts crossing pairs among edges that join adjacent layers.
func (l *layered) crossings() int {
	total := 0
	for k := 0; k+1 < len(l.layers); k++ {
		type seg struct{ a, b int }
		var segs []seg
		for _, u := range l.layers[k] {
			for _, v := range l.succ[u] {
				if l.layer[v] == k+1 {
					segs = append(segs, seg{l.pos[u], l.pos[v]})
				}
			}
		}
		for i := range segs {
			for j := i + 1; j < len(segs); j++ {
				if (segs[i].a-segs[j].a)*(segs[i].b-segs[j].b) < 0 {
					total++
				}
			}
		}
	}
	return total
}

func (l *layered) snapshot() [][]int {
	out := make([][]int, len(l.layers))
	for k, nodes := range l.layers {
		out[k] = append([]int(nil), nodes...)
	}
	return out
}

// coordinates converts layers into top-left positions. Layers advance along
// the flow axis; nodes of a layer are packed across it and each layer is
// centred on the widest one.
func (l *layered) coordinates(dir valueobjects.LayoutDirection, nodeSpacing, layerSpacing float64) []valueobjects.Position {
	vertical := dir.IsVertical()
	along := func(i int) float64 { // extent in the flow direction
		if vertical {
			return l.height[i]
		}
		return l.width[i]
	}
	across := func(i int) float64 {
		if vertical {
			return l.width[i]
		}
		return l.height[i]
	}

	thickness := make([]float64, len(l.layers))
	span := make([]float64, len(l.layers))
	maxSpan := 0.0
	for k, nodes := range l.layers {
		for j, v := range nodes {
			thickness[k] = math.Max(thickness[k], along(v))
			span[k] += across(v)
			if j > 0 {
				span[k] += nodeSpacing
			}
		}
		maxSpan = math.Max(maxSpan, span[k])
	}

	flow := make([]float64, l.n)
	cross := make([]float64, l.n)
	start := 0.0
	for k, nodes := range l.layers {
		offset := (maxSpan - span[k]) / 2
		for _, v := range nodes {
			flow[v] = start + (thickness[k]-along(v))/2
			cross[v] = offset
			offset += across(v) + nodeSpacing
		}
		start += thickness[k] + layerSpacing
	}
	extent := start - layerSpacing

	out := make([]valueobjects.Position, l.n)
	for i := 0; i < l.n; i++ {
		f := flow[i]
		if dir == valueobjects.LayoutUp || dir == valueobjects.LayoutLeft {
			f = extent - flow[i] - along(i)
		}
		if vertical {
			out[i] = valueobjects.Position{X: cross[i], Y: f}
		} else {
			out[i] = valueobjects.Position{X: f, Y: cross[i]}
		}
	}
	return out
}
