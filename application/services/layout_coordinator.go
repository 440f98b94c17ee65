package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/domain/config"
	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
)

// LayoutMetrics receives the outcome of every layout run
type LayoutMetrics interface {
	LayoutFinished(mode, outcome string, d time.Duration)
}

// LayoutOutcome is delivered when an asynchronous layout has been applied
type LayoutOutcome struct {
	Moved int
	Err   error
}

// LayoutCoordinator prepares graphs for the layout engine and merges its
// results back. A failing engine never surfaces as an error: nodes simply
// keep their positions.
type LayoutCoordinator struct {
	engine  ports.LayoutEngine
	cfg     *config.DomainConfig
	timeout time.Duration
	logger  *zap.Logger
	metrics LayoutMetrics
}

// NewLayoutCoordinator creates a coordinator. A zero timeout disables the
// deadline.
func NewLayoutCoordinator(engine ports.LayoutEngine, cfg *config.DomainConfig, timeout time.Duration, logger *zap.Logger, metrics LayoutMetrics) *LayoutCoordinator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayoutCoordinator{
		engine:  engine,
		cfg:     cfg,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Layout computes positions for every node. On engine failure each node's
// current position is returned unchanged.
func (c *LayoutCoordinator) Layout(ctx context.Context, nodes []entities.Node, edges []entities.Edge, dir valueobjects.LayoutDirection) map[valueobjects.NodeID]valueobjects.Position {
	return c.run(ctx, "full", nodes, edges, dir)
}

// LayoutSubset tidies only the selected nodes. The engine sees the selected
// nodes plus their direct neighbours so the arrangement respects the
// surrounding structure, but only selected nodes get new positions. Those
// positions are shifted so the first selected node stays where it was; the
// rest keep the arrangement the engine chose relative to it.
func (c *LayoutCoordinator) LayoutSubset(ctx context.Context, selected []valueobjects.NodeID, nodes []entities.Node, edges []entities.Edge, dir valueobjects.LayoutDirection) map[valueobjects.NodeID]valueobjects.Position {
	existing := make(map[valueobjects.NodeID]valueobjects.Position, len(nodes))
	for _, n := range nodes {
		existing[n.ID] = n.Position
	}

	isSelected := make(map[valueobjects.NodeID]bool, len(selected))
	var anchor valueobjects.NodeID
	for _, id := range selected {
		if _, ok := existing[id]; !ok {
			continue
		}
		if anchor.IsZero() {
			anchor = id
		}
		isSelected[id] = true
	}
	if anchor.IsZero() {
		return map[valueobjects.NodeID]valueobjects.Position{}
	}

	neighbourhood := make(map[valueobjects.NodeID]bool, len(isSelected))
	for id := range isSelected {
		neighbourhood[id] = true
	}
	for _, e := range edges {
		if isSelected[e.Source] {
			neighbourhood[e.Target] = true
		}
		if isSelected[e.Target] {
			neighbourhood[e.Source] = true
		}
	}

	subNodes := make([]entities.Node, 0, len(neighbourhood))
	for _, n := range nodes {
		if neighbourhood[n.ID] {
			subNodes = append(subNodes, n)
		}
	}
	subEdges := make([]entities.Edge, 0)
	for _, e := range edges {
		if neighbourhood[e.Source] && neighbourhood[e.Target] {
			subEdges = append(subEdges, e)
		}
	}

	laid := c.run(ctx, "subset", subNodes, subEdges, dir)
	delta := existing[anchor].Sub(laid[anchor])

	out := make(map[valueobjects.NodeID]valueobjects.Position, len(isSelected))
	for id := range isSelected {
		out[id] = laid[id].Add(delta)
	}
	return out
}

func (c *LayoutCoordinator) run(ctx context.Context, mode string, nodes []entities.Node, edges []entities.Edge, dir valueobjects.LayoutDirection) map[valueobjects.NodeID]valueobjects.Position {
	existing := make(map[valueobjects.NodeID]valueobjects.Position, len(nodes))
	for _, n := range nodes {
		existing[n.ID] = n.Position
	}
	if len(nodes) == 0 {
		return existing
	}
	if !dir.IsValid() {
		dir = valueobjects.DefaultLayoutDirection
	}

	g := ports.LayoutGraph{
		Direction:    dir,
		NodeSpacing:  c.cfg.NodeSpacing,
		LayerSpacing: c.cfg.LayerSpacing,
		Nodes:        make([]ports.LayoutNode, 0, len(nodes)),
	}
	for _, n := range nodes {
		w, h := n.Size(c.cfg.DefaultNodeWidth, c.cfg.DefaultNodeHeight)
		g.Nodes = append(g.Nodes, ports.LayoutNode{ID: n.ID, Width: w, Height: h})
	}
	for _, e := range edges {
		_, okS := existing[e.Source]
		_, okT := existing[e.Target]
		if okS && okT && e.Source != e.Target {
			g.Edges = append(g.Edges, ports.LayoutEdge{Source: e.Source, Target: e.Target})
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := c.engine.Layout(ctx, g)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("Layout failed, keeping existing positions",
			zap.String("mode", mode),
			zap.Int("nodes", len(g.Nodes)),
			zap.Int("edges", len(g.Edges)),
			zap.Error(err),
		)
		c.record(mode, "fallback", elapsed)
		return existing
	}
	c.record(mode, "ok", elapsed)

	out := make(map[valueobjects.NodeID]valueobjects.Position, len(existing))
	for id, p := range existing {
		if lp, ok := result[id]; ok {
			out[id] = lp
		} else {
			out[id] = p
		}
	}
	return out
}

func (c *LayoutCoordinator) record(mode, outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.LayoutFinished(mode, outcome, d)
	}
}

// Apply lays out the store's current map and writes the positions back. It
// returns the number of nodes written.
func (c *LayoutCoordinator) Apply(ctx context.Context, store *GraphStore) (int, error) {
	return c.ApplySubset(ctx, store, nil)
}

// ApplySubset lays out the selected nodes of the current map, or the whole
// map when selected is empty, and writes the positions back.
func (c *LayoutCoordinator) ApplySubset(ctx context.Context, store *GraphStore, selected []valueobjects.NodeID) (int, error) {
	nodes, edges, dir, ok := store.Snapshot()
	if !ok {
		return 0, ErrNoCurrentMap
	}

	var positions map[valueobjects.NodeID]valueobjects.Position
	if len(selected) == 0 {
		positions = c.Layout(ctx, nodes, edges, dir)
	} else {
		positions = c.LayoutSubset(ctx, selected, nodes, edges, dir)
	}

	// nodes keeps the write order deterministic
	updates := make([]PositionUpdate, 0, len(positions))
	for _, n := range nodes {
		if p, ok := positions[n.ID]; ok {
			updates = append(updates, PositionUpdate{ID: n.ID, Position: p})
		}
	}
	// The map may have changed while the engine ran; ids that vanished are
	// skipped by the store and left out of the count.
	return store.MergePositions(updates)
}

// ApplyAsync runs ApplySubset on its own goroutine. The channel receives
// exactly one outcome and is then closed.
func (c *LayoutCoordinator) ApplyAsync(ctx context.Context, store *GraphStore, selected []valueobjects.NodeID) <-chan LayoutOutcome {
	out := make(chan LayoutOutcome, 1)
	go func() {
		defer close(out)
		moved, err := c.ApplySubset(ctx, store, selected)
		out <- LayoutOutcome{Moved: moved, Err: err}
	}()
	return out
}
