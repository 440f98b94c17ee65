package layout

import (
	"context"
	"strconv"

	"mindgraph/application/ports"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/pkg/observability"
)

// TracedEngine opens a span around every layout run
type TracedEngine struct {
	next   ports.LayoutEngine
	tracer observability.Tracer
}

func NewTracedEngine(next ports.LayoutEngine, tracer observability.Tracer) *TracedEngine {
	if tracer == nil {
		tracer = observability.NewNoopTracer()
	}
	return &TracedEngine{next: next, tracer: tracer}
}

// Layout implements ports.LayoutEngine
func (e *TracedEngine) Layout(ctx context.Context, g ports.LayoutGraph) (map[valueobjects.NodeID]valueobjects.Position, error) {
	ctx, end := e.tracer.Start(ctx, "layout.run", map[string]string{
		"layout.direction": string(g.Direction),
		"layout.nodes":     strconv.Itoa(len(g.Nodes)),
		"layout.edges":     strconv.Itoa(len(g.Edges)),
	})
	out, err := e.next.Layout(ctx, g)
	end(err)
	return out, err
}
