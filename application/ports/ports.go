package ports

import (
	"context"
	"time"

	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/domain/events"
)

// MapMeta describes a stored map without loading it
type MapMeta struct {
	FileID    string    `json:"fileId"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MapRepository persists whole map documents. The engine never talks to it
// directly; the document service loads and saves through it.
// This is a port in hexagonal architecture - storage details live in adapters.
type MapRepository interface {
	// List returns metadata for every stored map, most recently updated first
	List(ctx context.Context) ([]MapMeta, error)

	// Load retrieves a map by file id
	Load(ctx context.Context, fileID string) (*aggregates.MindMap, error)

	// Save stores a map and returns its file id. An empty fileID creates a
	// new document.
	Save(ctx context.Context, m *aggregates.MindMap, fileID string) (string, error)

	// Delete removes a stored map
	Delete(ctx context.Context, fileID string) error
}

// LayoutNode is one node handed to a layout engine
type LayoutNode struct {
	ID     valueobjects.NodeID `json:"id"`
	Width  float64             `json:"width"`
	Height float64             `json:"height"`
}

// LayoutEdge is one edge handed to a layout engine
type LayoutEdge struct {
	Source valueobjects.NodeID `json:"source"`
	Target valueobjects.NodeID `json:"target"`
}

// LayoutGraph is the input of a layout run. Every edge endpoint is present in
// Nodes.
type LayoutGraph struct {
	Direction    valueobjects.LayoutDirection `json:"direction"`
	NodeSpacing  float64                      `json:"nodeSpacing"`
	LayerSpacing float64                      `json:"layerSpacing"`
	Nodes        []LayoutNode                 `json:"nodes"`
	Edges        []LayoutEdge                 `json:"edges"`
}

// LayoutEngine computes top-left positions for a directed graph: layered
// along the flow direction, with crossings reduced and cycles broken
// internally. Engines may omit nodes from the result.
type LayoutEngine interface {
	Layout(ctx context.Context, g LayoutGraph) (map[valueobjects.NodeID]valueobjects.Position, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with a time to live
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}
