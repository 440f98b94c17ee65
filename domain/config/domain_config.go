package config

import "fmt"

// DomainConfig holds the tunable rules of the mind map engine
type DomainConfig struct {
	// History
	HistoryLimit int

	// Map defaults
	DefaultMapName    string
	RootNodeText      string
	NewNodeText       string
	DefaultNodeWidth  float64
	DefaultNodeHeight float64

	// Directional navigation
	DirectionThreshold float64
	DominanceFactor    float64

	// Overlap avoidance
	OverlapWidth       float64
	OverlapHeight      float64
	OverlapStep        float64
	OverlapMaxAttempts int

	// Placement offsets for new nodes
	ChildOffsetVertical     float64
	ChildOffsetHorizontal   float64
	SiblingOffsetVertical   float64
	SiblingOffsetHorizontal float64

	// Layered layout spacing
	NodeSpacing  float64
	LayerSpacing float64
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		HistoryLimit: 50,

		DefaultMapName:    "New Map",
		RootNodeText:      "Root",
		NewNodeText:       "New node",
		DefaultNodeWidth:  180,
		DefaultNodeHeight: 60,

		DirectionThreshold: 10,
		DominanceFactor:    0.5,

		OverlapWidth:       150,
		OverlapHeight:      60,
		OverlapStep:        100,
		OverlapMaxAttempts: 20,

		// children move 120 down/up or 200 right/left of their parent,
		// siblings 200 across in vertical layouts and 100 down in horizontal ones
		ChildOffsetVertical:     120,
		ChildOffsetHorizontal:   200,
		SiblingOffsetVertical:   200,
		SiblingOffsetHorizontal: 100,

		NodeSpacing:  50,
		LayerSpacing: 80,
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit)
	}
	if c.DefaultNodeWidth <= 0 || c.DefaultNodeHeight <= 0 {
		return fmt.Errorf("default node size must be positive")
	}
	if c.OverlapStep <= 0 || c.OverlapMaxAttempts < 1 {
		return fmt.Errorf("overlap step and attempts must be positive")
	}
	if c.DominanceFactor < 0 {
		return fmt.Errorf("dominance factor cannot be negative")
	}
	return nil
}
