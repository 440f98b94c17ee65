package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// NodeID identifies a node within a map. Ids are random UUIDs and are never
// reused, so a position computed for one node can never land on another.
type NodeID string

// EdgeID identifies an edge within a map.
type EdgeID string

// MapID identifies a mind map document.
type MapID string

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID(uuid.New().String())
}

// NewEdgeID creates a new random EdgeID
func NewEdgeID() EdgeID {
	return EdgeID(uuid.New().String())
}

// NewMapID creates a new random MapID
func NewMapID() MapID {
	return MapID(uuid.New().String())
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return "", errors.New("node ID cannot be empty")
	}
	return NodeID(id), nil
}

// NewEdgeIDFromString creates an EdgeID from an existing string
func NewEdgeIDFromString(id string) (EdgeID, error) {
	if id == "" {
		return "", errors.New("edge ID cannot be empty")
	}
	return EdgeID(id), nil
}

func (id NodeID) String() string { return string(id) }
func (id NodeID) IsZero() bool   { return id == "" }
func (id EdgeID) String() string { return string(id) }
func (id EdgeID) IsZero() bool   { return id == "" }
func (id MapID) String() string  { return string(id) }
func (id MapID) IsZero() bool    { return id == "" }

// IsUUID reports whether s parses as a UUID. Imported maps may carry ids in
// other formats, so this is informational only.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
