package events

import (
	"time"

	"mindgraph/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(mapID valueobjects.MapID, eventType string, at time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: mapID.String(),
		EventType:   eventType,
		Timestamp:   at,
		Version:     1,
	}
}

// Event types
const (
	TypeMapReplaced            = "map.replaced"
	TypeMapRenamed             = "map.renamed"
	TypeNodeAdded              = "node.added"
	TypeNodeUpdated            = "node.updated"
	TypeNodeDeleted            = "node.deleted"
	TypePositionsUpdated       = "node.positions_updated"
	TypeEdgeAdded              = "edge.added"
	TypeEdgeUpdated            = "edge.updated"
	TypeEdgeDeleted            = "edge.deleted"
	TypeLayoutDirectionChanged = "map.layout_direction_changed"
	TypeHistoryMoved           = "map.history_moved"
	TypeMapSaved               = "document.saved"
	TypeMapOpened              = "document.opened"
	TypeMapDeleted             = "document.deleted"
)

// Map events

// MapReplaced is raised when a new map becomes current, either freshly
// created or loaded from storage.
type MapReplaced struct {
	BaseEvent
	Name   string `json:"name"`
	FileID string `json:"file_id,omitempty"`
}

func NewMapReplaced(mapID valueobjects.MapID, name, fileID string, at time.Time) MapReplaced {
	return MapReplaced{BaseEvent: newBase(mapID, TypeMapReplaced, at), Name: name, FileID: fileID}
}

// MapRenamed is raised when the map's display name changes
type MapRenamed struct {
	BaseEvent
	Name string `json:"name"`
}

func NewMapRenamed(mapID valueobjects.MapID, name string, at time.Time) MapRenamed {
	return MapRenamed{BaseEvent: newBase(mapID, TypeMapRenamed, at), Name: name}
}

// LayoutDirectionChanged is raised when the flow direction changes
type LayoutDirectionChanged struct {
	BaseEvent
	Direction valueobjects.LayoutDirection `json:"direction"`
}

func NewLayoutDirectionChanged(mapID valueobjects.MapID, dir valueobjects.LayoutDirection, at time.Time) LayoutDirectionChanged {
	return LayoutDirectionChanged{BaseEvent: newBase(mapID, TypeLayoutDirectionChanged, at), Direction: dir}
}

// HistoryMoved is raised by undo and redo
type HistoryMoved struct {
	BaseEvent
	Index  int `json:"index"`
	Length int `json:"length"`
}

func NewHistoryMoved(mapID valueobjects.MapID, index, length int, at time.Time) HistoryMoved {
	return HistoryMoved{BaseEvent: newBase(mapID, TypeHistoryMoved, at), Index: index, Length: length}
}

// Node Events

// NodeAdded is raised when a node is created, optionally under a parent
type NodeAdded struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	ParentID valueobjects.NodeID `json:"parent_id,omitempty"`
}

func NewNodeAdded(mapID valueobjects.MapID, nodeID, parentID valueobjects.NodeID, at time.Time) NodeAdded {
	return NodeAdded{BaseEvent: newBase(mapID, TypeNodeAdded, at), NodeID: nodeID, ParentID: parentID}
}

// NodeUpdated is raised when node content, position or size changes
type NodeUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

func NewNodeUpdated(mapID valueobjects.MapID, nodeID valueobjects.NodeID, at time.Time) NodeUpdated {
	return NodeUpdated{BaseEvent: newBase(mapID, TypeNodeUpdated, at), NodeID: nodeID}
}

// NodeDeleted is raised when a node and its incident edges are removed
type NodeDeleted struct {
	BaseEvent
	NodeID         valueobjects.NodeID   `json:"node_id"`
	RemovedEdgeIDs []valueobjects.EdgeID `json:"removed_edge_ids,omitempty"`
}

func NewNodeDeleted(mapID valueobjects.MapID, nodeID valueobjects.NodeID, removed []valueobjects.EdgeID, at time.Time) NodeDeleted {
	return NodeDeleted{BaseEvent: newBase(mapID, TypeNodeDeleted, at), NodeID: nodeID, RemovedEdgeIDs: removed}
}

// PositionsUpdated is raised by bulk position writes such as drags and
// layout results
type PositionsUpdated struct {
	BaseEvent
	NodeIDs []valueobjects.NodeID `json:"node_ids"`
}

func NewPositionsUpdated(mapID valueobjects.MapID, ids []valueobjects.NodeID, at time.Time) PositionsUpdated {
	return PositionsUpdated{BaseEvent: newBase(mapID, TypePositionsUpdated, at), NodeIDs: ids}
}

// Edge Events

// EdgeAdded is raised when two nodes are connected
type EdgeAdded struct {
	BaseEvent
	EdgeID valueobjects.EdgeID `json:"edge_id"`
	Source valueobjects.NodeID `json:"source"`
	Target valueobjects.NodeID `json:"target"`
}

func NewEdgeAdded(mapID valueobjects.MapID, edgeID valueobjects.EdgeID, source, target valueobjects.NodeID, at time.Time) EdgeAdded {
	return EdgeAdded{BaseEvent: newBase(mapID, TypeEdgeAdded, at), EdgeID: edgeID, Source: source, Target: target}
}

// EdgeUpdated is raised when an edge's handles or label change
type EdgeUpdated struct {
	BaseEvent
	EdgeID valueobjects.EdgeID `json:"edge_id"`
}

func NewEdgeUpdated(mapID valueobjects.MapID, edgeID valueobjects.EdgeID, at time.Time) EdgeUpdated {
	return EdgeUpdated{BaseEvent: newBase(mapID, TypeEdgeUpdated, at), EdgeID: edgeID}
}

// EdgeDeleted is raised when an edge is removed on its own
type EdgeDeleted struct {
	BaseEvent
	EdgeID valueobjects.EdgeID `json:"edge_id"`
}

func NewEdgeDeleted(mapID valueobjects.MapID, edgeID valueobjects.EdgeID, at time.Time) EdgeDeleted {
	return EdgeDeleted{BaseEvent: newBase(mapID, TypeEdgeDeleted, at), EdgeID: edgeID}
}

// Document Events

// DocumentEvent is raised when a map is saved to, opened from or deleted
// in storage.
type DocumentEvent struct {
	BaseEvent
	FileID string `json:"file_id"`
	Name   string `json:"name,omitempty"`
}

func NewDocumentEvent(eventType string, mapID valueobjects.MapID, fileID, name string, at time.Time) DocumentEvent {
	return DocumentEvent{BaseEvent: newBase(mapID, eventType, at), FileID: fileID, Name: name}
}
