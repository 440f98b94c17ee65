package aggregates

import (
	"errors"
	"time"

	"mindgraph/domain/core/entities"
	"mindgraph/domain/core/valueobjects"
	"mindgraph/domain/events"
)

var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrEdgeNotFound     = errors.New("edge not found")
	ErrNodeExists       = errors.New("node already exists in map")
	ErrEdgeExists       = errors.New("edge already exists")
	ErrSelfLoop         = errors.New("cannot connect node to itself")
	ErrDuplicateEdge    = errors.New("an edge between these nodes already exists")
	ErrLastNode         = errors.New("cannot delete the last remaining node")
	ErrDanglingEdge     = errors.New("edge references non-existent node")
	ErrInvalidDirection = errors.New("invalid layout direction")
)

// MindMap is the aggregate root of a mind map document. Nodes and edges keep
// their insertion order, which several queries use as a tie-breaker.
//
// A MindMap held by the store is treated as immutable once published; every
// mutation runs on a Clone.
type MindMap struct {
	ID              valueobjects.MapID           `json:"id"`
	Name            string                       `json:"name"`
	CreatedAt       time.Time                    `json:"createdAt"`
	UpdatedAt       time.Time                    `json:"updatedAt"`
	LayoutDirection valueobjects.LayoutDirection `json:"layoutDirection"`
	Nodes           []entities.Node              `json:"nodes"`
	Edges           []entities.Edge              `json:"edges"`

	events []events.DomainEvent
}

// NewMindMap creates a map holding a single root node at the origin.
func NewMindMap(name, rootContent string, now time.Time) *MindMap {
	now = now.UTC()
	return &MindMap{
		ID:              valueobjects.NewMapID(),
		Name:            name,
		CreatedAt:       now,
		UpdatedAt:       now,
		LayoutDirection: valueobjects.DefaultLayoutDirection,
		Nodes: []entities.Node{{
			ID:      valueobjects.NewNodeID(),
			Content: rootContent,
		}},
		Edges: []entities.Edge{},
	}
}

// Clone returns a deep copy without pending events.
func (m *MindMap) Clone() *MindMap {
	if m == nil {
		return nil
	}
	c := &MindMap{
		ID:              m.ID,
		Name:            m.Name,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		LayoutDirection: m.LayoutDirection,
		Nodes:           make([]entities.Node, len(m.Nodes)),
		Edges:           make([]entities.Edge, len(m.Edges)),
	}
	copy(c.Nodes, m.Nodes)
	copy(c.Edges, m.Edges)
	return c
}

// Touch records a modification time.
func (m *MindMap) Touch(now time.Time) {
	m.UpdatedAt = now.UTC()
}

func (m *MindMap) nodeIndex(id valueobjects.NodeID) int {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MindMap) edgeIndex(id valueobjects.EdgeID) int {
	for i := range m.Edges {
		if m.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// HasNode checks if a node with the given id exists
func (m *MindMap) HasNode(id valueobjects.NodeID) bool {
	return m.nodeIndex(id) >= 0
}

// GetNode returns a copy of the node with the given id
func (m *MindMap) GetNode(id valueobjects.NodeID) (entities.Node, bool) {
	if i := m.nodeIndex(id); i >= 0 {
		return m.Nodes[i], true
	}
	return entities.Node{}, false
}

// GetEdge returns a copy of the edge with the given id
func (m *MindMap) GetEdge(id valueobjects.EdgeID) (entities.Edge, bool) {
	if i := m.edgeIndex(id); i >= 0 {
		return m.Edges[i], true
	}
	return entities.Edge{}, false
}

// HasEdgeBetween reports whether an edge from source to target exists. The
// reverse direction is a different edge.
func (m *MindMap) HasEdgeBetween(source, target valueobjects.NodeID) bool {
	for _, e := range m.Edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// AddNode appends a node
func (m *MindMap) AddNode(node entities.Node, at time.Time) error {
	if m.HasNode(node.ID) {
		return ErrNodeExists
	}
	m.Nodes = append(m.Nodes, node)
	m.Touch(at)
	return nil
}

// UpdateNode applies a patch to an existing node
func (m *MindMap) UpdateNode(id valueobjects.NodeID, patch entities.NodePatch, at time.Time) error {
	i := m.nodeIndex(id)
	if i < 0 {
		return ErrNodeNotFound
	}
	m.Nodes[i] = patch.Apply(m.Nodes[i])
	m.Touch(at)
	m.addEvent(events.NewNodeUpdated(m.ID, id, m.UpdatedAt))
	return nil
}

// RemoveNode deletes a node together with every edge touching it. The last
// node of a map cannot be removed.
func (m *MindMap) RemoveNode(id valueobjects.NodeID, at time.Time) ([]valueobjects.EdgeID, error) {
	i := m.nodeIndex(id)
	if i < 0 {
		return nil, ErrNodeNotFound
	}
	if len(m.Nodes) <= 1 {
		return nil, ErrLastNode
	}

	m.Nodes = append(m.Nodes[:i:i], m.Nodes[i+1:]...)

	var removed []valueobjects.EdgeID
	kept := make([]entities.Edge, 0, len(m.Edges))
	for _, e := range m.Edges {
		if e.Touches(id) {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	m.Edges = kept
	m.Touch(at)
	m.addEvent(events.NewNodeDeleted(m.ID, id, removed, m.UpdatedAt))
	return removed, nil
}

// SetPositions writes positions for the given ids. Unknown ids are skipped;
// the ids actually written are returned.
func (m *MindMap) SetPositions(positions map[valueobjects.NodeID]valueobjects.Position, at time.Time) []valueobjects.NodeID {
	var applied []valueobjects.NodeID
	for i := range m.Nodes {
		if p, ok := positions[m.Nodes[i].ID]; ok {
			m.Nodes[i].Position = p
			applied = append(applied, m.Nodes[i].ID)
		}
	}
	if len(applied) > 0 {
		m.Touch(at)
		m.addEvent(events.NewPositionsUpdated(m.ID, applied, m.UpdatedAt))
	}
	return applied
}

// ConnectNodes adds a directed edge. Self-loops and a second edge for the same
// ordered pair are rejected; the opposite direction is allowed and so are
// cycles.
func (m *MindMap) ConnectNodes(edge entities.Edge, at time.Time) error {
	if edge.Source == edge.Target {
		return ErrSelfLoop
	}
	if !m.HasNode(edge.Source) || !m.HasNode(edge.Target) {
		return ErrNodeNotFound
	}
	if m.HasEdgeBetween(edge.Source, edge.Target) {
		return ErrDuplicateEdge
	}
	if m.edgeIndex(edge.ID) >= 0 {
		return ErrEdgeExists
	}
	m.Edges = append(m.Edges, edge)
	m.Touch(at)
	m.addEvent(events.NewEdgeAdded(m.ID, edge.ID, edge.Source, edge.Target, m.UpdatedAt))
	return nil
}

// UpdateEdge applies a patch to an existing edge
func (m *MindMap) UpdateEdge(id valueobjects.EdgeID, patch entities.EdgePatch, at time.Time) error {
	i := m.edgeIndex(id)
	if i < 0 {
		return ErrEdgeNotFound
	}
	m.Edges[i] = patch.Apply(m.Edges[i])
	m.Touch(at)
	m.addEvent(events.NewEdgeUpdated(m.ID, id, m.UpdatedAt))
	return nil
}

// RemoveEdge deletes a single edge
func (m *MindMap) RemoveEdge(id valueobjects.EdgeID, at time.Time) error {
	i := m.edgeIndex(id)
	if i < 0 {
		return ErrEdgeNotFound
	}
	m.Edges = append(m.Edges[:i:i], m.Edges[i+1:]...)
	m.Touch(at)
	m.addEvent(events.NewEdgeDeleted(m.ID, id, m.UpdatedAt))
	return nil
}

// SetLayoutDirection changes the flow direction used by layout
func (m *MindMap) SetLayoutDirection(dir valueobjects.LayoutDirection, at time.Time) error {
	if !dir.IsValid() {
		return ErrInvalidDirection
	}
	m.LayoutDirection = dir
	m.Touch(at)
	m.addEvent(events.NewLayoutDirectionChanged(m.ID, dir, m.UpdatedAt))
	return nil
}

// Rename changes the display name
func (m *MindMap) Rename(name string, at time.Time) {
	m.Name = name
	m.Touch(at)
	m.addEvent(events.NewMapRenamed(m.ID, name, m.UpdatedAt))
}

// Validate checks structural invariants of a map, typically one loaded from
// storage.
func (m *MindMap) Validate() error {
	if len(m.Nodes) == 0 {
		return errors.New("map must contain at least one node")
	}
	if m.LayoutDirection != "" && !m.LayoutDirection.IsValid() {
		return ErrInvalidDirection
	}
	nodes := make(map[valueobjects.NodeID]struct{}, len(m.Nodes))
	for _, n := range m.Nodes {
		if n.ID.IsZero() {
			return errors.New("node id cannot be empty")
		}
		if _, dup := nodes[n.ID]; dup {
			return ErrNodeExists
		}
		nodes[n.ID] = struct{}{}
	}
	pairs := make(map[string]struct{}, len(m.Edges))
	for _, e := range m.Edges {
		if _, ok := nodes[e.Source]; !ok {
			return ErrDanglingEdge
		}
		if _, ok := nodes[e.Target]; !ok {
			return ErrDanglingEdge
		}
		if e.Source == e.Target {
			return ErrSelfLoop
		}
		key := makeEdgeKey(e.Source, e.Target)
		if _, dup := pairs[key]; dup {
			return ErrDuplicateEdge
		}
		pairs[key] = struct{}{}
	}
	return nil
}

// Normalize fills defaults missing from imported maps.
func (m *MindMap) Normalize() {
	if !m.LayoutDirection.IsValid() {
		m.LayoutDirection = valueobjects.DefaultLayoutDirection
	}
	if m.Nodes == nil {
		m.Nodes = []entities.Node{}
	}
	if m.Edges == nil {
		m.Edges = []entities.Edge{}
	}
	if m.ID.IsZero() {
		m.ID = valueobjects.NewMapID()
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
}

// GetUncommittedEvents returns events raised since the last commit
func (m *MindMap) GetUncommittedEvents() []events.DomainEvent {
	return m.events
}

// MarkEventsAsCommitted clears pending events
func (m *MindMap) MarkEventsAsCommitted() {
	m.events = nil
}

// RecordEvent queues an event raised on behalf of the map
func (m *MindMap) RecordEvent(event events.DomainEvent) {
	m.addEvent(event)
}

func (m *MindMap) addEvent(event events.DomainEvent) {
	m.events = append(m.events, event)
}

func makeEdgeKey(sourceID, targetID valueobjects.NodeID) string {
	return sourceID.String() + "->" + targetID.String()
}
