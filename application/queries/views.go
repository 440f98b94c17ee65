package queries

import (
	"mindgraph/application/services"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/valueobjects"
)

// MapView is the answer to GetMapQuery
type MapView struct {
	Map       *aggregates.MindMap   `json:"map"`
	FileID    string                `json:"fileId,omitempty"`
	Dirty     bool                  `json:"dirty"`
	History   services.HistoryState `json:"history"`
	Selection services.Selection    `json:"selection"`
}

// Relations is the answer to RelationsQuery. Next and Prev are empty when
// the node has no siblings.
type Relations struct {
	NodeID      valueobjects.NodeID   `json:"nodeId"`
	Parents     []valueobjects.NodeID `json:"parents"`
	Children    []valueobjects.NodeID `json:"children"`
	Siblings    []valueobjects.NodeID `json:"siblings"`
	NextSibling valueobjects.NodeID   `json:"nextSibling,omitempty"`
	PrevSibling valueobjects.NodeID   `json:"prevSibling,omitempty"`
}

// Nearest is the answer to NearestQuery
type Nearest struct {
	NodeID valueobjects.NodeID `json:"nodeId,omitempty"`
	Found  bool                `json:"found"`
}

// Cycles is the answer to CyclesQuery
type Cycles struct {
	Cycles [][]valueobjects.NodeID `json:"cycles"`
}
