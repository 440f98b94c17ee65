// Package queries defines the read-only questions the editor answers about
// the current map.
package queries

import (
	"errors"
	"fmt"

	"mindgraph/domain/core/valueobjects"
	"mindgraph/pkg/utils"
)

var errNodeRequired = errors.New("node id is required")

// GetMapQuery returns the current map with its file, history and selection
// state
type GetMapQuery struct{}

func (GetMapQuery) Validate() error { return nil }

// RelationsQuery returns the parents, children and siblings of a node
type RelationsQuery struct {
	NodeID valueobjects.NodeID `json:"nodeId"`
}

func (q RelationsQuery) Validate() error {
	if q.NodeID.IsZero() {
		return errNodeRequired
	}
	return nil
}

// NearestQuery returns the closest node in a direction as seen from NodeID
type NearestQuery struct {
	NodeID    valueobjects.NodeID    `json:"nodeId"`
	Direction valueobjects.Direction `json:"direction"`
}

func (q NearestQuery) Validate() error {
	if q.NodeID.IsZero() {
		return errNodeRequired
	}
	if !q.Direction.IsValid() {
		return fmt.Errorf("invalid direction %q", q.Direction)
	}
	return nil
}

// CyclesQuery lists the directed cycles of the current map
type CyclesQuery struct{}

func (CyclesQuery) Validate() error { return nil }

// HistoryQuery returns the undo timeline
type HistoryQuery struct{}

func (HistoryQuery) Validate() error { return nil }

// ListDocumentsQuery lists one page of stored maps. Zero values select the
// first page at the default size.
type ListDocumentsQuery struct {
	Page     int `json:"page" validate:"gte=0"`
	PageSize int `json:"page_size" validate:"gte=0,lte=100"`
}

func (q ListDocumentsQuery) Validate() error { return utils.ValidateStruct(q) }
