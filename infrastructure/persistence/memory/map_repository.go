// Package memory provides a process-local map repository, used for local
// development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"mindgraph/application/ports"
	"mindgraph/domain/core/aggregates"
	"mindgraph/pkg/errors"
)

// MapRepository keeps documents in memory
type MapRepository struct {
	mu   sync.RWMutex
	docs map[string]*aggregates.MindMap
}

func NewMapRepository() *MapRepository {
	return &MapRepository{docs: make(map[string]*aggregates.MindMap)}
}

// List returns metadata for every stored map, most recently updated first
func (r *MapRepository) List(ctx context.Context) ([]ports.MapMeta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ports.MapMeta, 0, len(r.docs))
	for fileID, m := range r.docs {
		out = append(out, ports.MapMeta{FileID: fileID, Name: m.Name, UpdatedAt: m.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].FileID < out[j].FileID
	})
	return out, nil
}

func (r *MapRepository) Load(ctx context.Context, fileID string) (*aggregates.MindMap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.docs[fileID]
	if !ok {
		return nil, errors.NewNotFoundError("map").WithDetail("fileId", fileID)
	}
	return m.Clone(), nil
}

func (r *MapRepository) Save(ctx context.Context, m *aggregates.MindMap, fileID string) (string, error) {
	if m == nil {
		return "", errors.NewValidationError("map is required")
	}
	if fileID == "" {
		fileID = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[fileID] = m.Clone()
	return fileID, nil
}

func (r *MapRepository) Delete(ctx context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[fileID]; !ok {
		return errors.NewNotFoundError("map").WithDetail("fileId", fileID)
	}
	delete(r.docs, fileID)
	return nil
}
