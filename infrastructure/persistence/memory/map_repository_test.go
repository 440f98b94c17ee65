package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgraph/domain/core/aggregates"
	"mindgraph/pkg/errors"
)

func TestMapRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMapRepository()
	m := aggregates.NewSampleMindMap("sample", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	fileID, err := repo.Save(ctx, m, "")
	require.NoError(t, err)
	assert.NotEmpty(t, fileID)

	m.Name = "changed after save"
	loaded, err := repo.Load(ctx, fileID)
	require.NoError(t, err)
	assert.Equal(t, "sample", loaded.Name)
	assert.Equal(t, m.Nodes, loaded.Nodes)

	loaded.Nodes[0].Content = "mutated"
	again, err := repo.Load(ctx, fileID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Nodes[0].Content)
}

func TestMapRepository_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMapRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.Save(ctx, aggregates.NewMindMap("old", "", base), "a")
	require.NoError(t, err)
	_, err = repo.Save(ctx, aggregates.NewMindMap("new", "", base.Add(time.Hour)), "b")
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Name)
	assert.Equal(t, "a", list[1].FileID)
}

func TestMapRepository_Missing(t *testing.T) {
	ctx := context.Background()
	repo := NewMapRepository()

	_, err := repo.Load(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(repo.Delete(ctx, "missing")))

	_, err = repo.Save(ctx, nil, "")
	assert.True(t, errors.IsValidation(err))
}
