package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"graph_router/pkg"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(id string, at time.Time) pkg.RunRecord {
	return pkg.RunRecord{
		ID:       id,
		Query:    "How many nodes?",
		Category: pkg.CategoryNx,
		Code:     "number_of_nodes()",
		Output: pkg.WorkflowOutput{
			Result:        pkg.Ok(float64(3)),
			Visualization: &pkg.VisualizationOutcome{Message: pkg.MessageNotAGraph},
		},
		DurationMS: 12,
		CreatedAt:  at,
	}
}

func TestRedisHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedisHistory(ctx, HistoryConfig{RedisURL: "redis://" + mr.Addr(), MaxEntries: 2})
	require.NoError(t, err)
	defer store.Close()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Save(ctx, sampleRun("a", now)))
	require.NoError(t, store.Save(ctx, sampleRun("b", now.Add(time.Second))))
	require.NoError(t, store.Save(ctx, sampleRun("c", now.Add(2*time.Second))))

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "number_of_nodes()", got.Code)
	assert.True(t, got.Output.Result.IsOk())
	assert.Equal(t, float64(3), got.Output.Result.Value())
	assert.True(t, mr.TTL("run:b") > 0)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2, "list is trimmed to MaxEntries")
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)

	_, err = store.Get(ctx, "missing")
	assert.Error(t, err)
}

func TestNewRedisHistory_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedisHistory(ctx, HistoryConfig{})
	assert.Error(t, err)

	_, err = NewRedisHistory(ctx, HistoryConfig{RedisURL: "not a url"})
	assert.Error(t, err)
}

func TestFileHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	store := NewFileHistory(path, 2)

	recent, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	now := time.Now().UTC()
	require.NoError(t, store.Save(ctx, sampleRun("a", now)))
	require.NoError(t, store.Save(ctx, sampleRun("b", now.Add(time.Minute))))
	require.NoError(t, store.Save(ctx, sampleRun("c", now.Add(2*time.Minute))))

	recent, err = store.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)

	got, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, pkg.CategoryNx, got.Category)

	_, err = store.Get(ctx, "a")
	assert.Error(t, err, "oldest entry was evicted")
}

func TestNewHistoryStore_FallsBackToFile(t *testing.T) {
	store, err := NewHistoryStore(context.Background(), HistoryConfig{FilePath: filepath.Join(t.TempDir(), "h.json")})
	require.NoError(t, err)
	_, ok := store.(*FileHistory)
	assert.True(t, ok)
}
