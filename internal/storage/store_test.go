package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"graph_router/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeDocuments(t *testing.T) {
	docs := EdgeDocuments("nodes", []pkg.EdgeRecord{
		{Source: "1", Target: "2"},
		{Source: "patents/9", Target: "3"},
	})

	assert.Equal(t, []map[string]any{
		{"_from": "nodes/1", "_to": "nodes/2"},
		{"_from": "patents/9", "_to": "nodes/3"},
	}, docs)
}

func TestNormalizeRecord(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1.0}, normalizeRecord(map[string]any{"a": 1.0}))
	assert.Equal(t, map[string]any{"value": "nodes/1"}, normalizeRecord("nodes/1"))
}

func TestMemoryGraphStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryGraphStore(nil)

	g, err := store.FetchGraph(ctx)
	require.NoError(t, err)
	assert.Nil(t, g, "empty store has no graph")

	require.NoError(t, store.InsertEdges(ctx, []pkg.EdgeRecord{{Source: "a", Target: "b"}}))
	store.AddNode("lonely")

	g, err = store.FetchGraph(ctx)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, []string{"a", "b", "lonely"}, g.Nodes())

	again, err := store.FetchGraph(ctx)
	require.NoError(t, err)
	assert.NotSame(t, g, again)

	_, err = store.ExecuteQuery(ctx, "FOR v IN nodes RETURN v")
	assert.ErrorIs(t, err, pkg.ErrQuery)
}

func TestLoadMemoryGraphStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"source":"x","target":"y"}]`), 0o644))

	store, err := LoadMemoryGraphStore(path)
	require.NoError(t, err)
	g, err := store.FetchGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())

	_, err = LoadMemoryGraphStore(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, pkg.ErrConnection)
}

func TestNewArangoStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewArangoStore(ctx, ArangoConfig{
		Host:         "http://127.0.0.1:1",
		Username:     "root",
		Database:     "_system",
		GraphName:    "g",
		QueryTimeout: 2 * time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, []pkg.ErrorKind{pkg.KindConnection, pkg.KindTimeout}, pkg.KindOf(err))
}

func TestCheckGraph(t *testing.T) {
	config := ArangoConfig{GraphName: "patents", EdgeCollection: "edges"}

	assert.NoError(t, checkGraph(config, true))
	assert.NoError(t, checkGraph(config, false), "missing graph falls back to the edge collection")

	config.RequireGraph = true
	assert.NoError(t, checkGraph(config, true))
	err := checkGraph(config, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrConnection)
	assert.Contains(t, err.Error(), `"patents"`)
}

func TestSampleKeys(t *testing.T) {
	assert.Nil(t, sampleKeys(nil))

	records := []map[string]any{normalizeRecord([]any{"_from", "_to", "since"})}
	assert.Equal(t, []string{"_from", "_to", "since"}, sampleKeys(records))

	assert.Empty(t, sampleKeys([]map[string]any{{"a": 1.0}}))
}

func TestArangoStoreDescribesSchema(t *testing.T) {
	var store GraphStore = &ArangoStore{}
	_, ok := store.(SchemaDescriber)
	assert.True(t, ok)

	store = NewMemoryGraphStore(nil)
	_, ok = store.(SchemaDescriber)
	assert.False(t, ok)
}
