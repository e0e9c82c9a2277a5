package viz

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"graph_router/internal/graph"
	"graph_router/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() *graph.Graph {
	return graph.FromEdges([]graph.Edge{{"a", "b"}, {"b", "c"}, {"c", "a"}})
}

func TestSpringLayout_Deterministic(t *testing.T) {
	first := SpringLayout(triangle(), 42, 50)
	second := SpringLayout(triangle(), 42, 50)
	assert.Equal(t, first, second)

	for _, p := range first {
		assert.True(t, p.X >= 0 && p.X <= 1)
		assert.True(t, p.Y >= 0 && p.Y <= 1)
	}

	other := SpringLayout(triangle(), 7, 50)
	assert.NotEqual(t, first, other)
}

func TestSpringLayout_InsertionOrder(t *testing.T) {
	forward := graph.FromEdges([]graph.Edge{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}, {"a", "c"}})
	backward := graph.FromEdges([]graph.Edge{{"a", "c"}, {"d", "a"}, {"c", "d"}, {"b", "c"}, {"a", "b"}})
	backward.AddNode("e")
	forward.AddNode("e")

	assert.Equal(t, SpringLayout(forward, 42, 50), SpringLayout(backward, 42, 50))
}

func TestSpringLayout_NoEdges(t *testing.T) {
	g := graph.New()
	for _, label := range []string{"x", "y", "z"} {
		g.AddNode(label)
	}

	pos := SpringLayout(g, 42, 30)
	require.Len(t, pos, 3)
	for _, p := range pos {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
	}
	assert.NotEqual(t, pos[0], pos[1])
}

func TestSpringLayout_Small(t *testing.T) {
	assert.Empty(t, SpringLayout(graph.New(), 42, 10))

	g := graph.New()
	g.AddNode("solo")
	assert.Equal(t, []Point{{X: 0.5, Y: 0.5}}, SpringLayout(g, 42, 10))
}

func TestRender_Graph(t *testing.T) {
	dir := t.TempDir()
	v := New(Config{OutputDir: dir, Width: 300, Height: 300, Seed: 42})

	outcome := v.Render(context.Background(), triangle())
	require.Equal(t, pkg.MessageRendered, outcome.Message, outcome.Error)
	assert.Equal(t, dir, filepath.Dir(outcome.Path))

	info, err := os.Stat(outcome.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRender_NothingToDraw(t *testing.T) {
	v := New(Config{OutputDir: t.TempDir()})
	ctx := context.Background()

	tests := []struct {
		name    string
		value   any
		message string
	}{
		{"scalar", 42, pkg.MessageNotAGraph},
		{"mapping", map[string]float64{"a": 0.5}, pkg.MessageNotAGraph},
		{"slice", []string{"a", "b"}, pkg.MessageNotAGraph},
		{"error", errors.New("boom"), pkg.MessageNotAGraph},
		{"nil", nil, pkg.MessageNotAGraph},
		{"nil graph", (*graph.Graph)(nil), pkg.MessageEmptyGraph},
		{"empty graph", graph.New(), pkg.MessageEmptyGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := v.Render(ctx, tt.value)
			assert.Equal(t, tt.message, outcome.Message)
			assert.Empty(t, outcome.Path)
		})
	}
}

func TestRender_Failure(t *testing.T) {
	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	v := New(Config{OutputDir: filepath.Join(blocker, "out")})
	outcome := v.Render(context.Background(), triangle())
	assert.Equal(t, pkg.MessageRenderFailed, outcome.Message)
	assert.NotEmpty(t, outcome.Error)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome = New(Config{OutputDir: t.TempDir()}).Render(ctx, triangle())
	assert.Equal(t, pkg.MessageRenderFailed, outcome.Message)
}
