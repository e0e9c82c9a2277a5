package dispatch

import (
	"context"
	"testing"
	"time"

	"graph_router/internal/accel"
	"graph_router/internal/algorithms"
	"graph_router/internal/graph"
	"graph_router/internal/metrics"
	"graph_router/internal/storage"
	"graph_router/pkg"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore answers AQL with canned rows, or blocks until the context ends
type fakeStore struct {
	*storage.MemoryGraphStore
	rows  []map[string]any
	block bool
}

func (f *fakeStore) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	if f.block {
		<-ctx.Done()
		return nil, pkg.Wrap(pkg.KindQuery, ctx.Err(), "error executing AQL query")
	}
	return f.rows, nil
}

// fakeRenderer records what it was asked to draw
type fakeRenderer struct {
	values []any
}

func (f *fakeRenderer) Render(_ context.Context, value any) pkg.VisualizationOutcome {
	f.values = append(f.values, value)
	if g, ok := value.(*graph.Graph); ok && g.NodeCount() > 0 {
		return pkg.VisualizationOutcome{Message: pkg.MessageRendered, Path: "out.png"}
	}
	return pkg.VisualizationOutcome{Message: pkg.MessageNotAGraph}
}

func newTestDispatcher(store storage.GraphStore, timeout time.Duration) (*Dispatcher, *fakeRenderer, *metrics.Metrics) {
	renderer := &fakeRenderer{}
	m := metrics.NewMetrics()
	d := New(store,
		algorithms.NewInvoker(store),
		accel.NewInvoker(store, accel.Config{Workers: 2}),
		renderer, m, Config{Timeout: timeout})
	return d, renderer, m
}

func sampleStore() *fakeStore {
	return &fakeStore{
		MemoryGraphStore: storage.NewMemoryGraphStore([]pkg.EdgeRecord{
			{Source: "nodes/A", Target: "nodes/B"},
			{Source: "nodes/B", Target: "nodes/C"},
		}),
		rows: []map[string]any{{"value": "nodes/A"}},
	}
}

func TestExecute_AQL(t *testing.T) {
	d, renderer, _ := newTestDispatcher(sampleStore(), time.Second)

	out := d.Execute(context.Background(), pkg.CategoryAQL, "FOR v IN nodes RETURN v._id")
	require.True(t, out.Result.IsOk())
	assert.Equal(t, []map[string]any{{"value": "nodes/A"}}, out.Result.Value())
	require.NotNil(t, out.Visualization)
	assert.Equal(t, pkg.MessageNotAGraph, out.Visualization.Message)
	assert.Len(t, renderer.values, 1)
}

func TestExecute_Nx(t *testing.T) {
	d, _, m := newTestDispatcher(sampleStore(), time.Second)
	ctx := context.Background()

	out := d.Execute(ctx, pkg.CategoryNx, "number_of_nodes()")
	require.True(t, out.Result.IsOk())
	assert.Equal(t, 3, out.Result.Value())
	require.NotNil(t, out.Visualization)
	assert.Equal(t, pkg.MessageNotAGraph, out.Visualization.Message)

	out = d.Execute(ctx, pkg.CategoryNx, "ego_graph(n=A, radius=1)")
	require.True(t, out.Result.IsOk(), "%v", out.Result.Err())
	assert.Equal(t, pkg.MessageRendered, out.Visualization.Message)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Dispatches.WithLabelValues("Nx", "ok")))
}

func TestExecute_FailuresStillVisualize(t *testing.T) {
	d, renderer, m := newTestDispatcher(sampleStore(), time.Second)
	ctx := context.Background()

	tests := []struct {
		category pkg.Category
		code     string
		kind     pkg.ErrorKind
	}{
		{pkg.CategoryNx, "pagerank", pkg.KindParse},
		{pkg.CategoryNx, "foo()", pkg.KindUnsupportedAlgo},
		{pkg.CategoryNxCu, "bfs start=A", pkg.KindParse},
		{pkg.CategoryNxCu, "bfs(start=Z)", pkg.KindParameter},
	}
	for _, tt := range tests {
		out := d.Execute(ctx, tt.category, tt.code)
		require.False(t, out.Result.IsOk(), tt.code)
		assert.Equal(t, tt.kind, out.Result.Err().Kind, tt.code)
		require.NotNil(t, out.Visualization, tt.code)
		assert.Equal(t, pkg.MessageNotAGraph, out.Visualization.Message)
	}

	assert.Len(t, renderer.values, len(tests))
	assert.IsType(t, &pkg.Error{}, renderer.values[0])
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Dispatches.WithLabelValues("NxCu", "error")))
}

func TestExecute_NxCu(t *testing.T) {
	d, _, _ := newTestDispatcher(sampleStore(), time.Second)

	out := d.Execute(context.Background(), pkg.CategoryNxCu, "bfs(start=A, depth_limit=1)")
	require.True(t, out.Result.IsOk(), "%v", out.Result.Err())
	assert.Equal(t, []accel.Visit{
		{Vertex: "nodes/A", Distance: 0},
		{Vertex: "nodes/B", Distance: 1, Predecessor: "nodes/A"},
	}, out.Result.Value())
	assert.NotNil(t, out.Visualization)
}

func TestExecute_Viz(t *testing.T) {
	d, renderer, _ := newTestDispatcher(sampleStore(), time.Second)
	ctx := context.Background()

	out := d.Execute(ctx, pkg.CategoryViz, "graph")
	require.True(t, out.Result.IsOk())
	assert.Nil(t, out.Visualization)
	assert.Equal(t, pkg.VisualizationOutcome{Message: pkg.MessageRendered, Path: "out.png"}, out.Result.Value())

	out = d.Execute(ctx, pkg.CategoryViz, "")
	require.True(t, out.Result.IsOk())

	out = d.Execute(ctx, pkg.CategoryViz, "degree_centrality()")
	require.True(t, out.Result.IsOk())
	assert.Equal(t, pkg.MessageNotAGraph, out.Result.Value().(pkg.VisualizationOutcome).Message)
	assert.Nil(t, out.Visualization)

	assert.Len(t, renderer.values, 3)
}

func TestExecute_VizWithoutGraph(t *testing.T) {
	d, renderer, _ := newTestDispatcher(storage.NewMemoryGraphStore(nil), time.Second)

	out := d.Execute(context.Background(), pkg.CategoryViz, "graph")
	require.False(t, out.Result.IsOk())
	assert.Equal(t, pkg.KindGraphUnavailable, out.Result.Err().Kind)
	assert.Nil(t, out.Visualization)
	assert.Empty(t, renderer.values)
}

func TestExecute_InvalidCategory(t *testing.T) {
	d, renderer, _ := newTestDispatcher(sampleStore(), time.Second)

	out := d.Execute(context.Background(), pkg.Category("SQL"), "SELECT 1")
	require.False(t, out.Result.IsOk())
	assert.Equal(t, pkg.KindInvalidCategory, out.Result.Err().Kind)
	assert.Nil(t, out.Visualization)
	assert.Empty(t, renderer.values)
}

func TestExecute_Timeout(t *testing.T) {
	store := sampleStore()
	store.block = true
	d, _, _ := newTestDispatcher(store, 20*time.Millisecond)

	out := d.Execute(context.Background(), pkg.CategoryAQL, "FOR v IN nodes RETURN v")
	require.False(t, out.Result.IsOk())
	assert.Equal(t, pkg.KindTimeout, out.Result.Err().Kind)
	require.NotNil(t, out.Visualization)
	assert.Equal(t, pkg.MessageNotAGraph, out.Visualization.Message)
}

func TestExecute_CancelledIsNotTimeout(t *testing.T) {
	store := sampleStore()
	store.block = true
	d, _, _ := newTestDispatcher(store, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := d.Execute(ctx, pkg.CategoryAQL, "FOR v IN nodes RETURN v")
	require.False(t, out.Result.IsOk())
	assert.Equal(t, pkg.KindQuery, out.Result.Err().Kind)
	assert.ErrorIs(t, out.Result.Err(), context.Canceled)
}
