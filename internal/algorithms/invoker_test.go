package algorithms

import (
	"context"
	"testing"
	"time"

	"graph_router/internal/graph"
	"graph_router/internal/storage"
	"graph_router/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cycle A -> B -> C -> A with a tail C -> D
func testStore() *storage.MemoryGraphStore {
	return storage.NewMemoryGraphStore([]pkg.EdgeRecord{
		{Source: "nodes/A", Target: "nodes/B"},
		{Source: "nodes/B", Target: "nodes/C"},
		{Source: "nodes/C", Target: "nodes/A"},
		{Source: "nodes/C", Target: "nodes/D"},
	})
}

func invoke(t *testing.T, name string, args map[string]string) pkg.ExecutionResult {
	t.Helper()
	return NewInvoker(testStore()).Invoke(context.Background(), pkg.Operation{Name: name, Arguments: args})
}

func TestInvoke_Scalars(t *testing.T) {
	res := invoke(t, "number_of_nodes", nil)
	require.True(t, res.IsOk())
	assert.Equal(t, 4, res.Value())

	res = invoke(t, "number_of_edges", map[string]string{})
	require.True(t, res.IsOk())
	assert.Equal(t, 4, res.Value())

	res = invoke(t, "density", nil)
	require.True(t, res.IsOk())
	assert.InDelta(t, 4.0/12.0, res.Value(), 1e-9)
}

func TestInvoke_Centrality(t *testing.T) {
	res := invoke(t, "degree_centrality", nil)
	require.True(t, res.IsOk())
	scores := res.Value().(map[string]float64)
	assert.InDelta(t, 1.0, scores["nodes/C"], 1e-9)
	assert.InDelta(t, 1.0/3.0, scores["nodes/D"], 1e-9)

	res = invoke(t, "pagerank", map[string]string{"alpha": "0.9"})
	require.True(t, res.IsOk(), "%v", res.Err())
	ranks := res.Value().(map[string]float64)
	assert.Len(t, ranks, 4)
	for node, s := range ranks {
		assert.Greater(t, s, 0.0, node)
	}

	res = invoke(t, "most_central", map[string]string{"measure": "'degree'", "k": "1"})
	require.True(t, res.IsOk())
	assert.Equal(t, []Ranked{{Node: "nodes/C", Score: 1}}, res.Value())

	for _, name := range []string{"betweenness_centrality", "closeness_centrality", "harmonic_centrality", "hits"} {
		res = invoke(t, name, nil)
		assert.True(t, res.IsOk(), name)
	}
}

func TestInvoke_Paths(t *testing.T) {
	res := invoke(t, "shortest_path", map[string]string{"source": "A", "target": "\"nodes/D\""})
	require.True(t, res.IsOk(), "%v", res.Err())
	assert.Equal(t, []string{"nodes/A", "nodes/B", "nodes/C", "nodes/D"}, res.Value())

	res = invoke(t, "shortest_path_length", map[string]string{"source": "A", "target": "D"})
	require.True(t, res.IsOk())
	assert.Equal(t, 3, res.Value())

	res = invoke(t, "shortest_path", map[string]string{"source": "D", "target": "A"})
	require.False(t, res.IsOk())
	assert.Equal(t, pkg.KindAlgorithmExecution, res.Err().Kind)
}

func TestInvoke_Structure(t *testing.T) {
	res := invoke(t, "strongly_connected_components", nil)
	require.True(t, res.IsOk())
	assert.Equal(t, [][]string{{"nodes/A", "nodes/B", "nodes/C"}, {"nodes/D"}}, res.Value())

	res = invoke(t, "connected_components", nil)
	require.True(t, res.IsOk())
	assert.Len(t, res.Value(), 1)

	res = invoke(t, "topological_sort", nil)
	require.False(t, res.IsOk())
	assert.Equal(t, pkg.KindAlgorithmExecution, res.Err().Kind)

	res = invoke(t, "ego_graph", map[string]string{"n": "A", "radius": "1"})
	require.True(t, res.IsOk())
	assert.Equal(t, []string{"nodes/A", "nodes/B"}, res.Value().(*graph.Graph).Nodes())

	res = invoke(t, "reverse", nil)
	require.True(t, res.IsOk())
	assert.Equal(t, []string{"nodes/A"}, res.Value().(*graph.Graph).Successors("nodes/B"))

	res = invoke(t, "largest_connected_component", nil)
	require.True(t, res.IsOk())
	assert.Equal(t, 4, res.Value().(*graph.Graph).NodeCount())
}

func TestTopologicalSortOnDAG(t *testing.T) {
	store := storage.NewMemoryGraphStore([]pkg.EdgeRecord{
		{Source: "b", Target: "c"},
		{Source: "a", Target: "c"},
	})
	res := NewInvoker(store).Invoke(context.Background(), pkg.Operation{Name: "topological_sort"})
	require.True(t, res.IsOk())
	assert.Equal(t, []string{"a", "b", "c"}, res.Value())
}

func TestInvoke_Errors(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args map[string]string
		kind pkg.ErrorKind
	}{
		{"unsupported", "foo", nil, pkg.KindUnsupportedAlgo},
		{"unknown argument", "pagerank", map[string]string{"damping": "0.8"}, pkg.KindParameter},
		{"bad float", "pagerank", map[string]string{"alpha": "high"}, pkg.KindParameter},
		{"alpha out of range", "pagerank", map[string]string{"alpha": "1.5"}, pkg.KindParameter},
		{"alpha NaN", "pagerank", map[string]string{"alpha": "NaN"}, pkg.KindParameter},
		{"tol NaN", "pagerank", map[string]string{"tol": "NaN"}, pkg.KindParameter},
		{"tol infinite", "pagerank", map[string]string{"tol": "+Inf"}, pkg.KindParameter},
		{"hits tol NaN", "hits", map[string]string{"tol": "nan"}, pkg.KindParameter},
		{"hits tol too small", "hits", map[string]string{"tol": "1e-300"}, pkg.KindParameter},
		{"max_iter zero", "pagerank", map[string]string{"max_iter": "0"}, pkg.KindParameter},
		{"missing required", "shortest_path", map[string]string{"source": "A"}, pkg.KindParameter},
		{"unknown node", "shortest_path", map[string]string{"source": "A", "target": "Z"}, pkg.KindParameter},
		{"unknown measure", "most_central", map[string]string{"measure": "fame"}, pkg.KindParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := invoke(t, tt.op, tt.args)
			require.False(t, res.IsOk())
			assert.Equal(t, tt.kind, res.Err().Kind)
		})
	}
}

func TestInvoke_GraphUnavailable(t *testing.T) {
	res := NewInvoker(storage.NewMemoryGraphStore(nil)).Invoke(context.Background(), pkg.Operation{Name: "density"})
	require.False(t, res.IsOk())
	assert.Equal(t, pkg.KindGraphUnavailable, res.Err().Kind)
}

func TestRun_PanicAndTimeout(t *testing.T) {
	inv := &Invoker{
		store: testStore(),
		registry: NewRegistry(
			Spec{Name: "boom", Handler: func(context.Context, *graph.Graph, Args) (any, error) {
				panic("index out of range")
			}},
			Spec{Name: "slow", Handler: func(ctx context.Context, _ *graph.Graph, _ Args) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}},
		),
	}

	res := inv.Invoke(context.Background(), pkg.Operation{Name: "boom"})
	require.False(t, res.IsOk())
	assert.Equal(t, pkg.KindAlgorithmExecution, res.Err().Kind)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res = inv.Invoke(ctx, pkg.Operation{Name: "slow"})
	require.False(t, res.IsOk())
	assert.Equal(t, pkg.KindTimeout, res.Err().Kind)
}

func TestPagerankIterationCap(t *testing.T) {
	res := invoke(t, "pagerank", map[string]string{"tol": "1e-300", "max_iter": "3"})
	require.False(t, res.IsOk())
	assert.Equal(t, pkg.KindAlgorithmExecution, res.Err().Kind)
	assert.Contains(t, res.Err().Detail, "did not converge in 3 iterations")

	res = invoke(t, "pagerank", nil)
	require.True(t, res.IsOk(), "%v", res.Err())
	sum := 0.0
	for _, s := range res.Value().(map[string]float64) {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestRankingWithoutEdges(t *testing.T) {
	store := storage.NewMemoryGraphStore(nil)
	store.AddNode("nodes/A")
	store.AddNode("nodes/B")
	inv := NewInvoker(store)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res := inv.Invoke(ctx, pkg.Operation{Name: "hits"})
	require.True(t, res.IsOk(), "%v", res.Err())
	assert.Equal(t, map[string]HubAuthority{"nodes/A": {}, "nodes/B": {}}, res.Value())

	res = inv.Invoke(ctx, pkg.Operation{Name: "pagerank"})
	require.True(t, res.IsOk(), "%v", res.Err())
	ranks := res.Value().(map[string]float64)
	assert.InDelta(t, 0.5, ranks["nodes/A"], 1e-9)
	assert.InDelta(t, 0.5, ranks["nodes/B"], 1e-9)
}

func TestRun_Cancelled(t *testing.T) {
	inv := &Invoker{
		store: testStore(),
		registry: NewRegistry(Spec{Name: "slow", Handler: func(ctx context.Context, _ *graph.Graph, _ Args) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := graph.FromEdges([]graph.Edge{{Source: "a", Target: "b"}})
	res := inv.Run(ctx, g, pkg.Operation{Name: "slow"})
	require.False(t, res.IsOk())
	assert.Equal(t, pkg.KindAlgorithmExecution, res.Err().Kind)
}

func TestBindRejectsNonFinite(t *testing.T) {
	params := []Param{{Name: "alpha", Kind: KindFloat}}
	for _, raw := range []string{"NaN", "Inf", "-Inf", "1e400"} {
		_, err := Bind("op", params, map[string]string{"alpha": raw}, nil)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, pkg.ErrParameter, raw)
	}
}

func TestRegistrySignatures(t *testing.T) {
	sigs := Builtin().Signatures()
	assert.Contains(t, sigs, "pagerank(alpha, tol, max_iter)")
	assert.Contains(t, sigs, "shortest_path(source, target)")
	assert.Contains(t, sigs, "number_of_nodes()")
	assert.Len(t, sigs, 20)
}

func TestBindDefaultsAndQuotes(t *testing.T) {
	params := []Param{
		{Name: "alpha", Kind: KindFloat, Default: 0.85},
		{Name: "directed", Kind: KindBool},
		{Name: "label", Kind: KindString},
	}
	args, err := Bind("op", params, map[string]string{"directed": "true", "label": "'x'"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.85, args.Float("alpha"))
	assert.True(t, args.Bool("directed"))
	assert.Equal(t, "x", args.String("label"))
}
