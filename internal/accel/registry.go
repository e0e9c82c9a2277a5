package accel

import (
	"context"
	"runtime"
	"sort"

	"graph_router/internal/algorithms"
	"graph_router/internal/graph"
	"graph_router/internal/storage"
	"graph_router/pkg"
)

// Config sizes the kernel worker pool
type Config struct {
	Workers int `envconfig:"ACCEL_WORKERS" yaml:"workers"`
}

// Kernel runs on the CSR form of the store graph
type Kernel func(ctx context.Context, c *CSR, args algorithms.Args, workers int) (any, error)

// NewInvoker creates an invoker over the accelerated registry
func NewInvoker(store storage.GraphStore, config Config) *algorithms.Invoker {
	return algorithms.NewRegistryInvoker(store, Builtin(config.Workers))
}

// Builtin returns the accelerated registry. Each entry converts the graph to
// CSR before running its kernel; a failed conversion is a ConversionError.
func Builtin(workers int) *algorithms.Registry {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	entry := func(name, doc string, params []algorithms.Param, kernel Kernel) algorithms.Spec {
		return algorithms.Spec{
			Name:   name,
			Params: params,
			Doc:    doc,
			Handler: func(ctx context.Context, g *graph.Graph, args algorithms.Args) (any, error) {
				c, err := FromGraph(g)
				if err != nil {
					return nil, err
				}
				return kernel(ctx, c, args, workers)
			},
		}
	}

	return algorithms.NewRegistry(
		entry("pagerank", "PageRank scores", []algorithms.Param{
			{Name: "alpha", Kind: algorithms.KindFloat, Default: 0.85},
			{Name: "tol", Kind: algorithms.KindFloat, Default: 1e-5},
			{Name: "max_iter", Kind: algorithms.KindInt, Default: 100},
		}, pagerankKernel),
		entry("degree_centrality", "(in+out degree) / (n-1)", nil, degreeKernel),
		entry("bfs", "hop distance and predecessor from start", []algorithms.Param{
			{Name: "start", Kind: algorithms.KindNode, Required: true},
			{Name: "depth_limit", Kind: algorithms.KindInt, Default: -1},
		}, bfsKernel),
		entry("weakly_connected_components", "components ignoring direction", nil, wccKernel),
		entry("triangle_count", "triangles per vertex, undirected", nil, triangleKernel),
	)
}

func pagerankKernel(ctx context.Context, c *CSR, args algorithms.Args, workers int) (any, error) {
	alpha, tol, maxIter := args.Float("alpha"), args.Float("tol"), args.Int("max_iter")
	if alpha <= 0 || alpha >= 1 {
		return nil, pkg.Errorf(pkg.KindParameter, "alpha must be in (0, 1), got %v", alpha)
	}
	if tol <= 0 || maxIter <= 0 {
		return nil, pkg.Errorf(pkg.KindParameter, "tol and max_iter must be positive")
	}
	ranks, err := PageRank(ctx, c, alpha, tol, maxIter, workers)
	if err != nil {
		return nil, err
	}
	return byVertex(c, ranks), nil
}

func degreeKernel(ctx context.Context, c *CSR, _ algorithms.Args, workers int) (any, error) {
	scores, err := DegreeCentrality(ctx, c, workers)
	if err != nil {
		return nil, err
	}
	return byVertex(c, scores), nil
}

func bfsKernel(ctx context.Context, c *CSR, args algorithms.Args, workers int) (any, error) {
	start, ok := c.Index(args.String("start"))
	if !ok {
		return nil, pkg.Errorf(pkg.KindParameter, "start vertex %q not found", args.String("start"))
	}
	return BFS(ctx, c, start, args.Int("depth_limit"), workers)
}

func wccKernel(ctx context.Context, c *CSR, _ algorithms.Args, workers int) (any, error) {
	labels, err := WeaklyConnectedComponents(ctx, c, workers)
	if err != nil {
		return nil, err
	}

	groups := make(map[int32][]string)
	for v, l := range labels {
		groups[l] = append(groups[l], c.Labels[v])
	}
	out := make([][]string, 0, len(groups))
	for _, members := range groups {
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out, nil
}

func triangleKernel(ctx context.Context, c *CSR, _ algorithms.Args, workers int) (any, error) {
	counts, err := TriangleCount(ctx, c, workers)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(counts))
	for v, n := range counts {
		out[c.Labels[v]] = n
	}
	return out, nil
}

func byVertex(c *CSR, values []float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for v, x := range values {
		out[c.Labels[v]] = x
	}
	return out
}
