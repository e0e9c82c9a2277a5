package algorithms

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"graph_router/internal/graph"
	"graph_router/pkg"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/topo"
)

// Ranked is one entry of a top-k ranking
type Ranked struct {
	Node  string  `json:"node"`
	Score float64 `json:"score"`
}

// HubAuthority holds HITS scores for one node
type HubAuthority struct {
	Hub       float64 `json:"hub"`
	Authority float64 `json:"authority"`
}

// minTolerance bounds HITS, which iterates until its change drops below tol
const minTolerance = 1e-12

// Builtin returns the in-memory registry
func Builtin() *Registry {
	source := Param{Name: "source", Kind: KindNode, Required: true}
	target := Param{Name: "target", Kind: KindNode, Required: true}

	return NewRegistry(
		Spec{Name: "number_of_nodes", Doc: "node count", Handler: numberOfNodes},
		Spec{Name: "number_of_edges", Doc: "edge count", Handler: numberOfEdges},
		Spec{Name: "density", Doc: "m / n(n-1)", Handler: density},
		Spec{Name: "degree_centrality", Doc: "(in+out degree) / (n-1)", Handler: degreeCentrality(inDegree, outDegree)},
		Spec{Name: "in_degree_centrality", Doc: "in degree / (n-1)", Handler: degreeCentrality(inDegree)},
		Spec{Name: "out_degree_centrality", Doc: "out degree / (n-1)", Handler: degreeCentrality(outDegree)},
		Spec{
			Name: "pagerank",
			Params: []Param{
				{Name: "alpha", Kind: KindFloat, Default: 0.85},
				{Name: "tol", Kind: KindFloat, Default: 1e-6},
				{Name: "max_iter", Kind: KindInt, Default: 100},
			},
			Doc:     "PageRank scores",
			Handler: pagerank,
		},
		Spec{
			Name:    "hits",
			Params:  []Param{{Name: "tol", Kind: KindFloat, Default: 1e-8}},
			Doc:     "hub and authority scores",
			Handler: hits,
		},
		Spec{Name: "betweenness_centrality", Doc: "normalized betweenness", Handler: betweenness},
		Spec{Name: "closeness_centrality", Doc: "closeness over reachable nodes", Handler: closeness},
		Spec{Name: "harmonic_centrality", Doc: "sum of inverse distances", Handler: harmonic},
		Spec{Name: "shortest_path", Params: []Param{source, target}, Doc: "node sequence", Handler: shortestPath},
		Spec{Name: "shortest_path_length", Params: []Param{source, target}, Doc: "hop count", Handler: shortestPathLength},
		Spec{Name: "connected_components", Doc: "weakly connected components", Handler: connectedComponents},
		Spec{Name: "strongly_connected_components", Doc: "Tarjan SCC", Handler: stronglyConnectedComponents},
		Spec{Name: "topological_sort", Doc: "order of a DAG", Handler: topologicalSort},
		Spec{
			Name: "ego_graph",
			Params: []Param{
				{Name: "n", Kind: KindNode, Required: true},
				{Name: "radius", Kind: KindInt, Default: 1},
			},
			Doc:     "subgraph within radius hops of n",
			Handler: egoGraph,
		},
		Spec{Name: "largest_connected_component", Doc: "subgraph of the largest weak component", Handler: largestComponent},
		Spec{Name: "reverse", Doc: "graph with every edge flipped", Handler: reverse},
		Spec{
			Name: "most_central",
			Params: []Param{
				{Name: "measure", Kind: KindString, Default: "degree"},
				{Name: "k", Kind: KindInt, Default: 5},
			},
			Doc:     "top-k nodes by a centrality measure",
			Handler: mostCentral,
		},
	)
}

func numberOfNodes(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	return g.NodeCount(), nil
}

func numberOfEdges(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	return g.EdgeCount(), nil
}

func density(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	n := float64(g.NodeCount())
	if n <= 1 {
		return 0.0, nil
	}
	return float64(g.EdgeCount()) / (n * (n - 1)), nil
}

func inDegree(g *graph.Graph, id int64) int  { return g.Directed().To(id).Len() }
func outDegree(g *graph.Graph, id int64) int { return g.Directed().From(id).Len() }

func degreeCentrality(degrees ...func(*graph.Graph, int64) int) Handler {
	return func(_ context.Context, g *graph.Graph, _ Args) (any, error) {
		out := make(map[string]float64, g.NodeCount())
		n := g.NodeCount()
		for _, label := range g.Nodes() {
			if n <= 1 {
				out[label] = 1
				continue
			}
			id, _ := g.ID(label)
			d := 0
			for _, degree := range degrees {
				d += degree(g, id)
			}
			out[label] = float64(d) / float64(n-1)
		}
		return out, nil
	}
}

// pagerank is a power iteration capped at max_iter rounds. Dangling nodes
// spread their rank uniformly; convergence is an L1 change below n*tol.
func pagerank(ctx context.Context, g *graph.Graph, args Args) (any, error) {
	alpha := args.Float("alpha")
	if alpha <= 0 || alpha >= 1 {
		return nil, pkg.Errorf(pkg.KindParameter, "alpha must be in (0, 1), got %v", alpha)
	}
	tol := args.Float("tol")
	if tol <= 0 {
		return nil, pkg.Errorf(pkg.KindParameter, "tol must be positive, got %v", tol)
	}
	maxIter := args.Int("max_iter")
	if maxIter <= 0 {
		return nil, pkg.Errorf(pkg.KindParameter, "max_iter must be positive, got %d", maxIter)
	}

	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return map[string]float64{}, nil
	}
	index := make(map[string]int, n)
	for i, label := range nodes {
		index[label] = i
	}
	out := make([][]int, n)
	for i, label := range nodes {
		for _, succ := range g.Successors(label) {
			out[i] = append(out[i], index[succ])
		}
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}
	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := make([]float64, n)
		dangling := 0.0
		for i, r := range rank {
			if len(out[i]) == 0 {
				dangling += r
				continue
			}
			share := alpha * r / float64(len(out[i]))
			for _, j := range out[i] {
				next[j] += share
			}
		}
		base := (1-alpha)/float64(n) + alpha*dangling/float64(n)
		change := 0.0
		for i := range next {
			next[i] += base
			change += math.Abs(next[i] - rank[i])
		}
		rank = next
		if change < float64(n)*tol {
			scores := make(map[string]float64, n)
			for i, label := range nodes {
				scores[label] = rank[i]
			}
			return scores, nil
		}
	}
	return nil, pkg.Errorf(pkg.KindAlgorithmExecution, "pagerank did not converge in %d iterations", maxIter)
}

// hits needs at least one edge: with none every norm is zero and the
// iteration never settles, so all scores are reported as zero.
func hits(_ context.Context, g *graph.Graph, args Args) (any, error) {
	tol := args.Float("tol")
	if tol < minTolerance {
		return nil, pkg.Errorf(pkg.KindParameter, "tol must be at least %g, got %v", minTolerance, tol)
	}
	out := make(map[string]HubAuthority, g.NodeCount())
	if g.EdgeCount() == 0 {
		for _, label := range g.Nodes() {
			out[label] = HubAuthority{}
		}
		return out, nil
	}
	for id, ha := range network.HITS(g.Directed(), tol) {
		out[g.Label(id)] = HubAuthority{Hub: ha.Hub, Authority: ha.Authority}
	}
	return out, nil
}

// betweenness is normalized by (n-1)(n-2), the number of ordered pairs
// excluding the node itself. Nodes gonum omits score zero.
func betweenness(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	raw := network.Betweenness(g.Directed())
	n := float64(g.NodeCount())
	scale := 1.0
	if n > 2 {
		scale = 1 / ((n - 1) * (n - 2))
	}
	out := make(map[string]float64, g.NodeCount())
	for _, label := range g.Nodes() {
		id, _ := g.ID(label)
		out[label] = raw[id] * scale
	}
	return out, nil
}

// closeness uses the Wasserman-Faust scaling so nodes reached by few others
// are not over-rated.
func closeness(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	n := float64(g.NodeCount())
	return distanceCentrality(g, func(dists []float64) float64 {
		sum := 0.0
		for _, d := range dists {
			sum += d
		}
		if sum == 0 || n <= 1 {
			return 0
		}
		r := float64(len(dists))
		return (r / (n - 1)) * (r / sum)
	}), nil
}

func harmonic(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	return distanceCentrality(g, func(dists []float64) float64 {
		sum := 0.0
		for _, d := range dists {
			sum += 1 / d
		}
		return sum
	}), nil
}

// distanceCentrality scores every node from the finite distances of the nodes
// that can reach it, following incoming edges.
func distanceCentrality(g *graph.Graph, score func(dists []float64) float64) map[string]float64 {
	all := path.DijkstraAllPaths(g.Directed())
	nodes := g.Nodes()
	out := make(map[string]float64, len(nodes))
	for _, v := range nodes {
		vid, _ := g.ID(v)
		var dists []float64
		for _, u := range nodes {
			if u == v {
				continue
			}
			uid, _ := g.ID(u)
			if d := all.Weight(uid, vid); !math.IsInf(d, 0) {
				dists = append(dists, d)
			}
		}
		out[v] = score(dists)
	}
	return out
}

func shortestPath(_ context.Context, g *graph.Graph, args Args) (any, error) {
	nodes, _, err := pathBetween(g, args.String("source"), args.String("target"))
	if err != nil {
		return nil, err
	}
	return g.Labels(nodes), nil
}

func shortestPathLength(_ context.Context, g *graph.Graph, args Args) (any, error) {
	_, weight, err := pathBetween(g, args.String("source"), args.String("target"))
	if err != nil {
		return nil, err
	}
	return int(weight), nil
}

func pathBetween(g *graph.Graph, source, target string) ([]gonum.Node, float64, error) {
	sid, _ := g.ID(source)
	tid, _ := g.ID(target)
	tree := path.DijkstraFrom(g.Directed().Node(sid), g.Directed())
	nodes, weight := tree.To(tid)
	if len(nodes) == 0 || math.IsInf(weight, 0) {
		return nil, 0, pkg.Errorf(pkg.KindAlgorithmExecution, "no path between %s and %s", source, target)
	}
	return nodes, weight, nil
}

func connectedComponents(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	return components(g, topo.ConnectedComponents(g.Undirected())), nil
}

func stronglyConnectedComponents(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	return components(g, topo.TarjanSCC(g.Directed())), nil
}

// components sorts members by label and components by size, largest first
func components(g *graph.Graph, raw [][]gonum.Node) [][]string {
	out := make([][]string, len(raw))
	for i, c := range raw {
		labels := g.Labels(c)
		sort.Strings(labels)
		out[i] = labels
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}

func topologicalSort(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	sorted, err := topo.SortStabilized(g.Directed(), func(nodes []gonum.Node) {
		sort.Slice(nodes, func(i, j int) bool { return g.Label(nodes[i].ID()) < g.Label(nodes[j].ID()) })
	})
	if err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) {
			return nil, pkg.Errorf(pkg.KindAlgorithmExecution, "graph contains %d cycle(s); no topological order", len(cycles))
		}
		return nil, err
	}
	return g.Labels(sorted), nil
}

func egoGraph(_ context.Context, g *graph.Graph, args Args) (any, error) {
	center := args.String("n")
	radius := args.Int("radius")
	if radius < 0 {
		return nil, pkg.Errorf(pkg.KindParameter, "radius must be non-negative, got %d", radius)
	}

	seen := map[string]bool{center: true}
	frontier := []string{center}
	for hop := 0; hop < radius && len(frontier) > 0; hop++ {
		var next []string
		for _, label := range frontier {
			for _, s := range g.Successors(label) {
				if !seen[s] {
					seen[s] = true
					next = append(next, s)
				}
			}
		}
		frontier = next
	}

	keep := make([]string, 0, len(seen))
	for label := range seen {
		keep = append(keep, label)
	}
	return g.Subgraph(keep), nil
}

func largestComponent(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	comps := components(g, topo.ConnectedComponents(g.Undirected()))
	if len(comps) == 0 {
		return graph.New(), nil
	}
	return g.Subgraph(comps[0]), nil
}

func reverse(_ context.Context, g *graph.Graph, _ Args) (any, error) {
	return g.Reverse(), nil
}

var centralityMeasures = map[string]string{
	"degree":      "degree_centrality",
	"in_degree":   "in_degree_centrality",
	"out_degree":  "out_degree_centrality",
	"pagerank":    "pagerank",
	"betweenness": "betweenness_centrality",
	"closeness":   "closeness_centrality",
	"harmonic":    "harmonic_centrality",
}

func mostCentral(ctx context.Context, g *graph.Graph, args Args) (any, error) {
	measure := strings.TrimSuffix(strings.ToLower(args.String("measure")), "_centrality")
	k := args.Int("k")
	if k <= 0 {
		return nil, pkg.Errorf(pkg.KindParameter, "k must be positive, got %d", k)
	}

	name, ok := centralityMeasures[measure]
	if !ok {
		return nil, pkg.Errorf(pkg.KindParameter, "unknown centrality measure %q", measure)
	}
	spec, _ := Builtin().Lookup(name)
	defaults, err := Bind(name, spec.Params, nil, nil)
	if err != nil {
		return nil, err
	}
	value, err := spec.Handler(ctx, g, defaults)
	if err != nil {
		return nil, err
	}
	return TopK(value.(map[string]float64), k), nil
}

// TopK ranks scores descending, ties broken by label
func TopK(scores map[string]float64, k int) []Ranked {
	ranked := make([]Ranked, 0, len(scores))
	for node, score := range scores {
		ranked = append(ranked, Ranked{Node: node, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Node < ranked[j].Node
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
