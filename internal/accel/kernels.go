package accel

import (
	"context"
	"math"
	"sort"

	"graph_router/pkg"

	"golang.org/x/sync/errgroup"
)

// partitions returns the chunk size and chunk count used to split n items
// across at most workers goroutines.
func partitions(workers, n int) (size, count int) {
	if n == 0 {
		return 0, 0
	}
	workers = max(1, min(workers, n))
	size = (n + workers - 1) / workers
	return size, (n + size - 1) / size
}

// parallelFor splits [0, n) into contiguous chunks and runs fn on each chunk
// concurrently. part is the chunk number, in [0, count) from partitions.
func parallelFor(ctx context.Context, workers, n int, fn func(part, lo, hi int) error) error {
	size, count := partitions(workers, n)
	if count == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for part := 0; part < count; part++ {
		lo, hi := part*size, min((part+1)*size, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(part, lo, hi)
		})
	}
	return g.Wait()
}

// PageRank runs the power iteration with uniform teleport and dangling mass
// redistributed uniformly. Returns an AlgorithmExecutionError when the L1
// change is still above n*tol after maxIter iterations.
func PageRank(ctx context.Context, c *CSR, alpha, tol float64, maxIter, workers int) ([]float64, error) {
	n := c.NumVertices()
	rank := make([]float64, n)
	next := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dangling := 0.0
		for v := 0; v < n; v++ {
			if len(c.Out(int32(v))) == 0 {
				dangling += rank[v]
			}
		}
		base := (1-alpha)/float64(n) + alpha*dangling/float64(n)

		err := parallelFor(ctx, workers, n, func(_, lo, hi int) error {
			for v := lo; v < hi; v++ {
				sum := 0.0
				for _, u := range c.In(int32(v)) {
					sum += rank[u] / float64(len(c.Out(u)))
				}
				next[v] = base + alpha*sum
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		delta := 0.0
		for v := range rank {
			delta += math.Abs(next[v] - rank[v])
		}
		rank, next = next, rank
		if delta < float64(n)*tol {
			return rank, nil
		}
	}
	return nil, pkg.Errorf(pkg.KindAlgorithmExecution, "pagerank did not converge in %d iterations", maxIter)
}

// DegreeCentrality returns (in+out degree)/(n-1) per vertex
func DegreeCentrality(ctx context.Context, c *CSR, workers int) ([]float64, error) {
	n := c.NumVertices()
	out := make([]float64, n)
	if n <= 1 {
		for i := range out {
			out[i] = 1
		}
		return out, nil
	}
	err := parallelFor(ctx, workers, n, func(_, lo, hi int) error {
		for v := lo; v < hi; v++ {
			d := len(c.Out(int32(v))) + len(c.In(int32(v)))
			out[v] = float64(d) / float64(n-1)
		}
		return nil
	})
	return out, err
}

// Visit is one BFS row: vertex, hop distance and predecessor (empty for the start)
type Visit struct {
	Vertex      string `json:"vertex"`
	Distance    int    `json:"distance"`
	Predecessor string `json:"predecessor"`
}

// BFS is level synchronous: each level's frontier is expanded in parallel and
// merged in frontier order, so the first discoverer becomes the predecessor.
// depthLimit < 0 means unlimited.
func BFS(ctx context.Context, c *CSR, start int32, depthLimit, workers int) ([]Visit, error) {
	n := c.NumVertices()
	dist := make([]int, n)
	pred := make([]int32, n)
	for i := range dist {
		dist[i] = -1
		pred[i] = -1
	}
	dist[start] = 0

	frontier := []int32{start}
	for depth := 0; len(frontier) > 0 && (depthLimit < 0 || depth < depthLimit); depth++ {
		_, count := partitions(workers, len(frontier))
		parts := make([][][2]int32, count)
		err := parallelFor(ctx, workers, len(frontier), func(part, lo, hi int) error {
			var found [][2]int32
			for _, u := range frontier[lo:hi] {
				for _, v := range c.Out(u) {
					if dist[v] < 0 {
						found = append(found, [2]int32{u, v})
					}
				}
			}
			parts[part] = found
			return nil
		})
		if err != nil {
			return nil, err
		}

		var next []int32
		for _, part := range parts {
			for _, uv := range part {
				u, v := uv[0], uv[1]
				if dist[v] >= 0 {
					continue
				}
				dist[v] = depth + 1
				pred[v] = u
				next = append(next, v)
			}
		}
		frontier = next
	}

	visits := make([]Visit, 0, n)
	for v := 0; v < n; v++ {
		if dist[v] < 0 {
			continue
		}
		visit := Visit{Vertex: c.Labels[v], Distance: dist[v]}
		if pred[v] >= 0 {
			visit.Predecessor = c.Labels[pred[v]]
		}
		visits = append(visits, visit)
	}
	sort.SliceStable(visits, func(i, j int) bool {
		if visits[i].Distance != visits[j].Distance {
			return visits[i].Distance < visits[j].Distance
		}
		return visits[i].Vertex < visits[j].Vertex
	})
	return visits, nil
}

// WeaklyConnectedComponents propagates the minimum vertex index over both
// edge directions until no label changes. Returns one label per vertex.
func WeaklyConnectedComponents(ctx context.Context, c *CSR, workers int) ([]int32, error) {
	n := c.NumVertices()
	labels := make([]int32, n)
	for i := range labels {
		labels[i] = int32(i)
	}

	for {
		next := make([]int32, n)
		_, count := partitions(workers, n)
		changed := make([]bool, count)
		err := parallelFor(ctx, workers, n, func(part, lo, hi int) error {
			for v := lo; v < hi; v++ {
				best := labels[v]
				for _, u := range c.Out(int32(v)) {
					best = min(best, labels[u])
				}
				for _, u := range c.In(int32(v)) {
					best = min(best, labels[u])
				}
				next[v] = best
				if best != labels[v] {
					changed[part] = true
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		labels = next

		moved := false
		for _, ch := range changed {
			moved = moved || ch
		}
		if !moved {
			return labels, nil
		}
	}
}

// TriangleCount counts, per vertex, the triangles it belongs to in the
// undirected view of the graph.
func TriangleCount(ctx context.Context, c *CSR, workers int) ([]int, error) {
	n := c.NumVertices()
	adj := make([]map[int32]bool, n)
	for v := 0; v < n; v++ {
		adj[v] = make(map[int32]bool)
	}
	for v := 0; v < n; v++ {
		for _, u := range c.Out(int32(v)) {
			adj[v][u] = true
			adj[u][int32(v)] = true
		}
	}
	neighbours := make([][]int32, n)
	for v := range adj {
		for u := range adj[v] {
			neighbours[v] = append(neighbours[v], u)
		}
		sort.Slice(neighbours[v], func(i, j int) bool { return neighbours[v][i] < neighbours[v][j] })
	}

	counts := make([]int, n)
	err := parallelFor(ctx, workers, n, func(_, lo, hi int) error {
		for v := lo; v < hi; v++ {
			nb := neighbours[v]
			for i := 0; i < len(nb); i++ {
				for j := i + 1; j < len(nb); j++ {
					if adj[nb[i]][nb[j]] {
						counts[v]++
					}
				}
			}
		}
		return nil
	})
	return counts, err
}
