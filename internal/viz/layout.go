package viz

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/layout"

	"graph_router/internal/graph"
)

// Point is a layout position in the unit square
type Point struct {
	X, Y float64
}

// orderedView is the undirected view of a graph with nodes and neighbours
// iterated in label order, so a seeded layout sees the same sequence no
// matter how the graph was built.
type orderedView struct {
	gonum.Undirected
	g *graph.Graph
}

func (v orderedView) Nodes() gonum.Nodes {
	return iterator.NewOrderedNodes(v.byLabel(gonum.NodesOf(v.Undirected.Nodes())))
}

func (v orderedView) From(id int64) gonum.Nodes {
	return iterator.NewOrderedNodes(v.byLabel(gonum.NodesOf(v.Undirected.From(id))))
}

func (v orderedView) byLabel(nodes []gonum.Node) []gonum.Node {
	sort.Slice(nodes, func(i, j int) bool {
		return v.g.Label(nodes[i].ID()) < v.g.Label(nodes[j].ID())
	})
	return nodes
}

// SpringLayout places the nodes of g with the Eades force-directed layout.
// The same seed and graph always give the same positions. Nodes are in
// g.Nodes() order.
func SpringLayout(g *graph.Graph, seed int64, iterations int) []Point {
	nodes := g.Nodes()
	pos := make([]Point, len(nodes))
	switch len(nodes) {
	case 0:
		return pos
	case 1:
		pos[0] = Point{X: 0.5, Y: 0.5}
		return pos
	}

	eades := layout.EadesR2{
		Updates:   iterations,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
		Src:       rand.NewSource(uint64(seed)),
	}
	optimizer := layout.NewOptimizerR2(orderedView{Undirected: g.Undirected(), g: g}, eades.Update)
	for optimizer.Update() {
	}

	for i, label := range nodes {
		id, _ := g.ID(label)
		c := optimizer.Coord2(id)
		pos[i] = Point{X: c.X, Y: c.Y}
	}
	return normalize(pos)
}

// normalize rescales positions into [0, 1] on both axes
func normalize(pos []Point) []Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	spanX, spanY := maxX-minX, maxY-minY
	for i := range pos {
		if spanX > 0 {
			pos[i].X = (pos[i].X - minX) / spanX
		} else {
			pos[i].X = 0.5
		}
		if spanY > 0 {
			pos[i].Y = (pos[i].Y - minY) / spanY
		} else {
			pos[i].Y = 0.5
		}
	}
	return pos
}
