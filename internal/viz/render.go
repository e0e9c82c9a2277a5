// Package viz draws result graphs to PNG files. Anything that is not a graph
// is reported back without drawing.
package viz

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"graph_router/internal/graph"
	"graph_router/internal/logger"
	"graph_router/pkg"

	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Config controls layout and output
type Config struct {
	OutputDir  string `envconfig:"VIZ_OUTPUT_DIR" yaml:"output_dir"`
	Width      int    `envconfig:"VIZ_WIDTH" yaml:"width"`
	Height     int    `envconfig:"VIZ_HEIGHT" yaml:"height"`
	Seed       int64  `envconfig:"VIZ_SEED" yaml:"seed"`
	Iterations int    `envconfig:"VIZ_ITERATIONS" yaml:"iterations"`
}

// Visualizer renders graphs with a seeded spring layout
type Visualizer struct {
	config Config
}

// New creates a visualizer, filling unset sizes with defaults
func New(config Config) *Visualizer {
	if config.OutputDir == "" {
		config.OutputDir = "output"
	}
	if config.Width <= 0 {
		config.Width = 800
	}
	if config.Height <= 0 {
		config.Height = 800
	}
	if config.Iterations <= 0 {
		config.Iterations = 50
	}
	return &Visualizer{config: config}
}

// Render draws value when it is a non-empty graph. It never panics; drawing
// failures come back as a "visualization failed" outcome.
func (v *Visualizer) Render(ctx context.Context, value any) (outcome pkg.VisualizationOutcome) {
	g, ok := value.(*graph.Graph)
	if !ok {
		return pkg.VisualizationOutcome{Message: pkg.MessageNotAGraph}
	}
	if g == nil || g.NodeCount() == 0 {
		return pkg.VisualizationOutcome{Message: pkg.MessageEmptyGraph}
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = v.failed(pkg.Errorf(pkg.KindVisualization, "render panicked: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return v.failed(pkg.Wrap(pkg.KindVisualization, err, "render cancelled"))
	}

	path, err := v.draw(g)
	if err != nil {
		return v.failed(pkg.Wrap(pkg.KindVisualization, err, "failed to draw graph"))
	}

	logger.Info().Str("path", path).Int("nodes", g.NodeCount()).Msg("🖼️ Graph rendered")
	return pkg.VisualizationOutcome{Message: pkg.MessageRendered, Path: path}
}

func (v *Visualizer) failed(err error) pkg.VisualizationOutcome {
	logger.Warn().Err(err).Msg("⚠️ Visualization failed")
	return pkg.VisualizationOutcome{Message: pkg.MessageRenderFailed, Error: err.Error()}
}

func (v *Visualizer) draw(g *graph.Graph) (string, error) {
	nodes := g.Nodes()
	pos := SpringLayout(g, v.config.Seed, v.config.Iterations)
	at := make(map[string]Point, len(nodes))
	for i, label := range nodes {
		at[label] = pos[i]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	p.HideAxes()
	p.X.Min, p.X.Max = -0.1, 1.1
	p.Y.Min, p.Y.Max = -0.1, 1.1

	for _, e := range g.Edges() {
		from, to := at[e.Source], at[e.Target]
		line, err := plotter.NewLine(plotter.XYs{{X: from.X, Y: from.Y}, {X: to.X, Y: to.Y}})
		if err != nil {
			return "", err
		}
		line.Color = color.Gray{Y: 160}
		p.Add(line)
	}

	xys := make(plotter.XYs, len(nodes))
	for i, pt := range pos {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return "", err
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(6)
	scatter.GlyphStyle.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(scatter)

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: nodes})
	if err != nil {
		return "", err
	}
	p.Add(labels)

	if err := os.MkdirAll(v.config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(v.config.OutputDir, "graph-"+uuid.NewString()+".png")
	if err := p.Save(vg.Points(float64(v.config.Width)), vg.Points(float64(v.config.Height)), path); err != nil {
		return "", err
	}
	return path, nil
}
