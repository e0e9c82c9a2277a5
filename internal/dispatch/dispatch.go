// Package dispatch sends generated code to the back-end selected by the
// category and packages the result with its visualization outcome.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"graph_router/internal/algorithms"
	"graph_router/internal/logger"
	"graph_router/internal/metrics"
	"graph_router/internal/parser"
	"graph_router/internal/storage"
	"graph_router/pkg"
)

// Config bounds a single dispatch
type Config struct {
	Timeout time.Duration `envconfig:"DISPATCH_TIMEOUT" yaml:"timeout"`
}

// Invoker runs a parsed operation
type Invoker interface {
	Invoke(ctx context.Context, op pkg.Operation) pkg.ExecutionResult
}

// Renderer turns a result value into a visualization outcome
type Renderer interface {
	Render(ctx context.Context, value any) pkg.VisualizationOutcome
}

// Dispatcher routes code by category
type Dispatcher struct {
	store   storage.GraphStore
	nx      Invoker
	nxcu    Invoker
	viz     Renderer
	metrics *metrics.Metrics
	timeout time.Duration
}

// New creates a dispatcher. m may be nil.
func New(store storage.GraphStore, nx, nxcu Invoker, viz Renderer, m *metrics.Metrics, config Config) *Dispatcher {
	return &Dispatcher{
		store:   store,
		nx:      nx,
		nxcu:    nxcu,
		viz:     viz,
		metrics: m,
		timeout: config.Timeout,
	}
}

// Execute runs code for category. AQL, Nx and NxCu results always get a
// visualization outcome, failures included; Viz and invalid categories never do.
func (d *Dispatcher) Execute(ctx context.Context, category pkg.Category, code string) pkg.WorkflowOutput {
	start := time.Now()
	logger.Info().Str("category", string(category)).Str("code", code).Msg("🚦 Dispatching")

	var output pkg.WorkflowOutput
	switch category {
	case pkg.CategoryAQL:
		output.Result = d.withTimeout(ctx, func(ctx context.Context) pkg.ExecutionResult {
			return d.query(ctx, code)
		})
	case pkg.CategoryNx:
		output.Result = d.withTimeout(ctx, func(ctx context.Context) pkg.ExecutionResult {
			return d.invoke(ctx, d.nx, code)
		})
	case pkg.CategoryNxCu:
		output.Result = d.withTimeout(ctx, func(ctx context.Context) pkg.ExecutionResult {
			return d.invoke(ctx, d.nxcu, code)
		})
	case pkg.CategoryViz:
		output.Result = d.withTimeout(ctx, func(ctx context.Context) pkg.ExecutionResult {
			return d.visualize(ctx, code)
		})
	default:
		output.Result = pkg.Fail(pkg.Errorf(pkg.KindInvalidCategory, "invalid category %q", category))
	}

	if category.Visualized() {
		outcome := d.render(ctx, output.Result)
		output.Visualization = &outcome
	}

	if d.metrics != nil && category.Valid() {
		d.metrics.RecordDispatch(string(category), output.Result.IsOk(), time.Since(start))
	}
	if err := output.Result.Err(); err != nil {
		logger.Warn().Str("category", string(category)).Str("kind", string(err.Kind)).Msg("⚠️ Dispatch failed")
	}
	return output
}

func (d *Dispatcher) withTimeout(ctx context.Context, fn func(ctx context.Context) pkg.ExecutionResult) pkg.ExecutionResult {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	res := fn(ctx)
	if !res.IsOk() && errors.Is(ctx.Err(), context.DeadlineExceeded) && res.Err().Kind != pkg.KindTimeout {
		return pkg.Fail(pkg.Wrap(pkg.KindTimeout, ctx.Err(), res.Err().Error()))
	}
	return res
}

func (d *Dispatcher) query(ctx context.Context, code string) pkg.ExecutionResult {
	rows, err := d.store.ExecuteQuery(ctx, code)
	if err != nil {
		return pkg.Fail(pkg.AsError(err, pkg.KindQuery))
	}
	return pkg.Ok(rows)
}

func (d *Dispatcher) invoke(ctx context.Context, invoker Invoker, code string) pkg.ExecutionResult {
	op, err := parser.ParseOperation(code)
	if err != nil {
		return pkg.Fail(err)
	}
	return invoker.Invoke(ctx, op)
}

// visualize draws the store graph for "graph" or empty code; any other code
// is run as an in-memory operation and its result is drawn.
func (d *Dispatcher) visualize(ctx context.Context, code string) pkg.ExecutionResult {
	var value any
	switch c := strings.TrimSpace(code); {
	case c == "" || strings.EqualFold(c, "graph"):
		g, err := algorithms.FetchGraph(ctx, d.store)
		if err != nil {
			return pkg.Fail(err)
		}
		value = g
	default:
		res := d.invoke(ctx, d.nx, c)
		if !res.IsOk() {
			return res
		}
		value = res.Value()
	}

	outcome := d.viz.Render(ctx, value)
	if d.metrics != nil {
		d.metrics.RecordVisualization(outcome.Message)
	}
	return pkg.Ok(outcome)
}

func (d *Dispatcher) render(ctx context.Context, res pkg.ExecutionResult) pkg.VisualizationOutcome {
	var value any = res.Value()
	if !res.IsOk() {
		value = res.Err()
	}
	outcome := d.viz.Render(ctx, value)
	if d.metrics != nil {
		d.metrics.RecordVisualization(outcome.Message)
	}
	return outcome
}
