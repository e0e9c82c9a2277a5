// Package algorithms runs named graph operations against the graph held by the
// store, using gonum for the algorithms themselves.
package algorithms

import (
	"context"
	"fmt"
	"time"

	"graph_router/internal/graph"
	"graph_router/internal/logger"
	"graph_router/internal/storage"
	"graph_router/pkg"
)

// Invoker executes operations from a registry on the store graph
type Invoker struct {
	store    storage.GraphStore
	registry *Registry
}

// NewInvoker creates an invoker over the built-in gonum registry
func NewInvoker(store storage.GraphStore) *Invoker {
	return &Invoker{store: store, registry: Builtin()}
}

// NewRegistryInvoker creates an invoker over a custom registry
func NewRegistryInvoker(store storage.GraphStore, registry *Registry) *Invoker {
	return &Invoker{store: store, registry: registry}
}

// Registry exposes the registry for listings and prompts
func (i *Invoker) Registry() *Registry {
	return i.registry
}

// Invoke fetches the store graph and runs op on it
func (i *Invoker) Invoke(ctx context.Context, op pkg.Operation) pkg.ExecutionResult {
	g, err := FetchGraph(ctx, i.store)
	if err != nil {
		return pkg.Fail(err)
	}
	return i.Run(ctx, g, op)
}

// Run executes op on g
func (i *Invoker) Run(ctx context.Context, g *graph.Graph, op pkg.Operation) pkg.ExecutionResult {
	spec, ok := i.registry.Lookup(op.Name)
	if !ok {
		return pkg.Fail(pkg.Errorf(pkg.KindUnsupportedAlgo, "unsupported algorithm: %s", op.Name))
	}

	args, err := Bind(op.Name, spec.Params, op.Arguments, g.Resolve)
	if err != nil {
		return pkg.Fail(err)
	}

	start := time.Now()
	value, err := Guard(ctx, op.Name, func(ctx context.Context) (any, error) {
		return spec.Handler(ctx, g, args)
	})
	if err != nil {
		logger.Warn().Err(err).Str("operation", op.Name).Msg("⚠️ Algorithm failed")
		return pkg.Fail(err)
	}

	logger.Debug().
		Str("operation", op.Name).
		Dur("elapsed", time.Since(start)).
		Msg("✅ Algorithm executed")
	return pkg.Ok(value)
}

// FetchGraph loads the store graph, mapping a missing graph to GraphUnavailable
// and store failures to QueryError.
func FetchGraph(ctx context.Context, store storage.GraphStore) (*graph.Graph, error) {
	g, err := store.FetchGraph(ctx)
	if err != nil {
		return nil, pkg.Wrap(pkg.KindQuery, err, "failed to fetch graph")
	}
	if g == nil {
		return nil, pkg.NewError(pkg.KindGraphUnavailable, "no graph loaded")
	}
	return g, nil
}

// Guard runs fn in its own goroutine. Panics and library errors become
// AlgorithmExecutionErrors; an expired deadline becomes a TimeoutError.
// Handlers that loop should watch ctx so the goroutine ends with the call.
func Guard(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: pkg.Errorf(pkg.KindAlgorithmExecution, "%s panicked: %v", name, r)}
			}
		}()
		value, err := fn(ctx)
		if err != nil {
			err = pkg.AsError(err, pkg.KindAlgorithmExecution)
		}
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		return nil, pkg.Wrap(pkg.KindAlgorithmExecution, ctx.Err(), fmt.Sprintf("%s did not finish", name))
	}
}
