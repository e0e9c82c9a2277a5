package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"graph_router/internal/accel"
	"graph_router/internal/algorithms"
	"graph_router/internal/config"
	"graph_router/internal/core"
	"graph_router/internal/dispatch"
	"graph_router/internal/llm"
	"graph_router/internal/logger"
	"graph_router/internal/metrics"
	"graph_router/internal/nodes"
	"graph_router/internal/storage"
	"graph_router/internal/viz"
	"graph_router/pkg"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// app holds everything a command needs, built once per process
type app struct {
	config     *config.Config
	store      storage.GraphStore
	history    storage.HistoryStore
	metrics    *metrics.Metrics
	nx         *algorithms.Invoker
	nxcu       *algorithms.Invoker
	dispatcher *dispatch.Dispatcher
}

// loadConfig reads .env, the config file and the environment, then sets up logging
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// boot connects the graph store first; any failure here is fatal
func boot(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var store storage.GraphStore
	if graphFile != "" {
		store, err = storage.LoadMemoryGraphStore(graphFile)
	} else {
		store, err = storage.NewArangoStore(ctx, cfg.Arango)
	}
	if err != nil {
		return nil, err
	}

	history, err := storage.NewHistoryStore(ctx, cfg.History)
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics()
	nx := algorithms.NewInvoker(store)
	nxcu := accel.NewInvoker(store, cfg.Accel)
	visualizer := viz.New(cfg.Viz)

	return &app{
		config:     cfg,
		store:      store,
		history:    history,
		metrics:    m,
		nx:         nx,
		nxcu:       nxcu,
		dispatcher: dispatch.New(store, nx, nxcu, visualizer, m, cfg.Dispatch),
	}, nil
}

// router builds the LLM-backed classify → generate → execute workflow
func (a *app) router(ctx context.Context) (core.GraphProcessor, error) {
	chatModel, err := llm.NewChatModel(ctx, a.config.LLM)
	if err != nil {
		return nil, err
	}
	completer, err := llm.NewChatCompleter(ctx, chatModel, a.config.LLM.Timeout)
	if err != nil {
		return nil, err
	}

	prompts := config.BuildPromptContext(a.config, a.schema(ctx), a.nx.Registry().Signatures(), a.nxcu.Registry().Signatures())
	return nodes.NewRouter(
		nodes.NewClassifier(completer, a.metrics),
		nodes.NewGenerator(completer, prompts),
		a.dispatcher,
		config.BuildFlow(a.config),
	)
}

// schema asks the store for its collections; without one the AQL prompt
// carries only the configured names
func (a *app) schema(ctx context.Context) []pkg.CollectionSchema {
	describer, ok := a.store.(storage.SchemaDescriber)
	if !ok {
		return nil
	}
	collections, err := describer.Schema(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ Failed to load collection schema")
		return nil
	}
	return collections
}

// record keeps an audit entry; failures are logged, never fatal
func (a *app) record(ctx context.Context, query string, category pkg.Category, code string, output pkg.WorkflowOutput, elapsed time.Duration) string {
	record := pkg.RunRecord{
		ID:         uuid.NewString(),
		Query:      query,
		Category:   category,
		Code:       code,
		Output:     output,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := a.history.Save(ctx, record); err != nil {
		logger.Warn().Err(err).Msg("⚠️ Failed to save run history")
	}
	return record.ID
}

// close flushes metrics and releases the history store
func (a *app) close() {
	if err := a.metrics.WriteTextfile(a.config.Metrics.TextfilePath); err != nil {
		logger.Warn().Err(err).Msg("⚠️ Failed to write metrics")
	}
	if err := a.history.Close(); err != nil {
		logger.Warn().Err(err).Msg("⚠️ Failed to close history store")
	}
}
