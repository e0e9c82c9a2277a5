package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"graph_router/internal/core"
	"graph_router/internal/logger"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Classify, generate and execute a natural-language graph query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func runAsk(ctx context.Context, query string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := boot(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	router, err := a.router(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := router.Execute(ctx, core.ProcessorInput{Query: query})
	if err != nil {
		return err
	}

	id := a.record(ctx, query, result.Category, result.Code, result.Output, time.Since(start))
	logger.Info().
		Str("run_id", id).
		Str("category", string(result.Category)).
		Strs("path", result.ExecutionPath).
		Int64("duration_ms", result.ProcessingTime).
		Msg("✅ Query routed")

	return printRun(os.Stdout, runView{
		ID:       id,
		Query:    query,
		Category: result.Category,
		Code:     result.Code,
		Output:   result.Output,
		Path:     result.ExecutionPath,
	})
}
