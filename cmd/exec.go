package cmd

import (
	"fmt"
	"os"
	"time"

	"graph_router/pkg"

	"github.com/spf13/cobra"
)

var execCategory string
var execCode string

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Dispatch code under a category without the language model",
	Example: `  ` + BUILDNAME + ` exec --category AQL --code "FOR e IN edges RETURN e"
  ` + BUILDNAME + ` exec --category Nx --code "pagerank(alpha=0.9)"
  ` + BUILDNAME + ` exec --category Viz --code graph`,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := pkg.ParseCategory(execCategory)
		if err != nil {
			return fmt.Errorf("--category must be one of AQL, Nx, NxCu, Viz: %w", err)
		}

		ctx := cmd.Context()
		a, err := boot(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		start := time.Now()
		output := a.dispatcher.Execute(ctx, category, execCode)
		id := a.record(ctx, "", category, execCode, output, time.Since(start))

		return printRun(os.Stdout, runView{
			ID:       id,
			Category: category,
			Code:     execCode,
			Output:   output,
		})
	},
}

func init() {
	execCmd.Flags().StringVar(&execCategory, "category", "", "AQL, Nx, NxCu or Viz")
	execCmd.Flags().StringVar(&execCode, "code", "", "AQL text or an operation call such as pagerank(alpha=0.85)")
	execCmd.MarkFlagRequired("category")
}
