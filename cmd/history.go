package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"graph_router/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent runs, or one run by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		history, err := storage.NewHistoryStore(ctx, cfg.History)
		if err != nil {
			return err
		}
		defer history.Close()

		if len(args) == 1 {
			record, err := history.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printRun(os.Stdout, runView{
				ID:       record.ID,
				Query:    record.Query,
				Category: record.Category,
				Code:     record.Code,
				Output:   record.Output,
			})
		}

		records, err := history.Recent(ctx, historyLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, records)
		}
		if len(records) == 0 {
			color.White("No runs recorded")
			return nil
		}
		for _, r := range records {
			status := color.GreenString("ok")
			if !r.Output.Result.IsOk() {
				status = color.RedString(string(r.Output.Result.Err().Kind))
			}
			color.New(color.FgHiBlack).Printf("%s  %s  ", r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID)
			color.New(color.FgCyan).Printf("%-5s ", r.Category)
			color.White("%s  [%s, %dms]", describe(r.Query, r.Code), status, r.DurationMS)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}

// describe prefers the natural-language query, falling back to the code
func describe(query, code string) string {
	if query != "" {
		return query
	}
	return code
}
