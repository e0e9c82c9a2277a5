package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"graph_router/internal/logger"
	"graph_router/internal/storage"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Insert a JSON edge list into the graph store",
	Long: `Insert a JSON edge list into the graph store.
The file holds an array of {"source": "...", "target": "..."} objects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := boot(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		edges, err := storage.ReadEdgeFile(ingestFile)
		if err != nil {
			return err
		}

		if err := a.store.InsertEdges(ctx, edges); err != nil {
			return err
		}
		logger.Info().Int("edges", len(edges)).Str("file", ingestFile).Msg("📥 Edges ingested")
		color.Green("✨ %d edges ingested ✨", len(edges))
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "JSON edge list")
	ingestCmd.MarkFlagRequired("file")
}
