package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"graph_router/internal/accel"
	"graph_router/internal/algorithms"
	"graph_router/pkg"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the operations each algorithm back-end accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registries := map[pkg.Category]*algorithms.Registry{
			pkg.CategoryNx:   algorithms.Builtin(),
			pkg.CategoryNxCu: accel.Builtin(cfg.Accel.Workers),
		}
		return printAlgorithms(os.Stdout, registries)
	},
}

type algorithmView struct {
	Signature string `json:"signature"`
	Doc       string `json:"doc,omitempty"`
}

func printAlgorithms(w io.Writer, registries map[pkg.Category]*algorithms.Registry) error {
	if jsonOutput {
		out := map[pkg.Category][]algorithmView{}
		for category, registry := range registries {
			for _, spec := range registry.Specs() {
				out[category] = append(out[category], algorithmView{Signature: spec.Signature(), Doc: spec.Doc})
			}
		}
		return printJSON(w, out)
	}

	for _, category := range []pkg.Category{pkg.CategoryNx, pkg.CategoryNxCu} {
		registry, ok := registries[category]
		if !ok {
			continue
		}
		color.New(color.FgCyan, color.Bold).Fprintf(w, "%s\n", category)
		for _, spec := range registry.Specs() {
			color.New(color.FgGreen).Fprintf(w, "  %s\n", spec.Signature())
			if spec.Doc != "" {
				fmt.Fprintf(w, "      %s\n", spec.Doc)
			}
		}
	}
	return nil
}
