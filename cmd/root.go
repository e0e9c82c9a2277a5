package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// BUILDNAME is the binary name shown in help
const BUILDNAME = "graphrouter"

var configPath string
var envFile string
var graphFile string
var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   BUILDNAME + " [query]",
	Short: "Route natural-language graph questions to AQL, in-memory or accelerated algorithms",
	Long: `Route natural-language graph questions to AQL, in-memory or accelerated algorithms.
Running with a bare query is the same as "ask".`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(
		askCmd,
		execCmd,
		ingestCmd,
		historyCmd,
		algorithmsCmd,
	)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", ".env", "Environment file")
	rootCmd.PersistentFlags().StringVar(&graphFile, "graph-file", "", "Use a JSON edge list instead of ArangoDB")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print output as JSON")
}

// Execute runs the root command and exits 1 on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Fatal: %s\n", err.Error())
		os.Exit(1)
	}
}
