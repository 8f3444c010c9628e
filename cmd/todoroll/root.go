package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	vaultPath  string
	versioning bool
	devSafety  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "todoroll",
	Short: "Roll a Markdown todo note over into each new period",
	Long: `todoroll keeps one todo note per period under Tasks/ in a Markdown vault.
When a new day, week or N-day span starts, the previous note is archived
and its open table rows are carried into a fresh note.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", "", "Vault root (default: discovered from the working directory)")
	rootCmd.PersistentFlags().BoolVar(&versioning, "versioning", false, "Commit rollovers to git (default: on when the vault is a git repository)")
	rootCmd.PersistentFlags().BoolVar(&devSafety, "dev-safety", true, "Sandbox the vault into a temp dir under go run")
}
