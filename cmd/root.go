package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcoskids/marcos/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "marcos",
	Short:         "Developmental journey engine",
	Long:          "Marcos tracks child development milestones through age-banded questionnaires, progress and badges.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// URL (overrides MARCOS_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file loaded before reading MARCOS_* variables")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log engine activity to stderr")
	rootCmd.PersistentFlags().Int("width", 80, "Render width for terminal output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(childCmd)
	rootCmd.AddCommand(journeyCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database DSN using --db flag (highest priority),
// then the configured MARCOS_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}

func renderWidth(cmd *cobra.Command) int {
	w, _ := cmd.Flags().GetInt("width")
	return w
}
