package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcoskids/marcos/internal/content"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("marcos", version)
		if cat, err := content.Default(); err == nil {
			fmt.Println("built-in content", cat.Version())
		}
	},
}
