package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcoskids/marcos/internal/sweep"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild progress and badges from response history",
	Long: `Rebuild progress and badges from the stored responses for one child,
all children of a guardian, or every child. Interrupted all-children runs
print the last completed child; pass it to --after to resume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var target sweep.Target
		target.ChildID, _ = cmd.Flags().GetString("child")
		target.UserID, _ = cmd.Flags().GetString("user")
		target.All, _ = cmd.Flags().GetBool("all")
		if err := target.Validate(); err != nil {
			return fmt.Errorf("use exactly one of --child, --user or --all")
		}
		after, _ := cmd.Flags().GetString("after")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if concurrency <= 0 {
			concurrency = rt.cfg.Sweep.Concurrency
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sweeper := sweep.New(rt.store.Repos().Children, rt.engine, rt.log)
		report, err := sweeper.Run(ctx, target, sweep.Options{Concurrency: concurrency, After: after})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		// Header.
		fmt.Printf("%-36s  %7s  %s\n", "Child", "Overall", "New badges / error")
		fmt.Println(strings.Repeat("─", 80))
		for _, r := range report.Results {
			detail := strings.Join(r.NewBadges, ", ")
			if r.Err != nil {
				detail = "error: " + r.Error
			}
			fmt.Printf("%-36s  %6.1f%%  %s\n", r.ChildID, r.Overall, detail)
		}
		fmt.Printf("\n%s: %d succeeded, %d failed in %s\n",
			target, report.Succeeded, report.Failed, report.Duration.Round(time.Millisecond))
		if report.Canceled {
			fmt.Printf("Interrupted. Resume with: marcos recompute --all --after %s\n", report.LastChildID)
		}
		if report.Failed > 0 {
			return fmt.Errorf("%d children failed", report.Failed)
		}
		return nil
	},
}

func init() {
	recomputeCmd.Flags().String("child", "", "Recompute one child")
	recomputeCmd.Flags().String("user", "", "Recompute every child of a guardian")
	recomputeCmd.Flags().Bool("all", false, "Recompute every child")
	recomputeCmd.Flags().String("after", "", "Resume an --all run after this child ID")
	recomputeCmd.Flags().Int("concurrency", 0, "Children processed in parallel (default from MARCOS_SWEEP_CONCURRENCY)")
	recomputeCmd.Flags().Bool("json", false, "Print the report as JSON")
}
