package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/notify"
	"github.com/marcoskids/marcos/internal/ui/views"
)

var progressCmd = &cobra.Command{
	Use:   "progress <child-id>",
	Short: "Show a child's progress by dimension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cached, _ := cmd.Flags().GetBool("cached")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		get := rt.engine.Progress
		if cached {
			get = rt.engine.CachedProgress
		}
		agg, err := get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(views.Progress(agg, renderWidth(cmd)))
		return nil
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges [child-id]",
	Short: "Show a child's badges, or the badge catalogue without a child",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			printBadgeCatalogue()
			return nil
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		list, err := rt.engine.Badges(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(views.Badges(list, renderWidth(cmd)))
		return nil
	},
}

func printBadgeCatalogue() {
	// Header.
	fmt.Printf("%-28s  %-24s  %-10s  %s\n", "ID", "Name", "Kind", "Description")
	fmt.Println(strings.Repeat("─", 100))
	for _, b := range badges.All() {
		fmt.Printf("%-28s  %-24s  %-10s  %s\n", b.ID, b.Name, b.Kind, b.Description)
	}
	fmt.Printf("\n%d badges\n", len(badges.All()))
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications <child-id>",
	Short: "List a child's notifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		after, _ := cmd.Flags().GetInt64("after")
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		events, err := rt.engine.Notifications(cmd.Context(), args[0], after, limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No notifications.")
			return nil
		}

		// Header.
		fmt.Printf("%-6s  %-19s  %-18s  %s\n", "Seq", "At", "Kind", "Detail")
		fmt.Println(strings.Repeat("─", 80))
		for _, ev := range events {
			detail := ev.SessionID
			if ev.Kind == notify.KindBadgeUnlocked {
				detail = ev.BadgeID
				if b, ok := badges.Get(ev.BadgeID); ok {
					detail = b.Icon() + " " + b.Name
				}
			}
			fmt.Printf("%-6d  %-19s  %-18s  %s\n",
				ev.Seq, ev.At.Local().Format("2006-01-02 15:04:05"), ev.Kind, detail)
		}
		return nil
	},
}

func init() {
	progressCmd.Flags().Bool("cached", false, "Read the progress cache instead of recomputing")
	notificationsCmd.Flags().Int64("after", 0, "Only list notifications with a sequence above this")
	notificationsCmd.Flags().Int("limit", 50, "Maximum notifications to list")
}
