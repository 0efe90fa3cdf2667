package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var childCmd = &cobra.Command{
	Use:   "child",
	Short: "Register and list children",
}

var childAddCmd = &cobra.Command{
	Use:   "add <name> <birth-date YYYY-MM-DD>",
	Short: "Register a child",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		birth, err := time.Parse(time.DateOnly, args[1])
		if err != nil {
			return fmt.Errorf("birth date must be YYYY-MM-DD: %w", err)
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		c, err := rt.engine.RegisterChild(cmd.Context(), user, args[0], birth)
		if err != nil {
			return err
		}
		age := rt.engine.AgeOf(c)
		fmt.Printf("Registered %s (%s), %d months / %d weeks old.\n", c.Name, c.ID, age.Months, age.Weeks)
		return nil
	},
}

var childListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a guardian's children",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		children, err := rt.engine.Children(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("list children: %w", err)
		}
		if len(children) == 0 {
			fmt.Println("No children registered.")
			return nil
		}

		// Header.
		fmt.Printf("%-36s  %-20s  %-10s  %6s  %s\n", "ID", "Name", "Born", "Months", "Band")
		fmt.Println(strings.Repeat("─", 90))

		for _, c := range children {
			band := "-"
			if res, err := rt.engine.Resolve(c); err == nil {
				band = res.Band.ID
			}
			name := c.Name
			if len(name) > 20 {
				name = name[:17] + "..."
			}
			fmt.Printf("%-36s  %-20s  %-10s  %6d  %s\n",
				c.ID, name, c.BirthDate.Format(time.DateOnly), rt.engine.AgeOf(c).Months, band)
		}

		fmt.Printf("\n%d children\n", len(children))
		return nil
	},
}

func init() {
	childAddCmd.Flags().String("user", "local", "Guardian user ID")
	childListCmd.Flags().String("user", "local", "Guardian user ID")

	childCmd.AddCommand(childAddCmd)
	childCmd.AddCommand(childListCmd)
}
