package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcoskids/marcos/internal/content"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect and validate question catalogues",
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a YAML or JSON catalogue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := content.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: version %s, %d bands, %d questions: OK\n",
			args[0], cat.Version(), len(cat.Bands()), cat.Len())

		if builtin, err := content.Default(); err == nil {
			switch c := content.CompareVersion(cat.Version(), builtin.Version()); {
			case c < 0:
				fmt.Printf("Note: older than the built-in catalogue (%s).\n", builtin.Version())
			case c > 0:
				fmt.Printf("Newer than the built-in catalogue (%s).\n", builtin.Version())
			}
		}
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bands, or the questions of one band",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		bandID, _ := cmd.Flags().GetString("band")

		cat, err := loadCatalogue(file)
		if err != nil {
			return err
		}

		if bandID != "" {
			qs := cat.BandQuestions(bandID)
			if len(qs) == 0 {
				return fmt.Errorf("no questions found for band %q", bandID)
			}
			// Header.
			fmt.Printf("%-16s  %-18s  %5s  %s\n", "ID", "Dimension", "Order", "Text")
			fmt.Println(strings.Repeat("─", 100))
			for _, q := range qs {
				text := q.Text
				if len(text) > 60 {
					text = text[:57] + "..."
				}
				fmt.Printf("%-16s  %-18s  %5d  %s\n", q.ID, q.Dimension.DisplayName(), q.OrderIndex, text)
			}
			fmt.Printf("\n%d questions\n", len(qs))
			return nil
		}

		fmt.Printf("Catalogue %s\n\n", cat.Version())
		// Header.
		fmt.Printf("%-12s  %-7s  %9s  %s\n", "Band", "Unit", "Questions", "Range")
		fmt.Println(strings.Repeat("─", 60))
		for _, b := range cat.Bands() {
			fmt.Printf("%-12s  %-7s  %9d  %d-%d\n", b.ID, b.Kind, len(cat.BandQuestions(b.ID)), b.Min, b.Max)
		}
		fmt.Printf("\n%d bands, %d questions\n", len(cat.Bands()), cat.Len())
		return nil
	},
}

var contentResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which band and questions an age resolves to",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		birthStr, _ := cmd.Flags().GetString("birth")
		months, _ := cmd.Flags().GetInt("months")

		cat, err := loadCatalogue(file)
		if err != nil {
			return err
		}

		var age content.Age
		switch {
		case birthStr != "" && cmd.Flags().Changed("months"):
			return fmt.Errorf("use --birth or --months, not both")
		case birthStr != "":
			birth, err := time.Parse(time.DateOnly, birthStr)
			if err != nil {
				return fmt.Errorf("birth date must be YYYY-MM-DD: %w", err)
			}
			age = content.AgeAt(birth, time.Now())
		case cmd.Flags().Changed("months"):
			age = content.MonthsOnly(months)
		default:
			return fmt.Errorf("one of --birth or --months is required")
		}

		res, err := cat.Resolve(age)
		if err != nil {
			return err
		}
		if age.HasWeeks() {
			fmt.Printf("Age %d months / %d weeks -> %s\n\n", age.Months, age.Weeks, res.Band)
		} else {
			fmt.Printf("Age %d months -> %s\n\n", age.Months, res.Band)
		}
		for i, q := range res.Questions {
			fmt.Printf("%2d. [%s] %s\n", i+1, q.Dimension.DisplayName(), q.Text)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{contentListCmd, contentResolveCmd} {
		c.Flags().String("file", "", "Catalogue file (defaults to the built-in catalogue)")
	}
	contentListCmd.Flags().String("band", "", "List the questions of this band")
	contentResolveCmd.Flags().String("birth", "", "Birth date YYYY-MM-DD (age computed as of today)")
	contentResolveCmd.Flags().Int("months", 0, "Age in months")

	contentCmd.AddCommand(contentValidateCmd)
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentResolveCmd)
}
