package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/testscope/internal/analysis"
)

var regressionCmd = &cobra.Command{
	Use:   "regression",
	Short: "Rank the whole inventory by relevance to a change",
	Long: `Score every test case against the change and ticket, ignoring the
component-driven selection, and list the highest scoring ones. Useful for
finding regression candidates outside the ticket's components.`,
	Args: cobra.NoArgs,
	RunE: runRegression,
}

func init() {
	addOfflineFlags(regressionCmd)
	regressionCmd.Flags().IntP("limit", "n", 20, "maximum number of cases (0 for all)")
	regressionCmd.Flags().StringP("format", "f", "text", "output format: text, json")
}

func runRegression(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ticket, err := loadTicket(cmd)
	if err != nil {
		return err
	}
	change, err := loadChange(cmd)
	if err != nil {
		return err
	}
	inventory, err := loadInventory(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	ranked := analysis.RegressionCandidates(ticket, change, inventory, e.table, e.vocab, limit)

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return outputJSON(out, ranked, false)
	case "text":
		if len(ranked) == 0 {
			fmt.Fprintln(out, "No relevant test cases.")
			return nil
		}
		fmt.Fprintf(out, "%d of %d case(s) scored above zero:\n", len(ranked), len(inventory))
		for _, sc := range ranked {
			fmt.Fprintf(out, "  %3d  C%d %s\n", sc.Score, sc.Case.ID, sc.Case.Title)
			if s := sc.Case.Section(); s != "" {
				fmt.Fprintf(out, "       %s\n", s)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
