package cli

import (
	"github.com/spf13/cobra"

	"github.com/sprite-ai/testscope/internal/analysis"
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Recommend test cases from local files",
	Long: `Run the same selection as analyze without contacting any service.

The ticket and inventory come from JSON or YAML files. The change comes from
a change file, a unified diff (--diff file, or - for stdin) or a git commit
range in the current repository.`,
	Example: `  testscope impact --ticket PROJ-12.yaml --inventory cases.json --range main...HEAD --title "Fix webform submit"
  git diff | testscope impact --ticket t.json --inventory cases.json --diff - --format markdown`,
	Args: cobra.NoArgs,
	RunE: runImpact,
}

func init() {
	addOfflineFlags(impactCmd)
	addReportFlags(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
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

	all, _ := cmd.Flags().GetBool("all")
	report := analysis.Build(ticket, change, inventory, e.table, e.vocab, e.options(all))
	e.log.Debug().
		Str("report", report.ID).
		Int("inventory", len(inventory)).
		Int("cases", len(report.Impact.AllCases)).
		Msg("impact computed")
	return emitReport(cmd, report)
}
