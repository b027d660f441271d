package cli

import (
	"github.com/spf13/cobra"

	"github.com/sprite-ai/testscope/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <ticket> [pull-request]",
	Short: "Recommend test cases for a ticket and its pull request",
	Long: `Fetch the ticket from Jira, the pull request from GitHub and the suite's
test cases from TestRail, then rank the cases the change most likely affects.

The pull request may be a URL or owner/repo#number. Without one, the first
pull request linked from the ticket is used.

Exit codes with --exit-code:
  0  low risk
  1  medium risk
  2  high risk`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("suite", 0, "TestRail suite id (default testrail.suiteID)")
	addReportFlags(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")
	svc, release, err := e.service(all)
	if err != nil {
		return err
	}
	defer release()

	req := analysis.Request{TicketID: args[0]}
	if len(args) == 2 {
		req.ChangeRef = args[1]
	}
	req.SuiteID, _ = cmd.Flags().GetInt("suite")

	report, err := svc.Analyze(cmd.Context(), req)
	if err != nil {
		return err
	}
	return emitReport(cmd, report)
}
