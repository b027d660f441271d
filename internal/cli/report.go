package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/tui"
)

// addReportFlags registers the output flags shared by analyze and impact.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "output format: text, json, markdown, html")
	cmd.Flags().Bool("color", false, "color text output and highlight JSON")
	cmd.Flags().BoolP("interactive", "i", false, "triage the recommended cases in a terminal UI")
	cmd.Flags().Bool("all", false, "list every matching case instead of stopping at the category cap")
	cmd.Flags().StringP("output-plan", "o", "", "write the test plan as markdown to this file")
	cmd.Flags().Bool("exit-code", false, "exit 1 on medium risk and 2 on high risk")
}

// emitReport renders r, or runs the triage UI, then applies --exit-code.
func emitReport(cmd *cobra.Command, r *analysis.Report) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	planPath, _ := cmd.Flags().GetString("output-plan")
	out := cmd.OutOrStdout()

	if interactive {
		plan, err := tui.Run(r)
		if err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
		if planPath == "" {
			fmt.Fprint(out, plan.Markdown())
		} else if err := writePlan(planPath, plan); err != nil {
			return err
		}
	} else {
		format, _ := cmd.Flags().GetString("format")
		color, _ := cmd.Flags().GetBool("color")
		if err := renderReport(out, r, format, color); err != nil {
			return err
		}
		if planPath != "" {
			plan := analysis.NewPlan(r.ID, r.Ticket.ID, r.Recommended, nil)
			if err := writePlan(planPath, plan); err != nil {
				return err
			}
		}
	}

	if exit, _ := cmd.Flags().GetBool("exit-code"); exit {
		switch r.Classification.RiskLevel {
		case model.RiskHigh:
			os.Exit(2)
		case model.RiskMedium:
			os.Exit(1)
		}
	}
	return nil
}

func writePlan(path string, plan *analysis.Plan) error {
	if err := os.WriteFile(path, []byte(plan.Markdown()), 0o644); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}
