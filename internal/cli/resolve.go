package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/testscope/internal/component"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <component>...",
	Short: "Show how ticket components map onto the traceability table",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringP("format", "f", "text", "output format: text, json")
}

func runResolve(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	resolutions := make([]component.Resolution, 0, len(args))
	for _, label := range args {
		resolutions = append(resolutions, component.Resolve(label, e.table))
	}

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return outputJSON(out, resolutions, false)
	case "text":
		for _, r := range resolutions {
			if r.Matched {
				fmt.Fprintf(out, "%s → %s (via %q)\n", r.Component, r.MatchedName, r.MatchedPart)
			} else {
				fmt.Fprintf(out, "%s → no table entry, using its own words\n", r.Component)
			}
			fmt.Fprintf(out, "  tags:   %s\n", strings.Join(r.Tags, ", "))
			fmt.Fprintf(out, "  search: %s\n", strings.Join(component.SearchTerms(r.Tags), ", "))
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
