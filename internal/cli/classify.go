package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Categorize a change by size and risk",
	Long: `Categorize a change as relaxed, sleepy, sarcastic, overloaded or angry and
print its risk score and the number of test cases that category allows.

Describe the change with --files, --shared, --lines and --title, or point at
a change file, a diff or a commit range to measure it.`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Int("files", 0, "number of changed files")
	classifyCmd.Flags().Int("shared", 0, "number of shared or core files touched")
	classifyCmd.Flags().Int("lines", 0, "total lines added and removed")
	classifyCmd.Flags().StringSlice("paths", nil, "changed file paths")
	classifyCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	addChangeFlags(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	var m classify.Metrics
	if measured(cmd) {
		change, err := loadChange(cmd)
		if err != nil {
			return err
		}
		m = classify.MetricsFor(change, e.vocab)
	} else {
		m.FilesChanged, _ = cmd.Flags().GetInt("files")
		m.SharedComponentsTouched, _ = cmd.Flags().GetInt("shared")
		m.TotalLinesChanged, _ = cmd.Flags().GetInt("lines")
		m.Title, _ = cmd.Flags().GetString("title")
		m.Paths, _ = cmd.Flags().GetStringSlice("paths")
		if m.FilesChanged == 0 {
			m.FilesChanged = len(m.Paths)
		}
	}

	cls := analysis.ClassifyChange(m)
	size := classify.SizeFor(m.FilesChanged)

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return outputJSON(out, struct {
			classify.Classification
			MaxTestCases int           `json:"max_test_cases"`
			Size         classify.Size `json:"size"`
		}{cls, cls.MaxTestCases(), size}, false)
	case "text":
		fmt.Fprintf(out, "Category: %s (up to %d test cases)\n", cls.Category, cls.MaxTestCases())
		fmt.Fprintf(out, "Risk: %d (%s)\n", cls.RiskScore, cls.RiskLevel)
		fmt.Fprintf(out, "Size: %s (%d file(s), %d shared, %d line(s))\n",
			size.Name, m.FilesChanged, m.SharedComponentsTouched, m.TotalLinesChanged)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

// measured reports whether the change should be read rather than described.
func measured(cmd *cobra.Command) bool {
	for _, name := range []string{"change", "diff", "range"} {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			return true
		}
	}
	return false
}
