// Package cli implements the testscope command tree.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "testscope",
	Short: "Pick the test cases a change needs",
	Long: `testscope ranks a test repository's cases against a ticket and the pull
request that implements it, and recommends how many of them to run.

Remote commands (analyze, push, serve's analyze endpoint) read Jira, GitHub
and TestRail settings from testscope.yaml or TESTSCOPE_* variables. The
offline commands (impact, classify, regression, resolve) work from local
files and diffs.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default ./testscope.yaml or ~/.config/testscope/)")
	pf.String("traceability", "", "traceability table file (.yaml, .toml or .json)")
	pf.String("vocabulary", "", "scoring vocabulary file (.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		analyzeCmd,
		impactCmd,
		classifyCmd,
		regressionCmd,
		resolveCmd,
		pushCmd,
		serveCmd,
		versionCmd,
	)
}

// Execute runs the root command. Interrupts cancel in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
