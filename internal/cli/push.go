package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sprite-ai/testscope/internal/testrepo"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Create a section of test cases in TestRail",
	Long: `Create a section in the configured TestRail suite and add the cases listed
in a YAML file to it. Each entry takes title, refs, priority and custom
fields (without the custom_ prefix):

  - title: Submit webform with all required fields
    refs: PROJ-12
    priority: 2
    custom:
      preconds: Logged in as applicant`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

func init() {
	pushCmd.Flags().String("section", "", "name of the section to create")
	pushCmd.Flags().Int64("parent", 0, "parent section id (default top level)")
	pushCmd.Flags().Int("suite", 0, "TestRail suite id (default testrail.suiteID)")
	pushCmd.Flags().String("cases", "", "YAML file listing the cases to create")
}

func runPush(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("section")
	path, _ := cmd.Flags().GetString("cases")
	if name == "" || path == "" {
		return errors.New("--section and --cases are required")
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	var cases []testrepo.NewCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, nc := range cases {
		if nc.Title == "" {
			return fmt.Errorf("case %d in %s has no title", i+1, path)
		}
	}

	client, err := e.testRail()
	if err != nil {
		return err
	}
	suite, _ := cmd.Flags().GetInt("suite")
	if suite == 0 {
		suite = e.cfg.TestRail.SuiteID
	}
	var parent *int64
	if id, _ := cmd.Flags().GetInt64("parent"); id != 0 {
		parent = &id
	}

	ctx := cmd.Context()
	section, err := client.AddSection(ctx, e.cfg.TestRail.ProjectID, suite, parent, name)
	if err != nil {
		return fmt.Errorf("creating section %q: %w", name, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created section S%d %s\n", section.ID, section.Name)

	for _, nc := range cases {
		tc, err := client.AddCase(ctx, section.ID, nc)
		if err != nil {
			return fmt.Errorf("creating case %q: %w", nc.Title, err)
		}
		fmt.Fprintf(out, "  C%d %s\n", tc.ID, tc.Title)
	}
	e.log.Info().Int64("section", section.ID).Int("cases", len(cases)).Msg("pushed test cases")
	return nil
}
