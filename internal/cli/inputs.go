package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sprite-ai/testscope/internal/diff"
	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/testrepo"
)

// addChangeFlags registers the flags that describe a change offline.
func addChangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("change", "", "change request file (.json or .yaml)")
	cmd.Flags().String("diff", "", "unified diff file, or - for stdin")
	cmd.Flags().String("range", "", "git commit range to diff, e.g. main...HEAD")
	cmd.Flags().String("title", "", "change title when reading a diff")
}

// addOfflineFlags registers the ticket, change and inventory file flags.
func addOfflineFlags(cmd *cobra.Command) {
	cmd.Flags().String("ticket", "", "ticket file (.json or .yaml)")
	cmd.Flags().String("inventory", "", "test case inventory file (.json or .yaml)")
	addChangeFlags(cmd)
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	return os.ReadFile(path)
}

// readDocument reads a JSON or YAML file and returns it as JSON so one set
// of struct tags serves both.
func readDocument(cmd *cobra.Command, path string) ([]byte, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return json.Marshal(doc)
	}
	return data, nil
}

func decodeDocument(cmd *cobra.Command, path string, dst any) error {
	data, err := readDocument(cmd, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func loadTicket(cmd *cobra.Command) (model.Ticket, error) {
	path, _ := cmd.Flags().GetString("ticket")
	if path == "" {
		return model.Ticket{}, errors.New("--ticket is required")
	}
	var t model.Ticket
	err := decodeDocument(cmd, path, &t)
	return t, err
}

// loadChange builds the change from --change, --diff or --range, in that
// order of preference.
func loadChange(cmd *cobra.Command) (model.ChangeRequest, error) {
	changePath, _ := cmd.Flags().GetString("change")
	diffPath, _ := cmd.Flags().GetString("diff")
	commitRange, _ := cmd.Flags().GetString("range")
	title, _ := cmd.Flags().GetString("title")

	switch {
	case changePath != "":
		var doc diff.ChangeDocument
		if err := decodeDocument(cmd, changePath, &doc); err != nil {
			return model.ChangeRequest{}, err
		}
		if title != "" {
			doc.Title = title
		}
		return doc.ChangeRequest(), nil

	case diffPath != "":
		raw, err := readInput(cmd, diffPath)
		if err != nil {
			return model.ChangeRequest{}, err
		}
		return diff.ChangeFromDiff(title, string(raw))

	case commitRange != "":
		repoDir, err := gitRepoRoot()
		if err != nil {
			return model.ChangeRequest{}, fmt.Errorf("not in a git repository (or git not installed): %w", err)
		}
		raw, err := diff.GitDiffRange(repoDir, commitRange)
		if err != nil {
			return model.ChangeRequest{}, err
		}
		change, err := diff.ChangeFromDiff(title, raw)
		change.Ref = commitRange
		return change, err
	}
	return model.ChangeRequest{}, errors.New("one of --change, --diff or --range is required")
}

// inventoryDocument is a TestRail-style export: cases plus the sections
// their section_id values refer to.
type inventoryDocument struct {
	Sections []testrepo.Section `json:"sections"`
	Cases    []model.TestCase   `json:"cases"`
}

// loadInventory reads either a bare list of cases with section paths or an
// export with sections, whose paths are then rebuilt.
func loadInventory(cmd *cobra.Command) ([]model.TestCase, error) {
	path, _ := cmd.Flags().GetString("inventory")
	if path == "" {
		return nil, errors.New("--inventory is required")
	}
	data, err := readDocument(cmd, path)
	if err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var cases []model.TestCase
		if err := json.Unmarshal(trimmed, &cases); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return cases, nil
	}

	var doc inventoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Sections) == 0 {
		return doc.Cases, nil
	}
	return testrepo.AttachSectionPaths(doc.Cases, doc.Sections), nil
}

func gitRepoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
