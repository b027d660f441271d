// Package diff turns changed-file data into the flat FileDelta list the
// scoring core consumes, from local unified diffs or upstream API entries.
package diff

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/sprite-ai/testscope/internal/model"
)

// File is one file of a parsed unified diff.
type File struct {
	OldName      string
	NewName      string
	IsNew        bool
	IsDeleted    bool
	IsRenamed    bool
	IsBinary     bool
	AddedLines   int
	DeletedLines int
}

// Name returns the path the file has after the change.
func (f *File) Name() string {
	if f.IsDeleted || f.NewName == "" {
		return f.OldName
	}
	return f.NewName
}

// Delta converts the file to a FileDelta.
func (f *File) Delta() model.FileDelta {
	d := model.FileDelta{
		Path:         f.Name(),
		LinesAdded:   f.AddedLines,
		LinesRemoved: f.DeletedLines,
		Kind:         model.ChangeModify,
	}
	switch {
	case f.IsNew:
		d.Kind = model.ChangeAdd
	case f.IsDeleted:
		d.Kind = model.ChangeDelete
	}
	if d.Path == "" {
		d.Path = model.UnknownPath
	}
	return d
}

// DiffSet holds the parsed diff for all files.
type DiffSet struct {
	Files []*File
	Raw   string
}

// Stats returns aggregate statistics.
func (ds *DiffSet) Stats() (files, added, deleted int) {
	files = len(ds.Files)
	for _, f := range ds.Files {
		added += f.AddedLines
		deleted += f.DeletedLines
	}
	return
}

// Deltas returns one FileDelta per file, in diff order.
func (ds *DiffSet) Deltas() []model.FileDelta {
	out := make([]model.FileDelta, 0, len(ds.Files))
	for _, f := range ds.Files {
		out = append(out, f.Delta())
	}
	return out
}

// Parse reads a unified diff string and returns a DiffSet.
func Parse(raw string) (*DiffSet, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	ds := &DiffSet{Raw: raw}
	for _, f := range parsed {
		df := &File{
			OldName:   f.OldName,
			NewName:   f.NewName,
			IsNew:     f.IsNew,
			IsDeleted: f.IsDelete,
			IsRenamed: f.IsRename,
			IsBinary:  f.IsBinary,
		}
		for _, frag := range f.TextFragments {
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					df.AddedLines++
				case gitdiff.OpDelete:
					df.DeletedLines++
				}
			}
		}
		ds.Files = append(ds.Files, df)
	}

	return ds, nil
}

// ChangeFromDiff builds a change request from a local diff.
func ChangeFromDiff(title, raw string) (model.ChangeRequest, error) {
	ds, err := Parse(raw)
	if err != nil {
		return model.ChangeRequest{}, err
	}
	return model.ChangeRequest{Title: title, ChangedFiles: ds.Deltas()}, nil
}

// GitDiff runs `git diff` with the given arguments and returns the raw output.
func GitDiff(repoDir string, args ...string) (string, error) {
	cmdArgs := append([]string{"diff"}, args...)
	cmd := exec.Command("git", cmdArgs...)
	cmd.Dir = repoDir
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}

	return string(out), nil
}

// GitDiffRange returns the diff for a commit range like "main...HEAD".
func GitDiffRange(repoDir, commitRange string) (string, error) {
	return GitDiff(repoDir, "-U0", commitRange)
}
