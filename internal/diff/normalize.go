package diff

import (
	"encoding/json"
	"strings"

	"github.com/sprite-ai/testscope/internal/model"
)

// UnknownPath marks an entry whose path could not be resolved.
const UnknownPath = model.UnknownPath

var (
	pathKeys   = []string{"filename", "path", "file", "name"}
	nestedKeys = []string{"file", "path"}
	afterKeys  = []string{"after", "new", "new_path", "newPath"}
	beforeKeys = []string{"before", "old", "old_path", "previous_filename"}
	addedKeys  = []string{"additions", "linesAdded", "lines_added", "added"}
	removeKeys = []string{"deletions", "linesRemoved", "lines_removed", "removed"}
	kindKeys   = []string{"status", "changeKind", "change_kind", "change_type"}
)

// ChangeDocument is a change request as callers submit it: metadata plus
// changed files in any shape NormalizeEntry understands, under either
// "changed_files" or "files".
type ChangeDocument struct {
	Ref          string            `json:"ref,omitempty"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Author       string            `json:"author,omitempty"`
	State        string            `json:"state,omitempty"`
	ChangedFiles []json.RawMessage `json:"changed_files,omitempty"`
	Files        []json.RawMessage `json:"files,omitempty"`
}

// ChangeRequest normalizes the document's files.
func (d ChangeDocument) ChangeRequest() model.ChangeRequest {
	entries := make([]json.RawMessage, 0, len(d.ChangedFiles)+len(d.Files))
	entries = append(entries, d.ChangedFiles...)
	entries = append(entries, d.Files...)
	return model.ChangeRequest{
		Ref:          d.Ref,
		Title:        d.Title,
		Description:  d.Description,
		Author:       d.Author,
		State:        d.State,
		ChangedFiles: NormalizeEntries(entries),
	}
}

// NormalizeEntries converts raw upstream entries. It never fails: entries
// without a usable path are kept with UnknownPath.
func NormalizeEntries(raw []json.RawMessage) []model.FileDelta {
	out := make([]model.FileDelta, 0, len(raw))
	for _, r := range raw {
		d, _ := NormalizeEntry(r)
		out = append(out, d)
	}
	return out
}

// NormalizeEntry resolves one changed-file entry, trying in order: a bare
// string, a flat path key, a nested file object, and a before/after pair.
// The second result is false when only the UnknownPath sentinel remains.
func NormalizeEntry(raw json.RawMessage) (model.FileDelta, bool) {
	d := model.FileDelta{Path: UnknownPath, Kind: model.ChangeModify}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			d.Path = s
			return d, true
		}
		return d, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return d, false
	}

	d.LinesAdded = intField(obj, addedKeys)
	d.LinesRemoved = intField(obj, removeKeys)
	if k, ok := stringField(obj, kindKeys); ok {
		d.Kind = kindOf(k)
	}

	if p, ok := stringField(obj, pathKeys); ok {
		d.Path = p
		return d, true
	}
	for _, k := range nestedKeys {
		if p, ok := objectPath(obj[k]); ok {
			d.Path = p
			return d, true
		}
	}

	after, hasAfter := pairSide(obj, afterKeys)
	before, hasBefore := pairSide(obj, beforeKeys)
	switch {
	case hasAfter:
		d.Path = after
		if !hasBefore && pairPresent(obj, beforeKeys) {
			d.Kind = model.ChangeAdd
		}
		return d, true
	case hasBefore:
		d.Path = before
		if pairPresent(obj, afterKeys) {
			d.Kind = model.ChangeDelete
		}
		return d, true
	}
	return d, false
}

func kindOf(s string) model.ChangeKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "added", "add", "new":
		return model.ChangeAdd
	case "removed", "deleted", "delete":
		return model.ChangeDelete
	default:
		return model.ChangeModify
	}
}

func stringField(obj map[string]json.RawMessage, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func intField(obj map[string]json.RawMessage, keys []string) int {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var n float64
		if json.Unmarshal(v, &n) == nil && n > 0 {
			return int(n)
		}
	}
	return 0
}

// objectPath reads path, name or filename from a nested object.
func objectPath(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil || obj == nil {
		return "", false
	}
	return stringField(obj, []string{"path", "name", "filename"})
}

// pairSide reads one side of a before/after pair, as a string or an object
// with a path.
func pairSide(obj map[string]json.RawMessage, keys []string) (string, bool) {
	if p, ok := stringField(obj, keys); ok {
		return p, true
	}
	for _, k := range keys {
		if p, ok := objectPath(obj[k]); ok {
			return p, true
		}
	}
	return "", false
}

// pairPresent reports whether any key is present, even if empty or null.
func pairPresent(obj map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}
