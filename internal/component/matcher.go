// Package component resolves free-text ticket component labels to the search
// tags of a traceability table.
package component

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sprite-ai/testscope/internal/keywords"
)

// DefaultRoles are actor names that show up in component labels
// ("Applicant-Webform", "Admin Settings") but never name a functional area.
var DefaultRoles = []string{
	"admin", "admins", "administrator", "administrators",
	"investigator", "investigators",
	"reviewer", "reviewers",
	"applicant", "applicants",
}

// minPartLen is the shortest label part or name word used for containment
// matching. Shorter fragments ("ui", "v2") match almost anything.
const minPartLen = 3

var labelSeparators = regexp.MustCompile(`[-_\s]+`)

// Resolution is the outcome of resolving one ticket component.
type Resolution struct {
	Component   string   `json:"component"`
	MatchedName string   `json:"matched_name,omitempty"`
	Matched     bool     `json:"matched"`
	MatchedPart string   `json:"matched_part,omitempty"`
	Parts       []string `json:"parts"`
	Tags        []string `json:"tags"`
}

// Matcher resolves component labels. The zero value uses DefaultRoles.
type Matcher struct {
	roles map[string]bool
}

// NewMatcher returns a matcher that strips the given role tokens.
func NewMatcher(roles []string) *Matcher {
	m := &Matcher{roles: make(map[string]bool, len(roles))}
	for _, r := range roles {
		m.roles[strings.ToLower(strings.TrimSpace(r))] = true
	}
	return m
}

var defaultMatcher = NewMatcher(DefaultRoles)

// Resolve resolves label against table using DefaultRoles.
func Resolve(label string, table *Table) Resolution {
	return defaultMatcher.Resolve(label, table)
}

func (m *Matcher) isRole(w string) bool {
	if m == nil || m.roles == nil {
		return defaultMatcher.roles[w]
	}
	return m.roles[w]
}

// Parts splits label on hyphens, underscores and whitespace, lowercases the
// pieces, expands camel-case pieces into their sub-words and drops role
// tokens at both levels.
func (m *Matcher) Parts(label string) []string {
	var parts []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[p] || m.isRole(p) {
			return
		}
		seen[p] = true
		parts = append(parts, p)
	}

	for _, raw := range labelSeparators.Split(strings.TrimSpace(label), -1) {
		if raw == "" {
			continue
		}
		if !keywords.HasInnerUpper(raw) {
			add(strings.ToLower(raw))
			continue
		}
		subs := keywords.SplitCamel(raw)
		// A compound carrying a role word would match on the role alone.
		if !slices.ContainsFunc(subs, m.isRole) {
			add(strings.ToLower(raw))
		}
		for _, sub := range subs {
			add(sub)
		}
	}
	return parts
}

// StripRoles removes role words from a label, keeping the remaining words
// in order.
func (m *Matcher) StripRoles(label string) string {
	var kept []string
	for _, raw := range labelSeparators.Split(strings.TrimSpace(label), -1) {
		if raw == "" || m.isRole(strings.ToLower(raw)) {
			continue
		}
		kept = append(kept, raw)
	}
	return strings.Join(kept, " ")
}

// Resolve maps label onto the first table entry sharing a word with it,
// in either containment direction. Without a match the cleaned parts
// become the tags.
func (m *Matcher) Resolve(label string, table *Table) Resolution {
	res := Resolution{Component: label, Parts: m.Parts(label)}
	if strings.TrimSpace(label) == "" {
		res.Parts = []string{}
		res.Tags = []string{}
		return res
	}

	if table != nil {
		for _, e := range table.Entries {
			if part, ok := m.matchEntry(res.Parts, e.Name); ok {
				res.Matched = true
				res.MatchedName = e.Name
				res.MatchedPart = part
				res.Tags = normalizeTags(e.Tags)
				break
			}
		}
	}

	if !res.Matched {
		res.Tags = normalizeTags(res.Parts)
	}
	if len(res.Tags) == 0 {
		// Either a label made only of role words or a matched entry with
		// no tags configured. Fall back to the label itself so the
		// component still takes part in scoring.
		res.Tags = []string{strings.ToLower(strings.TrimSpace(label))}
	}
	return res
}

func (m *Matcher) matchEntry(parts []string, name string) (string, bool) {
	words := nameWords(name)
	for _, p := range parts {
		if utf8.RuneCountInString(p) < minPartLen {
			continue
		}
		for _, w := range words {
			if strings.Contains(w, p) || strings.Contains(p, w) {
				return p, true
			}
		}
	}
	return "", false
}

func nameWords(name string) []string {
	var words []string
	seen := make(map[string]bool)
	add := func(w string) {
		if utf8.RuneCountInString(w) < minPartLen || seen[w] {
			return
		}
		seen[w] = true
		words = append(words, w)
	}
	for _, raw := range labelSeparators.Split(strings.TrimSpace(name), -1) {
		add(strings.ToLower(raw))
		for _, sub := range keywords.SplitCamel(raw) {
			add(sub)
		}
	}
	return words
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SearchTerms expands tags into the substrings looked for in section-path
// folders: the tag itself plus spaced and joined forms of multi-word tags.
func SearchTerms(tags []string) []string {
	var terms []string
	seen := make(map[string]bool)
	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		terms = append(terms, t)
	}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		add(tag)
		if strings.ContainsAny(tag, "-_ ") {
			add(labelSeparators.ReplaceAllString(tag, " "))
			add(labelSeparators.ReplaceAllString(tag, ""))
		}
	}
	return terms
}
