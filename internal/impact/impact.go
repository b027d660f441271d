// Package impact selects the test cases affected by a change through a staged
// filter: direct ticket references, component folders, then keyword
// refinement on the ticket title and the changed file names.
package impact

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sprite-ai/testscope/internal/component"
	"github.com/sprite-ai/testscope/internal/keywords"
	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/scoring"
)

// Select runs the pipeline over the complete inventory. The result is never
// nil and its collections are empty rather than nil when nothing matches.
// MaxTestCases carries the cap for change.Category; AllCases is not truncated.
func Select(ticket model.Ticket, change model.ChangeRequest, inventory []model.TestCase, table *component.Table, vocab *scoring.Vocabulary) *model.ImpactResult {
	ctx := scoring.NewContext(ticket, change, table, vocab)
	return SelectWithContext(ticket, change, inventory, table, ctx)
}

// SelectWithContext is Select with a scoring context built by the caller.
func SelectWithContext(ticket model.Ticket, change model.ChangeRequest, inventory []model.TestCase, table *component.Table, ctx *scoring.Context) *model.ImpactResult {
	res := &model.ImpactResult{
		Category:     change.Category,
		MaxTestCases: change.Category.Cap(),
	}

	res.DirectMatches = DirectMatches(ticket.ID, inventory)
	res.ComponentMatches = ComponentMatches(ticket.Components, inventory, table)

	refined := refine(res.ComponentMatches, keywords.Extract(ticket.Title), "ticket title")
	refined = refine(refined, filenameKeywords(change), "changed file name")
	res.RefinedMatches = refined

	res.GroupedBySection = make(map[string][]model.TestCase)
	for _, m := range refined {
		key := m.Case.Section()
		res.GroupedBySection[key] = append(res.GroupedBySection[key], m.Case)
	}

	res.AllCases = compose(res.DirectMatches, refined, ctx)
	return res
}

// DirectMatches returns every case whose reference field mentions ticketID,
// ignoring case, in inventory order.
func DirectMatches(ticketID string, inventory []model.TestCase) []model.Match {
	out := []model.Match{}
	id := strings.ToLower(strings.TrimSpace(ticketID))
	if id == "" {
		return out
	}
	for _, tc := range inventory {
		if strings.Contains(strings.ToLower(tc.Reference), id) {
			out = append(out, model.Match{Case: tc, Reason: fmt.Sprintf("references ticket %s", strings.ToUpper(id))})
		}
	}
	return out
}

// ComponentMatches returns every case with a section folder containing a
// search term of one of the resolved components. A case matched by several
// components is kept once, with the reason of its first match.
func ComponentMatches(components []string, inventory []model.TestCase, table *component.Table) []model.Match {
	out := []model.Match{}
	seen := make(map[caseKey]bool)
	for _, label := range components {
		res := component.Resolve(label, table)
		terms := component.SearchTerms(res.Tags)
		if len(terms) == 0 {
			continue
		}
		for _, tc := range inventory {
			if seen[keyOf(tc)] {
				continue
			}
			folder, term, ok := matchFolder(tc.SectionPath, terms)
			if !ok {
				continue
			}
			seen[keyOf(tc)] = true
			out = append(out, model.Match{
				Case:   tc,
				Reason: fmt.Sprintf("component %q: section folder %q contains %q", label, folder, term),
			})
		}
	}
	return out
}

func matchFolder(path []string, terms []string) (folder, term string, ok bool) {
	for _, f := range path {
		lower := strings.ToLower(f)
		for _, t := range terms {
			if t != "" && strings.Contains(lower, t) {
				return f, t, true
			}
		}
	}
	return "", "", false
}

// refine keeps the matches whose section path or title mention any keyword.
// With no keywords every match passes.
func refine(matches []model.Match, kws keywords.Set, source string) []model.Match {
	if len(kws) == 0 {
		return matches
	}
	sorted := kws.Sorted()
	out := []model.Match{}
	for _, m := range matches {
		text := strings.ToLower(m.Case.Section() + " " + m.Case.Title)
		for _, kw := range sorted {
			if strings.Contains(text, kw) {
				out = append(out, model.Match{Case: m.Case, Reason: fmt.Sprintf("%s; %s keyword %q", m.Reason, source, kw)})
				break
			}
		}
	}
	return out
}

// filenameKeywords uses base names only; directory segments are already
// covered by component folders.
func filenameKeywords(change model.ChangeRequest) keywords.Set {
	out := make(keywords.Set)
	for _, f := range change.ChangedFiles {
		if f.Path == "" || f.Path == model.UnknownPath {
			continue
		}
		out.Union(keywords.ExtractFromFilename(f.Path))
	}
	return out
}

// caseKey identifies a case for deduplication. Cases without an id (offline
// inventories may omit it) are told apart by their content instead.
type caseKey struct {
	id      int64
	title   string
	section string
	ref     string
}

func keyOf(tc model.TestCase) caseKey {
	if tc.ID != 0 {
		return caseKey{id: tc.ID}
	}
	return caseKey{title: tc.Title, section: tc.Section(), ref: tc.Reference}
}

// compose orders direct matches first and then the refined matches not
// already present; each group is sorted by descending score.
func compose(direct, refined []model.Match, ctx *scoring.Context) []model.ScoredTestCase {
	out := []model.ScoredTestCase{}
	seen := make(map[caseKey]bool)
	group := func(matches []model.Match) {
		var scored []model.ScoredTestCase
		for _, m := range matches {
			if seen[keyOf(m.Case)] {
				continue
			}
			seen[keyOf(m.Case)] = true
			scored = append(scored, scoring.Score(m.Case, ctx))
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Score > scored[j].Score
		})
		out = append(out, scored...)
	}
	group(direct)
	group(refined)
	return out
}
