package impact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sprite-ai/testscope/internal/component"
	"github.com/sprite-ai/testscope/internal/model"
)

func table() *component.Table {
	return &component.Table{Entries: []component.Entry{
		{Name: "Webform", Tags: []string{"webform", "form-submission"}},
		{Name: "Authentication", Tags: []string{"login", "auth"}},
	}}
}

var inventory = []model.TestCase{
	{ID: 1, Title: "Verify webform submit button disabled when required fields empty", SectionPath: []string{"Forms", "Applicant", "Webform"}},
	{ID: 2, Title: "Verify webform autosave", SectionPath: []string{"Forms", "Applicant", "Webform"}},
	{ID: 3, Title: "Login with expired password", SectionPath: []string{"Auth", "Login"}},
	{ID: 4, Title: "Dashboard loads", SectionPath: []string{"Dashboard"}, Reference: "qa-101"},
	{ID: 5, Title: "Submit form via keyboard", SectionPath: []string{"Form Submission"}},
	{ID: 6, Title: "Webform submit regression", SectionPath: []string{"Forms", "Webform"}, Reference: "QA-101, QA-7"},
}

func ids(cases []model.ScoredTestCase) []int64 {
	out := make([]int64, 0, len(cases))
	for _, c := range cases {
		out = append(out, c.Case.ID)
	}
	return out
}

func matchIDs(ms []model.Match) []int64 {
	out := make([]int64, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Case.ID)
	}
	return out
}

func TestSelectWebformScenario(t *testing.T) {
	ticket := model.Ticket{ID: "QA-101", Title: "Webform submit validation", Components: []string{"Applicant-Webform"}}
	change := model.ChangeRequest{
		Title:        "Disable webform submit until required fields are filled",
		ChangedFiles: []model.FileDelta{{Path: "src/forms/webform/SubmitButton.tsx", LinesAdded: 20}},
		Category:     model.CategoryRelaxed,
	}

	res := Select(ticket, change, inventory, table(), nil)

	if diff := cmp.Diff([]int64{4, 6}, matchIDs(res.DirectMatches)); diff != "" {
		t.Errorf("direct matches (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1, 2, 5, 6}, matchIDs(res.ComponentMatches)); diff != "" {
		t.Errorf("component matches (-want +got):\n%s", diff)
	}
	// Title keywords keep all four; file keywords (submit, button) drop the
	// autosave case.
	if diff := cmp.Diff([]int64{1, 5, 6}, matchIDs(res.RefinedMatches)); diff != "" {
		t.Errorf("refined matches (-want +got):\n%s", diff)
	}

	all := ids(res.AllCases)
	if len(all) != 4 {
		t.Fatalf("all cases = %v, want 4 entries", all)
	}
	if all[0] != 6 && all[0] != 4 || all[1] != 6 && all[1] != 4 {
		t.Errorf("direct matches must lead all cases, got %v", all)
	}

	var webform model.ScoredTestCase
	for _, sc := range res.AllCases {
		if sc.Case.ID == 1 {
			webform = sc
		}
	}
	if webform.Score < 65 {
		t.Errorf("webform case scored %d, want >= 65 (%v)", webform.Score, webform.Reasons)
	}
	if res.MaxTestCases != 20 {
		t.Errorf("MaxTestCases = %d, want 20", res.MaxTestCases)
	}
	if got := res.GroupedBySection["Forms › Applicant › Webform"]; len(got) != 1 || got[0].ID != 1 {
		t.Errorf("grouped section = %+v", got)
	}
}

func TestSelectNoDuplicates(t *testing.T) {
	ticket := model.Ticket{ID: "QA-101", Title: "Webform", Components: []string{"Webform", "Applicant-Webform", "form submission"}}
	res := Select(ticket, model.ChangeRequest{}, inventory, table(), nil)

	seen := map[int64]bool{}
	for _, sc := range res.AllCases {
		if seen[sc.Case.ID] {
			t.Errorf("case %d appears twice", sc.Case.ID)
		}
		seen[sc.Case.ID] = true
	}
	seen = map[int64]bool{}
	for _, m := range res.ComponentMatches {
		if seen[m.Case.ID] {
			t.Errorf("component stage kept case %d twice", m.Case.ID)
		}
		seen[m.Case.ID] = true
	}
}

func TestDirectMatchAlwaysIncluded(t *testing.T) {
	ticket := model.Ticket{ID: "qa-101", Title: "Unrelated wording", Components: []string{"Authentication"}}
	change := model.ChangeRequest{ChangedFiles: []model.FileDelta{{Path: "billing/Invoice.go"}}}
	res := Select(ticket, change, inventory, table(), nil)

	got := ids(res.AllCases)
	for _, want := range []int64{4, 6} {
		found := false
		for _, id := range got {
			found = found || id == want
		}
		if !found {
			t.Errorf("direct match %d missing from %v", want, got)
		}
	}
}

func TestRefinementPassesThroughWithoutKeywords(t *testing.T) {
	ticket := model.Ticket{Title: "Fix it", Components: []string{"Authentication"}}
	change := model.ChangeRequest{ChangedFiles: []model.FileDelta{{Path: model.UnknownPath}, {Path: "a/b.go"}}}
	res := Select(ticket, change, inventory, table(), nil)

	if diff := cmp.Diff(matchIDs(res.ComponentMatches), matchIDs(res.RefinedMatches)); diff != "" {
		t.Errorf("refinement filtered without keywords (-component +refined):\n%s", diff)
	}
	if len(res.RefinedMatches) == 0 {
		t.Error("expected authentication cases to survive")
	}
}

func TestSelectEmpty(t *testing.T) {
	res := Select(model.Ticket{ID: "NOPE-1", Title: "Something"}, model.ChangeRequest{}, inventory, table(), nil)

	want := &model.ImpactResult{
		DirectMatches:    []model.Match{},
		ComponentMatches: []model.Match{},
		RefinedMatches:   []model.Match{},
		AllCases:         []model.ScoredTestCase{},
		GroupedBySection: map[string][]model.TestCase{},
		MaxTestCases:     20,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("empty result (-want +got):\n%s", diff)
	}
}

func TestSelectEmptyInventory(t *testing.T) {
	ticket := model.Ticket{ID: "QA-1", Title: "Webform", Components: []string{"Webform"}}
	res := Select(ticket, model.ChangeRequest{Category: model.CategoryAngry}, nil, &component.Table{}, nil)
	if res.AllCases == nil || res.GroupedBySection == nil || len(res.AllCases) != 0 {
		t.Errorf("want empty non-nil collections, got %+v", res)
	}
	if res.MaxTestCases != 80 {
		t.Errorf("MaxTestCases = %d, want 80", res.MaxTestCases)
	}
}

func TestComponentMatchReasonsFirstWins(t *testing.T) {
	ms := ComponentMatches([]string{"Webform", "form submission"}, inventory, table())
	for _, m := range ms {
		if m.Case.ID == 5 && m.Reason == "" {
			t.Error("missing reason")
		}
		if m.Case.ID == 1 && m.Reason != `component "Webform": section folder "Webform" contains "webform"` {
			t.Errorf("reason = %q", m.Reason)
		}
	}
}

func TestSelectKeepsCasesWithoutIDs(t *testing.T) {
	ticket := model.Ticket{ID: "QA-9", Title: "Webform submit", Components: []string{"Webform"}}
	change := model.ChangeRequest{
		ChangedFiles: []model.FileDelta{{Path: "src/webform/SubmitButton.tsx"}},
		Category:     model.CategoryRelaxed,
	}
	inv := []model.TestCase{
		{Title: "Submit webform with attachments", SectionPath: []string{"Webform"}},
		{Title: "Submit webform twice", SectionPath: []string{"Webform"}},
		{Title: "Submit webform twice", SectionPath: []string{"Webform"}},
	}

	res := Select(ticket, change, inv, table(), nil)

	if len(res.ComponentMatches) != 2 {
		t.Errorf("component matches = %d, want 2", len(res.ComponentMatches))
	}
	var titles []string
	for _, sc := range res.AllCases {
		titles = append(titles, sc.Case.Title)
	}
	want := []string{"Submit webform with attachments", "Submit webform twice"}
	if diff := cmp.Diff(want, titles, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("all cases (-want +got):\n%s", diff)
	}
}
