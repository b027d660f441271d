package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/model"
)

func testReport() *analysis.Report {
	scored := func(id int64, title string, score int, section ...string) model.ScoredTestCase {
		return model.ScoredTestCase{
			Case:    model.TestCase{ID: id, Title: title, SectionPath: section},
			Score:   score,
			Reasons: []string{"matches component tag \"webform\""},
		}
	}
	return &analysis.Report{
		ID:     "r-1",
		Ticket: model.Ticket{ID: "QA-101", Title: "Webform submit validation"},
		Recommended: []model.ScoredTestCase{
			scored(1, "Submit webform with required fields", 90, "Forms", "Webform"),
			scored(2, "Webform autosave", 60, "Forms", "Webform"),
			scored(3, "Submit form via keyboard", 45, "Form Submission"),
		},
	}
}

func setupModel(t *testing.T) Model {
	t.Helper()
	m := New(testReport())
	// Simulate window size
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return newM.(Model)
}

func press(t *testing.T, m Model, keys ...rune) Model {
	t.Helper()
	for _, k := range keys {
		newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{k}})
		m = newM.(Model)
	}
	return m
}

func planIDs(cases []model.ScoredTestCase) []int64 {
	out := []int64{}
	for _, sc := range cases {
		out = append(out, sc.Case.ID)
	}
	return out
}

func TestModelInit(t *testing.T) {
	m := setupModel(t)

	if m.sectionIndex != 0 || m.caseIndex != 0 {
		t.Errorf("expected selection 0/0, got %d/%d", m.sectionIndex, m.caseIndex)
	}
	if len(m.sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(m.sections))
	}
	if m.sections[0].Section != "Forms › Webform" {
		t.Errorf("first section = %q", m.sections[0].Section)
	}
}

func TestNavigation(t *testing.T) {
	m := setupModel(t)

	m = press(t, m, 'n')
	if m.sectionIndex != 1 {
		t.Errorf("expected sectionIndex 1 after next, got %d", m.sectionIndex)
	}

	// Move past end, should stay
	m = press(t, m, 'n')
	if m.sectionIndex != 1 {
		t.Errorf("expected sectionIndex 1 at end, got %d", m.sectionIndex)
	}

	m = press(t, m, 'N')
	if m.sectionIndex != 0 {
		t.Errorf("expected sectionIndex 0 after prev, got %d", m.sectionIndex)
	}
}

func TestCaseMovement(t *testing.T) {
	m := setupModel(t)

	m = press(t, m, 'j')
	if m.caseIndex != 1 {
		t.Errorf("expected caseIndex 1, got %d", m.caseIndex)
	}

	// Can't move below the last case of the section
	m = press(t, m, 'j')
	if m.caseIndex != 1 {
		t.Errorf("expected caseIndex 1 at bottom, got %d", m.caseIndex)
	}

	m = press(t, m, 'k', 'k')
	if m.caseIndex != 0 {
		t.Errorf("expected caseIndex 0 at top, got %d", m.caseIndex)
	}
}

func TestDecisionsBuildPlan(t *testing.T) {
	m := setupModel(t)

	// keep 1, drop 2, which advances into the next section
	m = press(t, m, 'a', 'x')
	if m.sectionIndex != 1 || m.caseIndex != 0 {
		t.Errorf("expected to advance to section 1, got %d/%d", m.sectionIndex, m.caseIndex)
	}

	plan := m.Plan()
	if plan.ReportID != "r-1" || plan.Ticket != "QA-101" {
		t.Errorf("plan header = %q/%q", plan.ReportID, plan.Ticket)
	}
	if diff := cmp.Diff([]int64{1}, planIDs(plan.Kept)); diff != "" {
		t.Errorf("kept (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{2}, planIDs(plan.Dropped)); diff != "" {
		t.Errorf("dropped (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3}, planIDs(plan.Pending)); diff != "" {
		t.Errorf("pending (-want +got):\n%s", diff)
	}
}

func TestUndo(t *testing.T) {
	m := setupModel(t)

	m = press(t, m, 'a', 'j')
	m = press(t, m, 'x')
	m = press(t, m, 'u')

	if m.sectionIndex != 0 || m.caseIndex != 1 {
		t.Errorf("undo should reselect case 2, got %d/%d", m.sectionIndex, m.caseIndex)
	}
	if got := m.decisions[2]; got != model.DecisionPending {
		t.Errorf("case 2 decision = %s after undo, want pending", got)
	}
	if got := m.decisions[1]; got != model.DecisionKept {
		t.Errorf("case 1 decision = %s, want kept", got)
	}

	// Undo restores an earlier decision, not just pending.
	m = press(t, m, 'k', 'x', 'u')
	if got := m.decisions[1]; got != model.DecisionKept {
		t.Errorf("case 1 decision = %s after undoing a change, want kept", got)
	}

	m = press(t, m, 'u', 'u', 'u')
	if len(m.decisions) != 0 {
		t.Errorf("expected no decisions after undoing everything, got %v", m.decisions)
	}
}

func TestViewRenders(t *testing.T) {
	m := setupModel(t)

	view := m.View()
	for _, want := range []string{"Forms › Webform", "C1", "Submit webform with required fields", "matches component tag", "QA-101"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	m = press(t, m, 'a')
	if !strings.Contains(m.View(), "[✓]") {
		t.Error("expected kept marker in view")
	}
}

func TestEmptyReport(t *testing.T) {
	m := New(&analysis.Report{ID: "r-2", Ticket: model.Ticket{ID: "QA-2"}})
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = press(t, newM.(Model), 'j', 'n', 'a', 'u')

	if !strings.Contains(m.View(), "No recommended test cases") {
		t.Error("expected empty-state message")
	}
	if plan := m.Plan(); len(plan.Pending)+len(plan.Kept)+len(plan.Dropped) != 0 {
		t.Errorf("expected an empty plan, got %+v", plan)
	}
}

func TestHelpToggle(t *testing.T) {
	m := setupModel(t)

	m = press(t, m, '?')
	if !m.showHelp {
		t.Error("expected help to be shown")
	}
	if !strings.Contains(m.View(), "Undo last decision") {
		t.Error("expected help text in view")
	}

	m = press(t, m, '?')
	if m.showHelp {
		t.Error("expected help to be hidden")
	}
}

func TestQuit(t *testing.T) {
	m := setupModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
