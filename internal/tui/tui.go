// Package tui implements the Bubble Tea terminal user interface for
// triaging a report's recommended test cases.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/model"
)

// undoEntry is a decision that can be reverted.
type undoEntry struct {
	section, index int
	id             int64
	prev           model.Decision
}

// Model is the top-level Bubble Tea model for testscope.
type Model struct {
	report   *analysis.Report
	sections []analysis.SectionGroup

	// UI state
	width  int
	height int

	sectionIndex int // currently selected section
	caseIndex    int // selected case within the section

	decisions decisions
	history   []undoEntry

	// Help
	showHelp bool
}

// New creates a new TUI model for a report.
func New(r *analysis.Report) Model {
	return Model{
		report:    r,
		sections:  r.Sections(),
		decisions: make(decisions),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) cases() []model.ScoredTestCase {
	if len(m.sections) == 0 {
		return nil
	}
	return m.sections[m.sectionIndex].Cases
}

func (m Model) current() (model.ScoredTestCase, bool) {
	cases := m.cases()
	if m.caseIndex >= len(cases) {
		return model.ScoredTestCase{}, false
	}
	return cases[m.caseIndex], true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.caseIndex < len(m.cases())-1 {
				m.caseIndex++
			}

		case key.Matches(msg, keys.Up):
			if m.caseIndex > 0 {
				m.caseIndex--
			}

		case key.Matches(msg, keys.NextSection):
			if m.sectionIndex < len(m.sections)-1 {
				m.sectionIndex++
				m.caseIndex = 0
			}

		case key.Matches(msg, keys.PrevSection):
			if m.sectionIndex > 0 {
				m.sectionIndex--
				m.caseIndex = 0
			}

		case key.Matches(msg, keys.Keep):
			m.decide(model.DecisionKept)

		case key.Matches(msg, keys.Drop):
			m.decide(model.DecisionDropped)

		case key.Matches(msg, keys.Undo):
			m.undo()

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

// decide records d for the selected case and moves to the next one.
func (m *Model) decide(d model.Decision) {
	sc, ok := m.current()
	if !ok {
		return
	}
	m.history = append(m.history, undoEntry{
		section: m.sectionIndex,
		index:   m.caseIndex,
		id:      sc.Case.ID,
		prev:    m.decisions[sc.Case.ID],
	})
	m.decisions.set(sc.Case.ID, d)
	m.advance()
}

// advance selects the next case, continuing into the next section.
func (m *Model) advance() {
	if m.caseIndex < len(m.cases())-1 {
		m.caseIndex++
		return
	}
	if m.sectionIndex < len(m.sections)-1 {
		m.sectionIndex++
		m.caseIndex = 0
	}
}

// undo reverts the most recent decision and selects its case again.
func (m *Model) undo() {
	if len(m.history) == 0 {
		return
	}
	last := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.decisions.set(last.id, last.prev)
	m.sectionIndex = last.section
	m.caseIndex = last.index
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Layout: section list on left, cases on right
	listWidth := m.sectionListWidth()
	caseWidth := m.width - listWidth - 1 // -1 for gap

	sectionList := m.renderSectionList(listWidth, m.height-2)
	caseView := m.renderCaseView(caseWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, sectionList, " ", caseView)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) sectionListWidth() int {
	// Calculate based on longest section name, capped
	maxLen := 20
	for _, s := range m.sections {
		if n := lipgloss.Width(s.Section); n > maxLen {
			maxLen = n
		}
	}
	w := maxLen + 10 // padding + counts
	if w > m.width/3 {
		w = m.width / 3
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderSectionList(width, height int) string {
	var b strings.Builder

	for i, s := range m.sections {
		name := s.Section

		maxName := width - 10
		if maxName > 0 && lipgloss.Width(name) > maxName {
			r := []rune(name)
			name = "…" + string(r[len(r)-maxName+1:])
		}

		kept, _, _ := m.decisions.counts(s.Cases)
		line := fmt.Sprintf("%-*s %d/%d", maxName, name, kept, len(s.Cases))

		style := sectionItemStyle
		switch {
		case i == m.sectionIndex:
			style = sectionItemSelectedStyle
		case m.decisions.decided(s.Cases):
			style = sectionDoneStyle
		}

		b.WriteString(style.Width(width - 4).Render(line))
		if i < len(m.sections)-1 {
			b.WriteByte('\n')
		}
	}

	innerHeight := height - 2 // borders
	return sectionListStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderCaseView(width, height int) string {
	innerHeight := height - 2
	if len(m.sections) == 0 {
		return caseViewStyle.Width(width).Height(innerHeight).Render("No recommended test cases")
	}

	innerWidth := width - 4 // borders + padding
	s := m.sections[m.sectionIndex]

	var b strings.Builder
	b.WriteString(caseHeaderStyle.Render(s.Section))
	b.WriteByte('\n')

	// Rows left after the header and the selected case's reasons.
	sc, _ := m.current()
	visible := innerHeight - 2 - len(sc.Reasons)
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.caseIndex >= visible {
		start = m.caseIndex - visible + 1
	}
	end := start + visible
	if end > len(s.Cases) {
		end = len(s.Cases)
	}

	for i := start; i < end; i++ {
		c := s.Cases[i]
		b.WriteString(caseLine(c, m.decisions[c.Case.ID], i == m.caseIndex, innerWidth))
		b.WriteByte('\n')
		if i == m.caseIndex {
			for _, reason := range c.Reasons {
				b.WriteString(reasonStyle.Render(truncate("        "+reason, innerWidth)))
				b.WriteByte('\n')
			}
		}
	}

	return caseViewStyle.Width(width).Height(innerHeight).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderStatusBar() string {
	kept, dropped, pending := m.decisions.counts(m.report.Recommended)
	c := m.report.Classification

	left := " " + m.report.Ticket.ID
	if len(m.sections) > 0 {
		left += fmt.Sprintf("  Section %d/%d  Case %d/%d",
			m.sectionIndex+1, len(m.sections), m.caseIndex+1, len(m.cases()))
	}

	right := fmt.Sprintf("%s  kept %d  dropped %d  pending %d  ? help ",
		categoryStyle.Render(fmt.Sprintf("%s %d", c.Category, c.RiskScore)), kept, dropped, pending)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(helpHeaderStyle.Render("testscope: keyboard shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"↑/k", "Previous case"},
		{"↓/j", "Next case"},
		{"n/Tab", "Next section"},
		{"N/S-Tab", "Previous section"},
		{"a", "Keep case in the plan"},
		{"x", "Drop case from the plan"},
		{"u", "Undo last decision"},
		{"?", "Toggle this help"},
		{"q", "Finish and write the plan"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// Run starts the TUI and returns the reviewer's plan once they quit.
func Run(r *analysis.Report) (*analysis.Plan, error) {
	p := tea.NewProgram(New(r), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Plan(), nil
}
