package analysis

import (
	"fmt"
	"strings"

	"github.com/sprite-ai/testscope/internal/model"
)

// Plan is a reviewer's triage of a report's recommended cases.
type Plan struct {
	ReportID string                 `json:"report_id"`
	Ticket   string                 `json:"ticket"`
	Kept     []model.ScoredTestCase `json:"kept"`
	Dropped  []model.ScoredTestCase `json:"dropped"`
	Pending  []model.ScoredTestCase `json:"pending"`
}

// NewPlan sorts cases by the decision recorded for their id. Cases without a
// decision are pending.
func NewPlan(reportID, ticket string, cases []model.ScoredTestCase, decisions map[int64]model.Decision) *Plan {
	p := &Plan{
		ReportID: reportID,
		Ticket:   ticket,
		Kept:     []model.ScoredTestCase{},
		Dropped:  []model.ScoredTestCase{},
		Pending:  []model.ScoredTestCase{},
	}
	for _, sc := range cases {
		switch decisions[sc.Case.ID] {
		case model.DecisionKept:
			p.Kept = append(p.Kept, sc)
		case model.DecisionDropped:
			p.Dropped = append(p.Dropped, sc)
		default:
			p.Pending = append(p.Pending, sc)
		}
	}
	return p
}

// Markdown renders the plan as a checklist.
func (p *Plan) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Test plan for %s\n\n", p.Ticket)
	fmt.Fprintf(&b, "%d kept, %d dropped, %d pending\n", len(p.Kept), len(p.Dropped), len(p.Pending))

	section := func(title string, cases []model.ScoredTestCase, checkbox bool) {
		if len(cases) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		for _, sc := range cases {
			b.WriteString("- ")
			if checkbox {
				b.WriteString("[ ] ")
			}
			fmt.Fprintf(&b, "C%d %s (%d)", sc.Case.ID, sc.Case.Title, sc.Score)
			if s := sc.Case.Section(); s != "" {
				fmt.Fprintf(&b, " · %s", s)
			}
			b.WriteString("\n")
		}
	}
	section("Run", p.Kept, true)
	section("Pending review", p.Pending, true)
	section("Skipped", p.Dropped, false)
	return b.String()
}
