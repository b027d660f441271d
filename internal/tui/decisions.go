package tui

import (
	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/model"
)

// decisions records the reviewer's call per case id. Missing ids are
// pending.
type decisions map[int64]model.Decision

func (d decisions) set(id int64, dec model.Decision) {
	if dec == model.DecisionPending {
		delete(d, id)
		return
	}
	d[id] = dec
}

// counts tallies the decisions over cases.
func (d decisions) counts(cases []model.ScoredTestCase) (kept, dropped, pending int) {
	for _, sc := range cases {
		switch d[sc.Case.ID] {
		case model.DecisionKept:
			kept++
		case model.DecisionDropped:
			dropped++
		default:
			pending++
		}
	}
	return kept, dropped, pending
}

// decided reports whether every case has a decision.
func (d decisions) decided(cases []model.ScoredTestCase) bool {
	_, _, pending := d.counts(cases)
	return pending == 0
}

// Plan returns the reviewer's triage of the report's recommended cases.
func (m Model) Plan() *analysis.Plan {
	return analysis.NewPlan(m.report.ID, m.report.Ticket.ID, m.report.Recommended, m.decisions)
}
