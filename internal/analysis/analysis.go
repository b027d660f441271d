// Package analysis ties the scoring core together: it classifies a change,
// selects impacted test cases and estimates testing effort.
package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sprite-ai/testscope/internal/classify"
	"github.com/sprite-ai/testscope/internal/component"
	"github.com/sprite-ai/testscope/internal/impact"
	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/scoring"
)

// DefaultBaseHoursPerArea is the testing effort for one impacted section.
const DefaultBaseHoursPerArea = 2.0

// Options tune Build.
type Options struct {
	BaseHoursPerArea float64
	// All skips the advisory cap when filling Report.Recommended.
	All bool
}

// Report is the outcome of one analysis.
type Report struct {
	ID             string                  `json:"id"`
	GeneratedAt    time.Time               `json:"generated_at"`
	Ticket         model.Ticket            `json:"ticket"`
	Change         model.ChangeRequest     `json:"change"`
	Classification classify.Classification `json:"classification"`
	Size           classify.Size           `json:"size"`
	Impact         *model.ImpactResult     `json:"impact"`
	ImpactedAreas  int                     `json:"impacted_areas"`
	EstimatedHours float64                 `json:"estimated_hours"`
	Recommended    []model.ScoredTestCase  `json:"recommended"`
}

// Summary returns a one-line summary of the report.
func (r *Report) Summary() string {
	c := r.Classification
	return fmt.Sprintf("%s change (risk %d, %s): %d of %d cases recommended across %d sections, ~%.1fh",
		c.Category, c.RiskScore, c.RiskLevel,
		len(r.Recommended), len(r.Impact.AllCases), r.ImpactedAreas, r.EstimatedHours)
}

// Truncated reports whether the advisory cap hid some cases.
func (r *Report) Truncated() bool {
	return len(r.Recommended) < len(r.Impact.AllCases)
}

// NoSection labels cases whose section path is empty.
const NoSection = "(no section)"

// SectionGroup is a run of recommended cases sharing a section.
type SectionGroup struct {
	Section string
	Cases   []model.ScoredTestCase
}

// Sections groups the recommended cases by section, ordered by where each
// section first appears in Recommended.
func (r *Report) Sections() []SectionGroup {
	var groups []SectionGroup
	index := make(map[string]int)
	for _, sc := range r.Recommended {
		name := sc.Case.Section()
		if name == "" {
			name = NoSection
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, SectionGroup{Section: name})
		}
		groups[i].Cases = append(groups[i].Cases, sc)
	}
	return groups
}

// Build runs classification and impact selection over fully fetched inputs.
// change is classified on a copy; the caller's value is not modified.
func Build(ticket model.Ticket, change model.ChangeRequest, inventory []model.TestCase, table *component.Table, vocab *scoring.Vocabulary, opts Options) *Report {
	if table == nil {
		table = &component.Table{}
	}
	if vocab == nil {
		vocab = scoring.DefaultVocabulary()
	}
	if opts.BaseHoursPerArea == 0 {
		opts.BaseHoursPerArea = DefaultBaseHoursPerArea
	}

	cls := classify.Apply(&change, vocab)
	res := impact.Select(ticket, change, inventory, table, vocab)
	size := classify.SizeFor(cls.Metrics.FilesChanged)
	areas := len(res.GroupedBySection)

	recommended := res.Limited()
	if opts.All {
		recommended = res.AllCases
	}

	return &Report{
		ID:             uuid.NewString(),
		GeneratedAt:    time.Now().UTC(),
		Ticket:         ticket,
		Change:         change,
		Classification: cls,
		Size:           size,
		Impact:         res,
		ImpactedAreas:  areas,
		EstimatedHours: classify.EstimateHours(areas, opts.BaseHoursPerArea, size),
		Recommended:    recommended,
	}
}

// ClassifyChange categorizes a change from its metrics.
func ClassifyChange(m classify.Metrics) classify.Classification {
	return classify.Classify(m)
}

// ComputeImpact classifies change and runs the impact pipeline. The result
// carries the category cap in MaxTestCases.
func ComputeImpact(ticket model.Ticket, change model.ChangeRequest, inventory []model.TestCase, table *component.Table, vocab *scoring.Vocabulary) *model.ImpactResult {
	classify.Apply(&change, vocab)
	return impact.Select(ticket, change, inventory, table, vocab)
}

// ScoreForRelevance scores one case against a change, independent of the
// impact pipeline.
func ScoreForRelevance(tc model.TestCase, change model.ChangeRequest, ticket model.Ticket, table *component.Table, vocab *scoring.Vocabulary) model.ScoredTestCase {
	return scoring.Score(tc, scoring.NewContext(ticket, change, table, vocab))
}

// RegressionCandidates ranks the whole inventory by relevance, drops zero
// scores and returns at most limit cases (all when limit <= 0).
func RegressionCandidates(ticket model.Ticket, change model.ChangeRequest, inventory []model.TestCase, table *component.Table, vocab *scoring.Vocabulary, limit int) []model.ScoredTestCase {
	ctx := scoring.NewContext(ticket, change, table, vocab)
	out := []model.ScoredTestCase{}
	for _, tc := range inventory {
		if sc := scoring.Score(tc, ctx); sc.Score > 0 {
			out = append(out, sc)
		}
	}
	scoring.SortByScore(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
