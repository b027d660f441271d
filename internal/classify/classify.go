// Package classify sorts a change into a magnitude/risk category and a size
// tier used for effort estimates.
package classify

import (
	"math"
	"path"
	"regexp"
	"strings"

	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/scoring"
)

// Metrics are the inputs of Classify.
type Metrics struct {
	FilesChanged            int      `json:"files_changed"`
	SharedComponentsTouched int      `json:"shared_components_touched"`
	TotalLinesChanged       int      `json:"total_lines_changed"`
	Title                   string   `json:"title"`
	Paths                   []string `json:"paths,omitempty"`
}

// Classification is the outcome of Classify.
type Classification struct {
	Category  model.Category  `json:"category"`
	RiskScore int             `json:"risk_score"`
	RiskLevel model.RiskLevel `json:"risk_level"`
	Metrics   Metrics         `json:"metrics"`
}

// MaxTestCases is the advisory result cap for the classified change.
func (c Classification) MaxTestCases() int {
	return c.Category.Cap()
}

var minorTitle = regexp.MustCompile(`(?i)\b(minor|quick|small|fix(es|ed)?|tiny|typos?|trivial|simple)\b`)

var styleExtensions = map[string]bool{".css": true, ".scss": true, ".less": true}

// RiskScore combines the change metrics into a 0-100 score.
func RiskScore(m Metrics) int {
	raw := float64(m.FilesChanged) + float64(m.SharedComponentsTouched)*10 + float64(m.TotalLinesChanged)*0.05
	return int(math.Min(100, math.Round(raw)))
}

// Classify assigns a category. Rules are checked in order and the first
// that holds wins.
func Classify(m Metrics) Classification {
	risk := RiskScore(m)
	out := Classification{
		RiskScore: risk,
		RiskLevel: model.RiskLevelFor(risk),
		Metrics:   m,
	}
	switch {
	case allStyle(m.Paths):
		out.Category = model.CategorySleepy
	case minorTitle.MatchString(m.Title) && (m.FilesChanged > 5 || m.TotalLinesChanged > 100):
		out.Category = model.CategorySarcastic
	case m.SharedComponentsTouched > 3 || risk > 85:
		out.Category = model.CategoryOverloaded
	case m.FilesChanged > 10 || m.TotalLinesChanged > 500:
		out.Category = model.CategoryAngry
	default:
		out.Category = model.CategoryRelaxed
	}
	return out
}

// MetricsFor derives classifier inputs from a change. Shared components are
// changed files under a shared-code marker of vocab (nil means defaults).
func MetricsFor(change model.ChangeRequest, vocab *scoring.Vocabulary) Metrics {
	if vocab == nil {
		vocab = scoring.DefaultVocabulary()
	}
	m := Metrics{
		FilesChanged:      len(change.ChangedFiles),
		TotalLinesChanged: change.LinesChanged(),
		Title:             change.Title,
		Paths:             change.Paths(),
	}
	for _, f := range change.ChangedFiles {
		if f.Path != model.UnknownPath && vocab.IsSharedPath(f.Path) {
			m.SharedComponentsTouched++
		}
	}
	return m
}

// Apply classifies change and records the category and risk score on it.
func Apply(change *model.ChangeRequest, vocab *scoring.Vocabulary) Classification {
	c := Classify(MetricsFor(*change, vocab))
	change.Category = c.Category
	change.RiskScore = c.RiskScore
	return c
}

// IsStyleFile reports whether p is a stylesheet or lives under a style path.
func IsStyleFile(p string) bool {
	lower := strings.ToLower(p)
	return styleExtensions[path.Ext(lower)] || strings.Contains(lower, "style")
}

func allStyle(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if !IsStyleFile(p) {
			return false
		}
	}
	return true
}
