// Package model defines the core data types shared across testscope.
package model

import (
	"fmt"
	"strings"
)

// SectionSeparator joins section-path folders for display and grouping.
const SectionSeparator = " › "

// UnknownPath stands in for a changed file whose path could not be
// recovered from the upstream payload.
const UnknownPath = "<unknown>"

// RiskLevel buckets a change's numeric risk score.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// RiskLevelFor maps a 0-100 risk score to its level.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RiskLevel) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "low":
		*r = RiskLow
	case "medium":
		*r = RiskMedium
	case "high":
		*r = RiskHigh
	default:
		return fmt.Errorf("unknown risk level %q", b)
	}
	return nil
}

// Category is the magnitude/risk class of a change. The zero value is
// CategoryRelaxed.
type Category int

const (
	CategoryRelaxed Category = iota
	CategorySleepy
	CategorySarcastic
	CategoryOverloaded
	CategoryAngry
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryRelaxed,
	CategorySleepy,
	CategorySarcastic,
	CategoryOverloaded,
	CategoryAngry,
}

func (c Category) String() string {
	switch c {
	case CategoryRelaxed:
		return "relaxed"
	case CategorySleepy:
		return "sleepy"
	case CategorySarcastic:
		return "sarcastic"
	case CategoryOverloaded:
		return "overloaded"
	case CategoryAngry:
		return "angry"
	default:
		return "unknown"
	}
}

// Cap returns the advisory number of test cases to surface for a change
// of this category.
func (c Category) Cap() int {
	switch c {
	case CategorySleepy:
		return 30
	case CategorySarcastic:
		return 40
	case CategoryOverloaded:
		return 60
	case CategoryAngry:
		return 80
	default:
		return 20
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	s := strings.ToLower(string(b))
	for _, cat := range Categories {
		if cat.String() == s {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", b)
}

// ChangeKind says what happened to a file in a change.
type ChangeKind int

const (
	ChangeModify ChangeKind = iota
	ChangeAdd
	ChangeDelete
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "ADD"
	case ChangeDelete:
		return "DELETE"
	default:
		return "MODIFY"
	}
}

func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ChangeKind) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "ADD", "ADDED":
		*k = ChangeAdd
	case "DELETE", "DELETED", "REMOVED":
		*k = ChangeDelete
	case "MODIFY", "MODIFIED", "":
		*k = ChangeModify
	default:
		return fmt.Errorf("unknown change kind %q", b)
	}
	return nil
}

// FileDelta is one changed file in a change request.
type FileDelta struct {
	Path         string     `json:"path"`
	LinesAdded   int        `json:"lines_added"`
	LinesRemoved int        `json:"lines_removed"`
	Kind         ChangeKind `json:"change_kind"`
}

// ChangeRequest is a pull request as fetched from the source-control host.
type ChangeRequest struct {
	Ref          string      `json:"ref,omitempty"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Author       string      `json:"author,omitempty"`
	State        string      `json:"state,omitempty"`
	ChangedFiles []FileDelta `json:"changed_files"`
	Category     Category    `json:"category"`
	RiskScore    int         `json:"risk_score"`
}

// Paths returns the changed file paths in order.
func (c ChangeRequest) Paths() []string {
	paths := make([]string, 0, len(c.ChangedFiles))
	for _, f := range c.ChangedFiles {
		paths = append(paths, f.Path)
	}
	return paths
}

// LinesChanged returns the total of added and removed lines.
func (c ChangeRequest) LinesChanged() int {
	total := 0
	for _, f := range c.ChangedFiles {
		total += f.LinesAdded + f.LinesRemoved
	}
	return total
}

// Ticket is an issue-tracker record.
type Ticket struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Components         []string `json:"components"`
	Description        string   `json:"description,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}

// TestCase is a stored test case from the test-management repository.
type TestCase struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	SectionID    int64          `json:"section_id,omitempty"`
	SectionPath  []string       `json:"section_path"`
	Reference    string         `json:"reference,omitempty"`
	Priority     int            `json:"priority,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// Section returns the breadcrumb of the case's folders.
func (tc TestCase) Section() string {
	return strings.Join(tc.SectionPath, SectionSeparator)
}

// ScoredTestCase is a test case with its relevance score for one change.
type ScoredTestCase struct {
	Case    TestCase `json:"test_case"`
	Score   int      `json:"score"`
	Reasons []string `json:"match_reasons"`
}

// Match records why a pipeline stage picked a test case.
type Match struct {
	Case   TestCase `json:"test_case"`
	Reason string   `json:"reason"`
}

// ImpactResult is the output of the impact pipeline for one change.
type ImpactResult struct {
	DirectMatches    []Match               `json:"direct_matches"`
	ComponentMatches []Match               `json:"component_matches"`
	RefinedMatches   []Match               `json:"refined_matches"`
	AllCases         []ScoredTestCase      `json:"all_cases"`
	GroupedBySection map[string][]TestCase `json:"grouped_by_section"`
	Category         Category              `json:"category"`
	MaxTestCases     int                   `json:"max_test_cases"`
}

// Limited returns AllCases truncated to the advisory cap.
func (r ImpactResult) Limited() []ScoredTestCase {
	if r.MaxTestCases <= 0 || len(r.AllCases) <= r.MaxTestCases {
		return r.AllCases
	}
	return r.AllCases[:r.MaxTestCases]
}

// Decision records a reviewer's call on a suggested test case.
type Decision int

const (
	DecisionPending Decision = iota
	DecisionKept
	DecisionDropped
)

func (d Decision) String() string {
	switch d {
	case DecisionKept:
		return "kept"
	case DecisionDropped:
		return "dropped"
	default:
		return "pending"
	}
}
