// Package scoring computes a bounded relevance score for a test case against
// a change by folding independent signals into a score and a list of reasons.
package scoring

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sprite-ai/testscope/internal/keywords"
	"github.com/sprite-ai/testscope/internal/model"
)

// Signal weights.
const (
	pointsDirectReference   = 100
	pointsFolderTag         = 35
	pointsFolderArea        = 30
	pointsFolderStem        = 25
	pointsFolderKeyword     = 20
	pointsTitleArea         = 40
	pointsTitleComponent    = 30
	pointsTitleKeyword      = 20
	pointsTitleStem         = 35
	pointsPattern           = 20
	pointsCriticalShared    = 50
	pointsCritical          = 10
	pointsFieldKeyword      = 5
	pointsPRUIElement       = 20
	pointsPRBehavior        = 15
	capPRTerms              = 40
	pointsPRTermsBonus      = 20
	pointsBugFixNegative    = 25
	pointsBugFixRegression  = 30
	pointsShapeUI           = 20
	pointsShapeLogic        = 15
	pointsShapeIntegration  = 30
	pointsDeepComponent     = 30
	pointsDeepArea          = 25
	penaltyShallowGeneric   = -20
	penaltyGeneric          = -20
	genericPenaltyThreshold = 50

	MinScore = 0
	MaxScore = 100
)

// tally is the running result of folding signals over one test case. Each
// signal returns a new tally; reasons are clipped before appending so earlier
// tallies never observe later additions.
type tally struct {
	points  int
	reasons []string

	componentHit  bool
	deepComponent bool
	deepArea      bool
	titleKeywords keywords.Set
}

func (t tally) add(points int, format string, args ...any) tally {
	t.points += points
	t.reasons = append(slices.Clip(t.reasons), fmt.Sprintf(format, args...))
	return t
}

// subject is the lowercased view of a test case that signals read.
type subject struct {
	ref         string
	title       string
	titleTokens keywords.Set
	folders     []string
	fields      string
	fieldTokens keywords.Set
	priority    int
	depth       int
	generic     bool
}

type signal func(t tally, s *subject, c *Context) tally

var signals = []signal{
	directReference,
	folderTags,
	folderAreas,
	folderStems,
	folderKeywords,
	titleAreas,
	titleComponentWords,
	titleKeywords,
	titleStems,
	sharedPatterns,
	criticalPath,
	fieldKeywords,
	prTitleTerms,
	bugFixNegative,
	bugFixRegression,
	changeShape,
	sectionDepth,
	shallowGeneric,
	genericPenalty,
}

// Score rates how likely tc is affected by the change described by c.
// The result is clamped to [MinScore, MaxScore].
func Score(tc model.TestCase, c *Context) model.ScoredTestCase {
	s := newSubject(tc, c)
	t := tally{titleKeywords: make(keywords.Set)}
	for _, sig := range signals {
		t = sig(t, s, c)
	}

	reasons := t.reasons
	if reasons == nil {
		reasons = []string{}
	}
	return model.ScoredTestCase{Case: tc, Score: clamp(t.points), Reasons: reasons}
}

// Rank scores every case and returns them by descending score, ties broken
// by ascending id.
func Rank(cases []model.TestCase, c *Context) []model.ScoredTestCase {
	out := make([]model.ScoredTestCase, 0, len(cases))
	for _, tc := range cases {
		out = append(out, Score(tc, c))
	}
	SortByScore(out)
	return out
}

// SortByScore orders scored cases by descending score then ascending id.
func SortByScore(cases []model.ScoredTestCase) {
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].Score != cases[j].Score {
			return cases[i].Score > cases[j].Score
		}
		return cases[i].Case.ID < cases[j].Case.ID
	})
}

func clamp(points int) int {
	if points < MinScore {
		return MinScore
	}
	if points > MaxScore {
		return MaxScore
	}
	return points
}

func newSubject(tc model.TestCase, c *Context) *subject {
	s := &subject{
		ref:      strings.ToLower(tc.Reference),
		title:    strings.ToLower(tc.Title),
		priority: tc.Priority,
		depth:    len(tc.SectionPath),
	}
	s.titleTokens = keywords.NewSet(keywords.Tokens(tc.Title)...)
	for _, f := range tc.SectionPath {
		s.folders = append(s.folders, strings.ToLower(f))
	}

	var fields strings.Builder
	fields.WriteString(s.ref)
	keys := make([]string, 0, len(tc.CustomFields))
	for k := range tc.CustomFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := tc.CustomFields[k]; v != nil {
			fields.WriteByte(' ')
			fields.WriteString(strings.ToLower(fmt.Sprint(v)))
		}
	}
	s.fields = fields.String()
	s.fieldTokens = keywords.NewSet(keywords.Tokens(s.fields)...)
	s.generic = isGeneric(s, c)
	return s
}

// mentions reports whether text refers to term. Short terms must match a
// whole token so "tab" does not hit "table".
func mentions(text string, tokens keywords.Set, term string) bool {
	if term == "" {
		return false
	}
	if utf8.RuneCountInString(term) < 4 {
		return tokens.Has(term)
	}
	return strings.Contains(text, term)
}

func mentionsAny(text string, tokens keywords.Set, terms []string) (string, bool) {
	for _, term := range terms {
		if mentions(text, tokens, term) {
			return term, true
		}
	}
	return "", false
}

// folderWith returns the index of the first folder containing any term, or -1.
func folderWith(folders []string, terms ...string) int {
	for i, f := range folders {
		for _, term := range terms {
			if term != "" && strings.Contains(f, term) {
				return i
			}
		}
	}
	return -1
}

func isGeneric(s *subject, c *Context) bool {
	if _, ok := mentionsAny(s.title, s.titleTokens, c.vocab.ActionVerbs); ok {
		return false
	}
	if len(strings.Fields(s.title)) <= 4 {
		return true
	}
	// Titles naming nothing but the component itself.
	for kw := range keywords.Extract(s.title) {
		if !c.ComponentWords.Has(kw) {
			return false
		}
	}
	return true
}

func directReference(t tally, s *subject, c *Context) tally {
	if c.TicketID != "" && strings.Contains(s.ref, c.TicketID) {
		return t.add(pointsDirectReference, "references ticket %s", strings.ToUpper(c.TicketID))
	}
	return t
}

func folderTags(t tally, s *subject, c *Context) tally {
	for _, tt := range c.tags {
		i := folderWith(s.folders, tt.terms...)
		if i < 0 {
			continue
		}
		t = t.add(pointsFolderTag, "section folder %q matches component tag %q", s.folders[i], tt.tag)
		t.componentHit = true
		if i >= 1 {
			t.deepComponent = true
		}
	}
	return t
}

func folderAreas(t tally, s *subject, c *Context) tally {
	for _, area := range c.Areas.Sorted() {
		i := folderWith(s.folders, area)
		if i < 0 {
			continue
		}
		t = t.add(pointsFolderArea, "section folder %q matches changed area %q", s.folders[i], area)
		if i >= 1 {
			t.deepArea = true
		}
	}
	return t
}

func folderStems(t tally, s *subject, c *Context) tally {
	for _, stem := range c.Stems {
		if i := folderWith(s.folders, stem); i >= 0 {
			t = t.add(pointsFolderStem, "section folder %q matches changed file %q", s.folders[i], stem)
		}
	}
	return t
}

func folderKeywords(t tally, s *subject, c *Context) tally {
	for _, kw := range c.Keywords.Sorted() {
		if i := folderWith(s.folders, kw); i >= 0 {
			t = t.add(pointsFolderKeyword, "section folder %q matches keyword %q", s.folders[i], kw)
		}
	}
	return t
}

func titleAreas(t tally, s *subject, c *Context) tally {
	for _, area := range c.Areas.Sorted() {
		if mentions(s.title, s.titleTokens, area) {
			t = t.add(pointsTitleArea, "title mentions changed area %q", area)
		}
	}
	return t
}

func titleComponentWords(t tally, s *subject, c *Context) tally {
	for _, w := range c.ComponentWords.Sorted() {
		if strings.Contains(s.title, w) {
			t = t.add(pointsTitleComponent, "title mentions component %q", w)
			t.componentHit = true
		}
	}
	return t
}

func titleKeywords(t tally, s *subject, c *Context) tally {
	for _, kw := range c.Keywords.Sorted() {
		if mentions(s.title, s.titleTokens, kw) {
			t = t.add(pointsTitleKeyword, "title mentions keyword %q", kw)
			t.titleKeywords = copySet(t.titleKeywords)
			t.titleKeywords.Add(kw)
		}
	}
	return t
}

func titleStems(t tally, s *subject, c *Context) tally {
	for _, stem := range c.Stems {
		if strings.Contains(s.title, stem) {
			return t.add(pointsTitleStem, "title mentions changed file %q", stem)
		}
	}
	return t
}

func sharedPatterns(t tally, s *subject, c *Context) tally {
	text := s.title + " " + s.fields
	tokens := copySet(s.titleTokens)
	tokens.Union(s.fieldTokens)
	for _, w := range c.vocab.APIPatterns {
		if c.apiPathWords.Has(w) && tokens.Has(w) {
			return t.add(pointsPattern, "API pattern %q shared with changed code", w)
		}
	}
	for _, w := range c.vocab.UIPatterns {
		if c.uiPathWords.Has(w) && mentions(text, tokens, w) {
			return t.add(pointsPattern, "UI pattern %q shared with changed code", w)
		}
	}
	return t
}

func criticalPath(t tally, s *subject, c *Context) tally {
	marker, critical := mentionsAny(s.title, s.titleTokens, c.vocab.CriticalMarkers)
	if !critical && s.priority > 0 && s.priority <= 2 {
		critical = true
		marker = fmt.Sprintf("priority %d", s.priority)
	}
	if !critical {
		return t
	}
	if c.SharedTouched {
		return t.add(pointsCriticalShared, "critical test (%s) and shared code changed", marker)
	}
	return t.add(pointsCritical, "critical test (%s)", marker)
}

func fieldKeywords(t tally, s *subject, c *Context) tally {
	for _, kw := range c.Keywords.Sorted() {
		if t.titleKeywords.Has(kw) {
			continue
		}
		if mentions(s.fields, s.fieldTokens, kw) {
			t = t.add(pointsFieldKeyword, "test fields mention keyword %q", kw)
		}
	}
	return t
}

func prTitleTerms(t tally, s *subject, c *Context) tally {
	points := 0
	var matched []string
	for _, w := range c.UIElements {
		if mentions(s.title, s.titleTokens, w) {
			points += pointsPRUIElement
			matched = append(matched, w)
		}
	}
	for _, w := range c.Behaviors {
		if mentions(s.title, s.titleTokens, w) {
			points += pointsPRBehavior
			matched = append(matched, w)
		}
	}
	if len(matched) == 0 {
		return t
	}
	if points > capPRTerms {
		points = capPRTerms
	}
	t = t.add(points, "title shares change terms %s", strings.Join(matched, ", "))
	if len(matched) >= 2 {
		t = t.add(pointsPRTermsBonus, "title matches %d change terms", len(matched))
	}
	return t
}

func bugFixNegative(t tally, s *subject, c *Context) tally {
	if !c.BugFix {
		return t
	}
	if term, ok := mentionsAny(s.title, s.titleTokens, c.vocab.NegativeTerms); ok {
		return t.add(pointsBugFixNegative, "bug fix and negative scenario %q", term)
	}
	return t
}

func bugFixRegression(t tally, s *subject, c *Context) tally {
	if c.BugFix && t.componentHit && strings.Contains(s.title, "regression") {
		return t.add(pointsBugFixRegression, "bug fix and component regression test")
	}
	return t
}

func changeShape(t tally, s *subject, c *Context) tally {
	switch c.Shape {
	case ShapeUI:
		if term, ok := mentionsAny(s.title, s.titleTokens, c.vocab.UITestTerms); ok {
			return t.add(pointsShapeUI, "UI-only change and UI test (%s)", term)
		}
	case ShapeLogic:
		if term, ok := mentionsAny(s.title, s.titleTokens, c.vocab.LogicTestTerms); ok {
			return t.add(pointsShapeLogic, "logic-only change and logic test (%s)", term)
		}
	case ShapeMixed:
		if term, ok := mentionsAny(s.title, s.titleTokens, c.vocab.IntegrationTestTerms); ok {
			return t.add(pointsShapeIntegration, "mixed change and integration test (%s)", term)
		}
	}
	return t
}

func sectionDepth(t tally, s *subject, c *Context) tally {
	if s.depth < 2 {
		return t
	}
	switch {
	case t.deepComponent:
		return t.add(pointsDeepComponent, "component match %d folders deep", s.depth)
	case t.deepArea:
		return t.add(pointsDeepArea, "changed-area match %d folders deep", s.depth)
	}
	return t
}

func shallowGeneric(t tally, s *subject, c *Context) tally {
	if s.depth == 1 && s.generic {
		return t.add(penaltyShallowGeneric, "generic test in top-level section")
	}
	return t
}

func genericPenalty(t tally, s *subject, c *Context) tally {
	if s.generic && t.points < genericPenaltyThreshold {
		return t.add(penaltyGeneric, "generic test with weak match")
	}
	return t
}

func copySet(s keywords.Set) keywords.Set {
	out := make(keywords.Set, len(s))
	out.Union(s)
	return out
}
