package scoring

import (
	"strings"

	"github.com/sprite-ai/testscope/internal/component"
	"github.com/sprite-ai/testscope/internal/keywords"
	"github.com/sprite-ai/testscope/internal/model"
)

// Shape describes which kinds of files a change touches.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeUI
	ShapeLogic
	ShapeMixed
)

func (s Shape) String() string {
	switch s {
	case ShapeUI:
		return "ui"
	case ShapeLogic:
		return "logic"
	case ShapeMixed:
		return "mixed"
	default:
		return "none"
	}
}

type tagTerms struct {
	tag   string
	terms []string
}

// Context is everything the scorer knows about one change. Build it once per
// analysis with NewContext and share it across every test case.
type Context struct {
	TicketID       string
	ComponentWords keywords.Set
	Areas          keywords.Set
	Stems          []string
	Keywords       keywords.Set
	UIElements     []string
	Behaviors      []string
	BugFix         bool
	SharedTouched  bool
	Shape          Shape
	Resolutions    []component.Resolution

	tags         []tagTerms
	apiPathWords keywords.Set
	uiPathWords  keywords.Set
	vocab        *Vocabulary
}

// Tags returns the resolved component tags in resolution order.
func (c *Context) Tags() []string {
	out := make([]string, 0, len(c.tags))
	for _, t := range c.tags {
		out = append(out, t.tag)
	}
	return out
}

// NewContext derives the scoring signals of a change from its ticket,
// changed files and the traceability table. A nil vocab means the defaults.
func NewContext(ticket model.Ticket, change model.ChangeRequest, table *component.Table, vocab *Vocabulary) *Context {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	c := &Context{
		TicketID:       strings.ToLower(strings.TrimSpace(ticket.ID)),
		ComponentWords: make(keywords.Set),
		Areas:          make(keywords.Set),
		Keywords:       make(keywords.Set),
		apiPathWords:   make(keywords.Set),
		uiPathWords:    make(keywords.Set),
		vocab:          vocab,
	}

	seenTag := make(map[string]bool)
	for _, label := range ticket.Components {
		res := component.Resolve(label, table)
		c.Resolutions = append(c.Resolutions, res)
		for _, tag := range res.Tags {
			if seenTag[tag] {
				continue
			}
			seenTag[tag] = true
			c.tags = append(c.tags, tagTerms{tag: tag, terms: component.SearchTerms([]string{tag})})
		}
		for _, p := range res.Parts {
			addComponentWord(c.ComponentWords, p)
		}
		if res.Matched {
			for _, w := range keywords.Tokens(res.MatchedName) {
				addComponentWord(c.ComponentWords, w)
			}
		}
	}

	c.Keywords.Union(keywords.Extract(ticket.Title))
	c.Keywords.Union(keywords.Extract(change.Title))

	var uiFiles, logicFiles int
	seenStem := make(map[string]bool)
	for _, f := range change.ChangedFiles {
		if f.Path == "" || f.Path == model.UnknownPath {
			continue
		}
		if vocab.IsSharedPath(f.Path) {
			c.SharedTouched = true
		}
		c.Areas.Union(keywords.ExtractFromDir(f.Path))

		stem := strings.ToLower(keywords.Stem(f.Path))
		if len(stem) > 3 && !keywords.IsStopWord(stem) && !seenStem[stem] {
			seenStem[stem] = true
			c.Stems = append(c.Stems, stem)
		}

		pathWords := keywords.NewSet(keywords.Tokens(f.Path)...)
		if vocab.IsUIFile(f.Path) {
			uiFiles++
			for _, w := range vocab.UIPatterns {
				if pathWords.Has(w) {
					c.uiPathWords.Add(w)
				}
			}
		} else {
			logicFiles++
			for _, w := range vocab.APIPatterns {
				if pathWords.Has(w) {
					c.apiPathWords.Add(w)
				}
			}
		}
	}
	switch {
	case uiFiles > 0 && logicFiles > 0:
		c.Shape = ShapeMixed
	case uiFiles > 0:
		c.Shape = ShapeUI
	case logicFiles > 0:
		c.Shape = ShapeLogic
	}

	prTokens := keywords.NewSet(keywords.Tokens(change.Title)...)
	for _, w := range vocab.UIElements {
		if prTokens.Has(w) {
			c.UIElements = append(c.UIElements, w)
		}
	}
	for _, w := range vocab.Behaviors {
		if prTokens.Has(w) {
			c.Behaviors = append(c.Behaviors, w)
		}
	}

	titleTokens := keywords.NewSet(keywords.Tokens(change.Title + " " + ticket.Title)...)
	for _, w := range vocab.BugFixTerms {
		if titleTokens.Has(w) {
			c.BugFix = true
			break
		}
	}
	return c
}

func addComponentWord(set keywords.Set, w string) {
	w = strings.ToLower(w)
	if len(w) > 3 && !keywords.IsStopWord(w) {
		set.Add(w)
	}
}
