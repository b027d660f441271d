// Package keywords turns free text and file paths into normalized token sets.
package keywords

import (
	"path"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the shortest token kept by Extract.
const MinLength = 4

// stopWords are dropped from every token set: English function words and
// path segments that say nothing about a functional area.
var stopWords = map[string]bool{
	// English
	"about": true, "above": true, "after": true, "again": true, "also": true,
	"been": true, "before": true, "being": true, "below": true, "between": true,
	"both": true, "could": true, "does": true, "doing": true, "down": true,
	"during": true, "each": true, "from": true, "further": true, "have": true,
	"having": true, "here": true, "into": true, "just": true, "more": true,
	"most": true, "must": true, "only": true, "other": true, "over": true,
	"same": true, "should": true, "some": true, "such": true, "than": true,
	"that": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true, "through": true,
	"under": true, "until": true, "upon": true, "very": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"will": true, "with": true, "within": true, "without": true, "would": true,
	"your": true, "yours": true,
	// generic path segments
	"src": true, "app": true, "common": true, "components": true,
	"services": true, "models": true, "views": true, "controllers": true,
	"utils": true, "lib": true, "core": true, "test": true, "tests": true,
	"dist": true, "index": true, "main": true, "internal": true, "pkg": true,
}

// IsStopWord reports whether w is dropped by Extract.
func IsStopWord(w string) bool {
	return stopWords[strings.ToLower(w)]
}

// Set is an unordered collection of tokens.
type Set map[string]struct{}

// NewSet builds a set from words as given.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether w is in the set.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Add inserts w.
func (s Set) Add(w string) {
	s[w] = struct{}{}
}

// Union adds every member of o to s.
func (s Set) Union(o Set) {
	for w := range o {
		s[w] = struct{}{}
	}
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Extract returns the significant lowercase tokens of text.
func Extract(text string) Set {
	out := make(Set)
	for _, tok := range Tokens(text) {
		if utf8.RuneCountInString(tok) < MinLength || stopWords[tok] {
			continue
		}
		out.Add(tok)
	}
	return out
}

// ExtractFromPath returns the significant tokens of every segment of a file
// path, with the extension of the last segment removed.
func ExtractFromPath(p string) Set {
	p = strings.ReplaceAll(p, "\\", "/")
	dir, file := path.Split(p)
	out := Extract(strings.ReplaceAll(dir, "/", " "))
	out.Union(ExtractFromFilename(file))
	return out
}

// ExtractFromDir returns the significant tokens of the directory part of a
// path only.
func ExtractFromDir(p string) Set {
	p = strings.ReplaceAll(p, "\\", "/")
	dir, _ := path.Split(p)
	return Extract(strings.ReplaceAll(dir, "/", " "))
}

// ExtractFromFilename returns the significant tokens of a path's base name,
// extension removed.
func ExtractFromFilename(p string) Set {
	return Extract(Stem(p))
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// Tokens splits text into lowercase alphanumeric runs, breaking on
// whitespace, punctuation, hyphens, underscores and lower-to-upper case
// transitions. Apostrophes are dropped rather than split on. No length or
// stop-word filtering is applied.
func Tokens(text string) []string {
	var (
		out  []string
		cur  strings.Builder
		prev rune
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && unicode.IsLower(prev) {
				flush()
			}
			cur.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
		prev = r
	}
	flush()
	return out
}

// SplitCamel breaks a single word at lower-to-upper transitions and
// lowercases the parts. Words without an internal capital come back whole.
func SplitCamel(word string) []string {
	var (
		out  []string
		cur  strings.Builder
		prev rune
	)
	for _, r := range word {
		if unicode.IsUpper(r) && unicode.IsLower(prev) && cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
		cur.WriteRune(unicode.ToLower(r))
		prev = r
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// HasInnerUpper reports whether word has a capital letter after its first
// rune.
func HasInnerUpper(word string) bool {
	for i, r := range word {
		if i > 0 && unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// Join renders a set as space-separated text in lexical order.
func Join(s Set) string {
	return strings.Join(s.Sorted(), " ")
}
