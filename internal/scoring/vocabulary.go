package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary holds the product-specific word lists the scorer matches
// against. Every list is a tunable default, not a fixed contract.
type Vocabulary struct {
	UIElements           []string `yaml:"ui_elements" json:"ui_elements"`
	Behaviors            []string `yaml:"behaviors" json:"behaviors"`
	NegativeTerms        []string `yaml:"negative_terms" json:"negative_terms"`
	BugFixTerms          []string `yaml:"bug_fix_terms" json:"bug_fix_terms"`
	UITestTerms          []string `yaml:"ui_test_terms" json:"ui_test_terms"`
	LogicTestTerms       []string `yaml:"logic_test_terms" json:"logic_test_terms"`
	IntegrationTestTerms []string `yaml:"integration_test_terms" json:"integration_test_terms"`
	ActionVerbs          []string `yaml:"action_verbs" json:"action_verbs"`
	CriticalMarkers      []string `yaml:"critical_markers" json:"critical_markers"`
	SharedMarkers        []string `yaml:"shared_markers" json:"shared_markers"`
	APIPatterns          []string `yaml:"api_patterns" json:"api_patterns"`
	UIPatterns           []string `yaml:"ui_patterns" json:"ui_patterns"`
	UIExtensions         []string `yaml:"ui_extensions" json:"ui_extensions"`
	UIPathMarkers        []string `yaml:"ui_path_markers" json:"ui_path_markers"`
}

// DefaultVocabulary returns the built-in word lists.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{}
	if err := yaml.Unmarshal(defaultVocabularyYAML, v); err != nil {
		panic(fmt.Sprintf("load vocabulary.yaml: %v", err))
	}
	v.normalize()
	return v
}

// ParseVocabulary reads a YAML vocabulary. Lists missing from data keep
// their default values.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	v := DefaultVocabulary()
	if err := yaml.Unmarshal(data, v); err != nil {
		return nil, err
	}
	v.normalize()
	return v, nil
}

// LoadVocabulary reads a YAML vocabulary file over the defaults.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

func (v *Vocabulary) normalize() {
	for _, list := range []*[]string{
		&v.UIElements, &v.Behaviors, &v.NegativeTerms, &v.BugFixTerms,
		&v.UITestTerms, &v.LogicTestTerms, &v.IntegrationTestTerms,
		&v.ActionVerbs, &v.CriticalMarkers, &v.SharedMarkers,
		&v.APIPatterns, &v.UIPatterns, &v.UIExtensions, &v.UIPathMarkers,
	} {
		for i, w := range *list {
			(*list)[i] = strings.ToLower(strings.TrimSpace(w))
		}
	}
}

// IsUIFile reports whether a changed path looks like front-end code.
func (v *Vocabulary) IsUIFile(p string) bool {
	lower := strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	ext := path.Ext(lower)
	for _, e := range v.UIExtensions {
		if ext == e {
			return true
		}
	}
	for _, seg := range strings.Split(path.Dir(lower), "/") {
		for _, m := range v.UIPathMarkers {
			if seg == m {
				return true
			}
		}
	}
	return false
}

// IsSharedPath reports whether a changed path touches shared or core code.
func (v *Vocabulary) IsSharedPath(p string) bool {
	lower := strings.ToLower(p)
	for _, m := range v.SharedMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
