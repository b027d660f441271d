package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseVocabularyOverlaysDefaults(t *testing.T) {
	v, err := ParseVocabulary([]byte("critical_markers: [Smoke, Sanity]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"smoke", "sanity"}, v.CriticalMarkers); diff != "" {
		t.Errorf("critical markers (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultVocabulary().UIElements, v.UIElements); diff != "" {
		t.Errorf("untouched list changed (-want +got):\n%s", diff)
	}
}

func TestLoadVocabulary(t *testing.T) {
	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	p := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(p, []byte("shared_markers: [platform]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := LoadVocabulary(p)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsSharedPath("src/platform/auth.go") || v.IsSharedPath("src/shared/auth.go") {
		t.Errorf("shared markers not replaced: %v", v.SharedMarkers)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("ui_elements: {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadVocabulary(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestIsUIFile(t *testing.T) {
	v := DefaultVocabulary()
	tests := []struct {
		path string
		want bool
	}{
		{"src/forms/Submit.tsx", true},
		{"web/styles/site.SCSS", true},
		{"app/views/list.rb", true},
		{"internal/views.go", false},
		{"internal/billing/calc.go", false},
		{`src\components\Header.js`, true},
	}
	for _, tt := range tests {
		if got := v.IsUIFile(tt.path); got != tt.want {
			t.Errorf("IsUIFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
