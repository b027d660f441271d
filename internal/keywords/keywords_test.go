package keywords

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "title",
			text: "Fix webform submit button when required fields are empty",
			want: []string{"button", "empty", "fields", "required", "submit", "webform"},
		},
		{
			name: "camel case and separators",
			text: "phsTemplates upload_handler multi-step",
			want: []string{"handler", "multi", "step", "templates", "upload"},
		},
		{
			name: "punctuation stripped",
			text: "Login: can't (re)submit! Reviewer's dashboard.",
			want: []string{"cant", "dashboard", "login", "reviewers", "submit"},
		},
		{
			name: "stop words and short tokens",
			text: "this is a test with the core utils and src",
			want: []string{},
		},
		{
			name: "length counts characters",
			text: "été réseau",
			want: []string{"réseau"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text).Sorted()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestExtractFromPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"src/components/forms/WebformSubmit.tsx", []string{"forms", "submit", "webform"}},
		{"app/services/billing/invoice_service.py", []string{"billing", "invoice", "service"}},
		{`lib\core\Auth.go`, []string{"auth"}},
		{"README", []string{"readme"}},
	}
	for _, tt := range tests {
		got := ExtractFromPath(tt.path).Sorted()
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ExtractFromPath(%q) mismatch (-want +got):\n%s", tt.path, diff)
		}
	}
}

func TestExtractFromFilenameIgnoresDirectories(t *testing.T) {
	got := ExtractFromFilename("src/reporting/widgets/ChartLegend.vue").Sorted()
	want := []string{"chart", "legend"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIdempotent(t *testing.T) {
	inputs := []string{
		"Add new reportingWidget to Investigator-Dashboard",
		"src/components/applicant/PhsTemplates.tsx",
		"Quick fix for login; don't break SSO!!",
		"",
	}
	for _, in := range inputs {
		first := Extract(in)
		second := Extract(Join(first))
		if diff := cmp.Diff(first.Sorted(), second.Sorted()); diff != "" {
			t.Errorf("Extract not idempotent for %q (-first +second):\n%s", in, diff)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "Verify webform submit button disabled when required fields empty"
	want := Extract(text).Sorted()
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(want, Extract(text).Sorted()); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"src/forms/Webform.tsx":   "Webform",
		"styles/main.module.scss": "main",
		"Makefile":                "Makefile",
		"":                        "",
		"deeply/nested/.eslintrc": ".eslintrc",
	}
	for in, want := range tests {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitCamel(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"phsTemplates", []string{"phs", "templates"}},
		{"Webform", []string{"webform"}},
		{"adminPanelView", []string{"admin", "panel", "view"}},
		{"API", []string{"api"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitCamel(tt.in)); diff != "" {
			t.Errorf("SplitCamel(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
