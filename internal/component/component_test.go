package component

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testTable() *Table {
	return &Table{Entries: []Entry{
		{Name: "Webform", Tags: []string{"webform", "form-submission"}},
		{Name: "PHS Templates", Tags: []string{"phs", "template"}},
		{Name: "Dashboard", Tags: []string{"dashboard", "widget"}},
		{Name: "Forms", Tags: []string{"forms"}},
	}}
}

func TestResolve(t *testing.T) {
	table := testTable()

	tests := []struct {
		name        string
		label       string
		wantMatched string
		wantTags    []string
	}{
		{"exact", "Webform", "Webform", []string{"webform", "form-submission"}},
		{"role prefix stripped", "Applicant-Webform", "Webform", []string{"webform", "form-submission"}},
		{"camel case expanded", "phsTemplates", "PHS Templates", []string{"phs", "template"}},
		{"part contains name word", "InvestigatorDashboards", "Dashboard", []string{"dashboard", "widget"}},
		{"name word contains part", "dash_board", "Dashboard", []string{"dashboard", "widget"}},
		{"first entry wins", "webform forms", "Webform", []string{"webform", "form-submission"}},
		{"no match falls back to parts", "Payments-Refunds", "", []string{"payments", "refunds"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.label, table)
			if res.MatchedName != tt.wantMatched {
				t.Errorf("MatchedName = %q, want %q", res.MatchedName, tt.wantMatched)
			}
			if res.Matched != (tt.wantMatched != "") {
				t.Errorf("Matched = %v", res.Matched)
			}
			if diff := cmp.Diff(tt.wantTags, res.Tags); diff != "" {
				t.Errorf("tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveNeverEmptyForNonEmptyLabel(t *testing.T) {
	for _, label := range []string{"Admin", "Reviewer-Applicant", "x", "Unmapped Area"} {
		res := Resolve(label, &Table{})
		if len(res.Tags) == 0 {
			t.Errorf("Resolve(%q) returned no tags", label)
		}
	}

	res := Resolve("   ", testTable())
	if len(res.Tags) != 0 {
		t.Errorf("blank label should resolve to no tags, got %v", res.Tags)
	}
}

func TestRolesNeverMatch(t *testing.T) {
	table := &Table{Entries: []Entry{{Name: "Admin Console", Tags: []string{"console"}}}}
	res := Resolve("Admin-Reports", table)
	if res.Matched {
		t.Errorf("role token produced a match against %q", res.MatchedName)
	}
	if diff := cmp.Diff([]string{"reports"}, res.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	table = &Table{Entries: []Entry{{Name: "Review", Tags: []string{"review", "approval"}}}}
	tests := []struct {
		label string
		want  []string
	}{
		{"ReviewerPortal", []string{"portal"}},
		{"Reviewer-Portal", []string{"portal"}},
		{"AdminPortal", []string{"portal"}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			res := Resolve(tt.label, table)
			if res.Matched {
				t.Errorf("role word matched %q via %q", res.MatchedName, res.MatchedPart)
			}
			if diff := cmp.Diff(tt.want, res.Tags); diff != "" {
				t.Errorf("tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoleStrippingOrderIndependent(t *testing.T) {
	m := NewMatcher(DefaultRoles)
	table := testTable()
	labels := []string{
		"Applicant-Webform",
		"Investigator_Dashboard",
		"Reviewer phsTemplates",
		"admin-Payments-Refunds",
	}
	for _, label := range labels {
		after := m.Resolve(label, table)
		before := m.Resolve(m.StripRoles(label), table)
		if diff := cmp.Diff(before.Tags, after.Tags); diff != "" {
			t.Errorf("%q: tags depend on strip order (-before +after):\n%s", label, diff)
		}
	}
}

func TestParts(t *testing.T) {
	m := NewMatcher(DefaultRoles)
	got := m.Parts("Applicant-phsTemplates_Review")
	want := []string{"phstemplates", "phs", "templates", "review"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parts mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchTerms(t *testing.T) {
	got := SearchTerms([]string{"Webform", "form-submission", "webform"})
	want := []string{"webform", "form-submission", "form submission", "formsubmission"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchTerms mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLKeepsOrder(t *testing.T) {
	data := []byte(`
Zeta: [z]
Alpha: [a, b]
Mid:
  - m
`)
	table, err := ParseYAML(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Zeta", "Alpha", "Mid"}, table.Names()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLList(t *testing.T) {
	data := []byte(`
components:
  - name: Webform
    tags: [webform]
  - name: Search
    tags: [search, filter]
`)
	table, err := ParseYAML(data)
	if err != nil {
		t.Fatal(err)
	}
	e, ok := table.Lookup("search")
	if !ok {
		t.Fatal("expected Search entry")
	}
	if diff := cmp.Diff([]string{"search", "filter"}, e.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"table.toml": "[[component]]\nname = \"Webform\"\ntags = [\"webform\"]\n\n[[component]]\nname = \"Search\"\ntags = [\"search\"]\n",
		"table.json": `[{"name":"Webform","tags":["webform"]},{"name":"Search","tags":["search"]}]`,
		"table.yml":  "Webform: [webform]\nSearch: [search]\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		table, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
		if diff := cmp.Diff([]string{"Webform", "Search"}, table.Names()); diff != "" {
			t.Errorf("%s: names mismatch (-want +got):\n%s", name, diff)
		}
	}

	if _, err := LoadFile(filepath.Join(dir, "table.ini")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestParseRejectsNamelessEntry(t *testing.T) {
	if _, err := ParseJSON([]byte(`[{"name":"","tags":["x"]}]`)); err == nil {
		t.Error("expected error for entry without name")
	}
}

func TestDefaultTable(t *testing.T) {
	table := Default()
	if len(table.Entries) == 0 {
		t.Fatal("default table is empty")
	}
	res := Resolve("Applicant-Webform", table)
	if res.MatchedName != "Webform" {
		t.Errorf("expected Webform, got %q", res.MatchedName)
	}
}
