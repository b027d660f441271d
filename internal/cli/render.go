package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/model"
)

var (
	riskStyles = map[model.RiskLevel]lipgloss.Style{
		model.RiskLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b")),
		model.RiskMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#f1fa8c")),
		model.RiskHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")).Bold(true),
	}
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#bd93f9")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd"))
	reasonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))
)

// painter applies styles only when color output was asked for.
type painter bool

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p {
		return text
	}
	return s.Render(text)
}

func renderReport(w io.Writer, r *analysis.Report, format string, color bool) error {
	switch format {
	case "text", "":
		return outputText(w, r, painter(color))
	case "json":
		return outputJSON(w, r, color)
	case "markdown":
		return outputMarkdown(w, r)
	case "html":
		return outputHTML(w, r)
	default:
		return fmt.Errorf("unknown format %q (want text, json, markdown or html)", format)
	}
}

func changeLine(c model.ChangeRequest) string {
	ref := c.Ref
	if ref == "" {
		ref = "local change"
	}
	added, removed := 0, 0
	for _, f := range c.ChangedFiles {
		added += f.LinesAdded
		removed += f.LinesRemoved
	}
	return fmt.Sprintf("%s %q (%d file(s), +%d -%d)", ref, c.Title, len(c.ChangedFiles), added, removed)
}

func outputText(w io.Writer, r *analysis.Report, p painter) error {
	c := r.Classification
	fmt.Fprintln(w, p.paint(headingStyle, fmt.Sprintf("%s: %s", r.Ticket.ID, r.Ticket.Title)))
	fmt.Fprintf(w, "Change: %s\n", changeLine(r.Change))
	fmt.Fprintf(w, "Category: %s  Risk: %s  Size: %s\n",
		c.Category,
		p.paint(riskStyles[c.RiskLevel], fmt.Sprintf("%d (%s)", c.RiskScore, c.RiskLevel)),
		r.Size.Name)
	fmt.Fprintf(w, "Estimated effort: %.1fh across %d section(s)\n\n", r.EstimatedHours, r.ImpactedAreas)

	if len(r.Recommended) == 0 {
		fmt.Fprintln(w, "No matching test cases.")
		return nil
	}

	fmt.Fprintf(w, "Recommended (%d of %d):\n", len(r.Recommended), len(r.Impact.AllCases))
	for _, g := range r.Sections() {
		fmt.Fprintf(w, "  %s\n", p.paint(sectionStyle, g.Section))
		for _, sc := range g.Cases {
			fmt.Fprintf(w, "    %3d  C%d %s\n", sc.Score, sc.Case.ID, sc.Case.Title)
			for _, reason := range sc.Reasons {
				fmt.Fprintf(w, "         %s\n", p.paint(reasonStyle, "- "+reason))
			}
		}
	}
	if r.Truncated() {
		fmt.Fprintf(w, "\n%d more case(s) over the %s cap; use --all to list them.\n",
			len(r.Impact.AllCases)-len(r.Recommended), c.Category)
	}
	return nil
}

func outputJSON(w io.Writer, v any, color bool) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if color {
		return highlightJSON(w, buf.String())
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func outputMarkdown(w io.Writer, r *analysis.Report) error {
	c := r.Classification
	fmt.Fprintf(w, "## Test scope for %s\n\n", r.Ticket.ID)
	fmt.Fprintf(w, "**%s**\n\n", r.Ticket.Title)
	fmt.Fprintf(w, "**Change:** %s\n\n", changeLine(r.Change))
	fmt.Fprintf(w, "**Category:** %s | **Risk:** %d (%s) | **Size:** %s | **Effort:** %.1fh\n\n",
		c.Category, c.RiskScore, c.RiskLevel, r.Size.Name, r.EstimatedHours)

	if len(r.Recommended) == 0 {
		fmt.Fprintln(w, "No matching test cases.")
		return nil
	}

	fmt.Fprintln(w, "| Score | Case | Section | Why |")
	fmt.Fprintln(w, "|------:|------|---------|-----|")
	for _, sc := range r.Recommended {
		fmt.Fprintf(w, "| %d | C%d %s | %s | %s |\n",
			sc.Score, sc.Case.ID, mdEscape(sc.Case.Title), mdEscape(sc.Case.Section()), mdEscape(strings.Join(sc.Reasons, "; ")))
	}
	if r.Truncated() {
		fmt.Fprintf(w, "\n_%d more case(s) above the %s cap._\n", len(r.Impact.AllCases)-len(r.Recommended), c.Category)
	}
	return nil
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func outputHTML(w io.Writer, r *analysis.Report) error {
	c := r.Classification

	fmt.Fprint(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>testscope report</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; background: #282a36; color: #f8f8f2; }
  h1 { color: #bd93f9; }
  h2 { color: #8be9fd; font-size: 1.1em; margin-top: 28px; }
  .summary { background: #343746; padding: 16px; border-radius: 8px; margin-bottom: 24px; }
  .summary span { margin-right: 24px; }
  .risk-high { color: #ff5555; font-weight: bold; }
  .risk-medium { color: #f1fa8c; }
  .risk-low { color: #50fa7b; }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; padding: 8px 12px; background: #44475a; color: #f8f8f2; }
  td { padding: 8px 12px; border-bottom: 1px solid #44475a; vertical-align: top; }
  tr:hover { background: #343746; }
  .score { color: #bd93f9; font-weight: bold; }
  .reasons { color: #6272a4; font-size: 0.85em; margin: 4px 0 0; padding-left: 18px; }
  .empty { color: #50fa7b; font-size: 1.2em; }
  footer { margin-top: 32px; color: #6272a4; font-size: 0.85em; }
</style>
</head>
<body>
`)
	fmt.Fprintf(w, "<h1>%s: %s</h1>\n", html.EscapeString(r.Ticket.ID), html.EscapeString(r.Ticket.Title))
	fmt.Fprintf(w, `<div class="summary">
  <span>%s</span>
  <span>Category: <strong>%s</strong></span>
  <span>Risk: <span class="risk-%s">%d (%s)</span></span>
  <span>Size: %s</span>
  <span>Effort: <strong>%.1fh</strong></span>
</div>
`, html.EscapeString(changeLine(r.Change)), c.Category, c.RiskLevel, c.RiskScore, c.RiskLevel, r.Size.Name, r.EstimatedHours)

	if len(r.Recommended) == 0 {
		fmt.Fprintln(w, `<p class="empty">No matching test cases.</p>`)
	}
	for _, g := range r.Sections() {
		fmt.Fprintf(w, "<h2>%s</h2>\n<table>\n<thead><tr><th>Score</th><th>Case</th></tr></thead>\n<tbody>\n", html.EscapeString(g.Section))
		for _, sc := range g.Cases {
			fmt.Fprintf(w, `<tr><td class="score">%d</td><td>C%d %s<ul class="reasons">`, sc.Score, sc.Case.ID, html.EscapeString(sc.Case.Title))
			for _, reason := range sc.Reasons {
				fmt.Fprintf(w, "<li>%s</li>", html.EscapeString(reason))
			}
			fmt.Fprintln(w, "</ul></td></tr>")
		}
		fmt.Fprintln(w, "</tbody></table>")
	}

	fmt.Fprintf(w, "<footer>Report %s generated by <strong>testscope</strong></footer>\n</body>\n</html>\n", r.ID)
	return nil
}
