package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/testscope/internal/model"
)

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return scoreHighStyle
	case score >= 40:
		return scoreMediumStyle
	default:
		return scoreLowStyle
	}
}

// decisionMark is the three-cell marker in front of a case.
func decisionMark(d model.Decision) string {
	switch d {
	case model.DecisionKept:
		return keptStyle.Render("[✓]")
	case model.DecisionDropped:
		return droppedStyle.Render("[✗]")
	default:
		return pendingStyle.Render("[ ]")
	}
}

// caseLine renders one case row: decision, score, id and title.
func caseLine(sc model.ScoredTestCase, d model.Decision, selected bool, width int) string {
	id := fmt.Sprintf("C%d", sc.Case.ID)
	// mark, score and id columns plus their gaps
	fixed := 3 + 1 + 3 + 2 + len(id) + 1
	title := truncate(sc.Case.Title, width-fixed)

	line := fmt.Sprintf("%s %s  %s %s",
		decisionMark(d),
		scoreStyle(sc.Score).Render(fmt.Sprintf("%3d", sc.Score)),
		id,
		title,
	)
	if selected {
		return caseSelectedStyle.Width(width).Render(line)
	}
	return line
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}
