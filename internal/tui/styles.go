package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorPurple    = lipgloss.Color("#bd93f9")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorOrange    = lipgloss.Color("#ffb86c")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Section list
	sectionListStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(0, 1)

	sectionItemStyle = lipgloss.NewStyle().
				Foreground(colorFg)

	sectionItemSelectedStyle = lipgloss.NewStyle().
					Foreground(colorFg).
					Background(colorHighlight).
					Bold(true)

	sectionDoneStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	// Case view
	caseViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	caseHeaderStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true).
			Padding(0, 0, 1, 0)

	caseSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Bold(true)

	reasonStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	// Scores
	scoreHighStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	scoreMediumStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	scoreLowStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	// Decisions
	keptStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	droppedStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	categoryStyle = lipgloss.NewStyle().
			Foreground(colorOrange).
			Background(colorBgLight).
			Bold(true)

	// Help
	helpHeaderStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true).
			Padding(0, 0, 1, 0)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
