package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleTurn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleHit = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	styleOutcome = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleLane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(12).
			Align(lipgloss.Center)

	styleMyLane = styleLane.
			BorderForeground(lipgloss.Color("34"))

	styleEnemyLane = styleLane.
			BorderForeground(lipgloss.Color("160"))

	styleHand = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindTurn
	kindHit
	kindOutcome
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case line == "Your turn." || line == "Opponent's turn.":
		return kindTurn
	case line == "You win!" || line == "You lose.":
		return kindOutcome
	case strings.Contains(line, " is hit!"), strings.HasPrefix(line, "You are hit!"),
		strings.HasSuffix(line, " is destroyed."):
		return kindHit
	case strings.HasPrefix(line, "No "),
		strings.HasPrefix(line, "Unknown command"),
		strings.HasPrefix(line, "Lane must"),
		strings.HasPrefix(line, "Your hand is empty"),
		strings.HasPrefix(line, "It's not your turn"):
		return kindError
	default:
		return kindNarration
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindTurn:
		return styleTurn.Render(line)
	case kindHit:
		return styleHit.Render(line)
	case kindOutcome:
		return styleOutcome.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
