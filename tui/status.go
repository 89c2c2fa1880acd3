package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/moduel/client"
	"github.com/nathoo/moduel/engine/state"
)

// turnLabel describes whose move it is.
func turnLabel(b client.Board) string {
	switch {
	case b.Over && b.Won:
		return "Victory"
	case b.Over:
		return "Defeat"
	case b.MyTurn:
		return fmt.Sprintf("Your turn (%d)", b.Budget)
	default:
		return "Opponent's turn"
	}
}

// renderStatusBar produces a full-width inverted status line showing both
// health totals, whose turn it is, and the turn count.
func (m Model) renderStatusBar() string {
	b := m.table.Board()

	left := fmt.Sprintf(" You %d | Enemy %d | %s", b.Health, b.EnemyHealth, turnLabel(b))
	right := fmt.Sprintf("Hand %d | T:%d ", len(b.Hand), b.Turn)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderBoard draws the enemy row above the player's row, lane 1 on the
// left, followed by the numbered hand.
func (m Model) renderBoard() string {
	b := m.table.Board()
	mine := b.Row * state.RowSize
	theirs := (1 - b.Row) * state.RowSize

	row := func(start int, style lipgloss.Style) string {
		cells := make([]string, state.RowSize)
		for i := range cells {
			label := fmt.Sprintf("%d: -", i+1)
			if cr := b.Lanes[start+i]; cr != nil {
				label = fmt.Sprintf("%d: %s", i+1, m.table.Name(cr.CardID))
			}
			cells[i] = style.Render(label)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}

	hand := make([]string, len(b.Hand))
	for i, c := range b.Hand {
		hand[i] = fmt.Sprintf("%d) %s", i+1, m.table.Name(c.CardID))
	}
	handLine := "Hand: (empty)"
	if len(hand) > 0 {
		handLine = "Hand: " + strings.Join(hand, "  ")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		row(theirs, styleEnemyLane),
		row(mine, styleMyLane),
		styleHand.Render(handLine),
	)
}
