// Package cli provides line-oriented terminal I/O and meta-command dispatch
// for one seat of a duel.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/nathoo/moduel/client"
	"github.com/nathoo/moduel/engine/parser"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/provider"
	"github.com/nathoo/moduel/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Provider  provider.GameProvider
	Table     *client.Table
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	// Dump, when set, returns the duel transcript for /dump.
	Dump func() ([]byte, error)

	mu      sync.Mutex // guards Out and Trace; messages arrive on other goroutines
	lastCmd string     // for "again"/"g" repeat
}

// New creates a CLI for the seat behind p and subscribes to its messages.
// Create it before the duel starts so the setup messages are shown.
func New(p provider.GameProvider, t *client.Table) *CLI {
	c := &CLI{
		Provider: p,
		Table:    t,
		In:       os.Stdin,
		Out:      os.Stdout,
	}
	p.OnCommandReceived(c.receive)
	return c
}

// receive applies a message to the table and prints its description.
func (c *CLI) receive(name string, args []string) {
	line, err := c.Table.Apply(name, args)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Trace {
		fmt.Fprintf(c.Out, "[trace] %s %v\n", name, args)
	}
	if err != nil {
		fmt.Fprintf(c.Out, "[bad message: %v]\n", err)
		return
	}
	if line != "" {
		fmt.Fprintln(c.Out, line)
	}
	if name == types.MsgEndGame {
		fmt.Fprintln(c.Out, "[Game over. Type /quit to leave.]")
	}
}

// Run loops: prompt, input, dispatch. It returns on /quit or end of input.
func (c *CLI) Run() {
	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.submit(input)
	}
}

func (c *CLI) submit(input string) {
	b := c.Table.Board()
	if b.Over {
		c.printLine("The duel is over.")
		return
	}
	if !b.MyTurn {
		c.printLine("It's not your turn.")
		return
	}
	name, args, err := c.Table.Resolve(parser.Parse(input))
	if err != nil {
		c.printLine(capitalize(err.Error()))
		return
	}
	c.Provider.SendCommand(name, args...)
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		for _, line := range Render(c.Table.Board(), c.Table.Name) {
			c.printLine(line)
		}

	case "/dump":
		c.cmdDump(arg)

	case "/trace":
		c.mu.Lock()
		c.Trace = !c.Trace
		on := c.Trace
		c.mu.Unlock()
		if on {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdDump(path string) {
	if c.Dump == nil {
		c.printSystem("No transcript on this side of the table.")
		return
	}
	data, err := c.Dump()
	if err != nil {
		c.printSystem(fmt.Sprintf("Dump failed: %v", err))
		return
	}
	if path == "" {
		c.printLine(string(data))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Dump failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Transcript written to %s.", path))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /quit         - Leave the duel",
		"  /help         - Show this help",
		"  /state        - Show the board",
		"  /dump [file]  - Print or save the duel transcript",
		"  /trace        - Toggle raw message output",
		"",
		"Duel commands:",
		"  play <card> [on <lane>] (p)  - Summon a card; card is a hand position or name",
		"  charge (c, pass)             - Spend an action doing nothing",
		"  revive (r)                   - Return your grave to your hand",
		"  discard <card> (d)           - Throw a card away",
		"  again (g)                    - Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// Render draws a board as plain text lines. Lanes are numbered 1 to 5 from
// the player's side; the enemy lane above each one is the lane it fights.
func Render(b client.Board, name func(cardID string) string) []string {
	status := "opponent's turn"
	switch {
	case b.Over && b.Won:
		status = "you won"
	case b.Over:
		status = "you lost"
	case b.MyTurn:
		status = fmt.Sprintf("your turn, %d action(s) left", b.Budget)
	}

	mine := b.Row * state.RowSize
	theirs := (1 - b.Row) * state.RowSize
	lanes := func(start int) string {
		cells := make([]string, state.RowSize)
		for i := range cells {
			cr := b.Lanes[start+i]
			if cr == nil {
				cells[i] = fmt.Sprintf("[%d] -", i+1)
				continue
			}
			cells[i] = fmt.Sprintf("[%d] %s", i+1, name(cr.CardID))
		}
		return strings.Join(cells, "  ")
	}

	hand := make([]string, len(b.Hand))
	for i, c := range b.Hand {
		hand[i] = fmt.Sprintf("%d) %s", i+1, name(c.CardID))
	}
	handLine := "Hand: (empty)"
	if len(hand) > 0 {
		handLine = "Hand: " + strings.Join(hand, "  ")
	}

	return []string{
		fmt.Sprintf("Turn %d, %s", b.Turn, status),
		fmt.Sprintf("You %d   Enemy %d", b.Health, b.EnemyHealth),
		"Enemy: " + lanes(theirs),
		"You:   " + lanes(mine),
		handLine,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (c *CLI) printLine(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
