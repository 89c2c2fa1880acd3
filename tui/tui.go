package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/moduel/client"
	"github.com/nathoo/moduel/engine/parser"
	"github.com/nathoo/moduel/provider"
)

// boardHeight is two bordered lane rows plus the hand line.
const boardHeight = 7

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for one seat.
type Model struct {
	provider provider.GameProvider
	table    *client.Table
	inbox    chan duelMsg

	// dump, when set, returns the duel transcript for /dump.
	dump func() ([]byte, error)

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated log lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
}

// duelMsg carries one duel message from the provider into the Update loop.
type duelMsg struct {
	name string
	args []string
}

// gameOutputMsg carries local output (echoes, errors, meta commands).
type gameOutputMsg struct {
	input    string   // echoed player input
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// Option configures a Model.
type Option func(*Model)

// WithDump enables /dump using f.
func WithDump(f func() ([]byte, error)) Option {
	return func(m *Model) { m.dump = f }
}

// New creates a TUI model for the seat behind p and subscribes to its
// messages. Create it before the duel starts so setup messages are kept.
func New(p provider.GameProvider, t *client.Table, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		provider: p,
		table:    t,
		inbox:    make(chan duelMsg, 1024),
		input:    ti,
		history:  NewHistory(100),
	}
	for _, opt := range opts {
		opt(&m)
	}
	inbox := m.inbox
	p.OnCommandReceived(func(name string, args []string) {
		inbox <- duelMsg{name: name, args: args}
	})
	return m
}

// Run starts the Bubble Tea program.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init starts the cursor blink and the message pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForMessage())
}

// waitForMessage blocks until the provider delivers the next message.
func (m Model) waitForMessage() tea.Cmd {
	inbox := m.inbox
	return func() tea.Msg {
		return <-inbox
	}
}

// Update handles messages (key presses, window resize, duel messages).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 - boardHeight // status bar + input line + board
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case duelMsg:
		m = m.applyDuelMsg(msg)
		return m, m.waitForMessage()

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// applyDuelMsg updates the table and logs the description, if any.
func (m Model) applyDuelMsg(msg duelMsg) Model {
	var lines []string
	if m.trace {
		lines = append(lines, fmt.Sprintf("[trace] %s %v", msg.name, msg.args))
	}
	line, err := m.table.Apply(msg.name, msg.args)
	switch {
	case err != nil:
		lines = append(lines, fmt.Sprintf("[bad message: %v]", err))
	case line != "":
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return m
	}
	for _, l := range lines {
		m.rawLines = append(m.rawLines, rawLine{text: l, kind: classifyLine(l)})
	}
	m.refreshViewport()
	return m
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Duel command. The outcome arrives later as duel messages.
	m = m.appendOutput(gameOutputMsg{input: input, lines: m.submit(input)})
	return m, nil
}

// submit resolves input against the table and sends it. It returns any
// lines to show immediately.
func (m Model) submit(input string) []string {
	b := m.table.Board()
	if b.Over {
		return []string{"The duel is over."}
	}
	if !b.MyTurn {
		return []string{"It's not your turn."}
	}
	name, args, err := m.table.Resolve(parser.Parse(input))
	if err != nil {
		msg := err.Error()
		return []string{strings.ToUpper(msg[:1]) + msg[1:]}
	}
	m.provider.SendCommand(name, args...)
	return nil
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: log + board + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderBoard() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/dump":
		return m.cmdDump(arg), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdDump(path string) []string {
	if m.dump == nil {
		return []string{"No transcript on this side of the table."}
	}
	data, err := m.dump()
	if err != nil {
		return []string{fmt.Sprintf("Dump failed: %v", err)}
	}
	if path == "" {
		return strings.Split(string(data), "\n")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Dump failed: %v", err)}
	}
	return []string{fmt.Sprintf("Transcript written to %s.", path)}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /quit         - Leave the duel",
		"  /help         - Show this help",
		"  /state        - Show ids and link counts",
		"  /dump [file]  - Print or save the duel transcript",
		"  /trace        - Toggle raw message output",
		"",
		"Duel commands:",
		"  play <card> [on <lane>] (p)  - Summon a card; card is a hand position or name",
		"  charge (c, pass)             - Spend an action doing nothing",
		"  revive (r)                   - Return your grave to your hand",
		"  discard <card> (d)           - Throw a card away",
		"  again (g)                    - Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	b := m.table.Board()
	slots, cards, creatures := m.table.Links()
	output := []string{
		fmt.Sprintf("Player: %d (row %d)", m.table.Self, b.Row),
		fmt.Sprintf("Turn: %d", b.Turn),
		fmt.Sprintf("Links: %d slots, %d cards, %d creatures", slots, cards, creatures),
	}
	for i, c := range b.Hand {
		output = append(output, fmt.Sprintf("Hand %d: #%d %s (%s)", i+1, c.ID, c.CardID, c.Mana))
	}
	return output
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
