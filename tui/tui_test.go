package tui

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nathoo/moduel/client"
	"github.com/nathoo/moduel/provider"
	"github.com/nathoo/moduel/types"
)

type sent struct {
	name string
	args []int
}

// recordingProvider captures commands instead of sending them.
type recordingProvider struct {
	h    provider.Handler
	sent []sent
}

func (p *recordingProvider) LocalID() string                     { return "alice" }
func (p *recordingProvider) OnCommandReceived(h provider.Handler) { p.h = h }
func (p *recordingProvider) SendCommand(name string, args ...int) {
	p.sent = append(p.sent, sent{name, args})
}

const self types.EntityID = 1

// newTestModel returns a model whose table has seen a standard setup: ten
// slots (ids 100-109), an Elf and an Imp in hand, and the first turn.
func newTestModel(t *testing.T) (Model, *recordingProvider) {
	t.Helper()
	p := &recordingProvider{}
	tbl := client.NewTable(self, 0,
		client.WithNames(map[string]string{"elf": "Elf", "imp": "Imp"}),
		client.WithLogger(zerolog.Nop()))
	m := New(p, tbl)

	var setup []duelMsg
	for i := 0; i < 10; i++ {
		setup = append(setup, duelMsg{types.MsgLinkSlot, []string{strconv.Itoa(i), strconv.Itoa(100 + i)}})
	}
	setup = append(setup,
		duelMsg{types.MsgAddHandCard, []string{"11", types.DisplayHandCard, "elf", "Soul"}},
		duelMsg{types.MsgAddHandCard, []string{"12", types.DisplayHandCard, "imp", "Fire"}},
		duelMsg{types.MsgTurnChanged, []string{"1", "1"}},
	)
	for _, msg := range setup {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m, p
}

func enter(t *testing.T, m Model, input string) Model {
	t.Helper()
	m.input.SetValue(input)
	next, _ := m.handleEnter()
	return next.(Model)
}

func logText(m Model) string {
	lines := make([]string, len(m.rawLines))
	for i, rl := range m.rawLines {
		lines[i] = rl.text
	}
	return strings.Join(lines, "\n")
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"You draw Elf.", kindNarration},
		{"Your Elf enters lane 2.", kindNarration},
		{"Your turn.", kindTurn},
		{"Opponent's turn.", kindTurn},
		{"You are hit! Health 17.", kindHit},
		{"Opponent is hit! Health 3.", kindHit},
		{"Enemy Wolf is destroyed.", kindHit},
		{"You win!", kindOutcome},
		{"You lose.", kindOutcome},
		{"[Trace output enabled.]", kindSystem},
		{"[trace] TurnChanged [1 1]", kindTrace},
		{"No card at hand position 9", kindError},
		{"Lane must be 1-5", kindError},
		{"It's not your turn.", kindError},
		{"", kindNarration},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"Your Red Dragon enters lane 3 and the crowd goes quiet.", 30,
			"Your Red Dragon enters lane 3\nand the crowd goes quiet."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("charge")
	h.Push("play elf on 2")
	h.Push("discard 1")

	for _, want := range []string{"discard 1", "play elf on 2", "charge", "charge"} {
		got, ok := h.Prev()
		if !ok || got != want {
			t.Errorf("Prev() = %q, %v; want %q", got, ok, want)
		}
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("charge")
	h.Push("revive")

	h.Prev() // "revive"
	h.Prev() // "charge"

	next, ok := h.Next()
	if !ok || next != "revive" {
		t.Errorf("expected 'revive', got %q (ok=%v)", next, ok)
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(2)
	h.Push("play 1")
	h.Push("play 2")
	h.Push("play 3") // "play 1" evicted

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	for _, want := range []string{"play 3", "play 2", "play 2"} {
		if got, _ := h.Prev(); got != want {
			t.Errorf("Prev() = %q, want %q", got, want)
		}
	}
}

func TestHistory_Normalizes(t *testing.T) {
	h := NewHistory(5)
	h.Push("  Play   Elf on 2 ")
	h.Push("play elf on 2")

	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
	if got, _ := h.Prev(); got != "play elf on 2" {
		t.Errorf("Prev() = %q", got)
	}
}

func TestHistory_RepeatMovesToNewest(t *testing.T) {
	h := NewHistory(5)
	h.Push("charge")
	h.Push("discard 1")
	h.Push("charge")

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	for _, want := range []string{"charge", "discard 1"} {
		if got, _ := h.Prev(); got != want {
			t.Errorf("Prev() = %q, want %q", got, want)
		}
	}
}

func TestHistory_SkipsRepeatAndExit(t *testing.T) {
	h := NewHistory(5)
	for _, in := range []string{"again", "G", "/quit", "/exit", "   "} {
		h.Push(in)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
	h.Push("/state")
	if got, _ := h.Prev(); got != "/state" {
		t.Errorf("meta commands other than exit are kept, got %q", got)
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("charge")
	h.Push("revive")

	h.Prev() // "revive"
	h.Prev() // "charge"
	h.ResetCursor()

	if prev, ok := h.Prev(); !ok || prev != "revive" {
		t.Errorf("expected 'revive' after reset, got %q", prev)
	}
}

func TestUpdate_DuelMessagesLogged(t *testing.T) {
	m, _ := newTestModel(t)

	log := logText(m)
	for _, want := range []string{"You draw Elf.", "You draw Imp.", "Your turn."} {
		if !strings.Contains(log, want) {
			t.Errorf("expected %q in log:\n%s", want, log)
		}
	}
	if strings.Contains(log, "LinkSlot") {
		t.Error("slot links are silent unless tracing")
	}
}

func TestUpdate_BadMessageLogged(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(duelMsg{"Teleport", nil})
	m = next.(Model)

	if !strings.Contains(logText(m), "[bad message:") {
		t.Error("expected malformed message to be reported")
	}
}

func TestUpdate_DuelMsgRearmsPump(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(duelMsg{types.MsgTurnChanged, []string{"2", "1"}})
	if cmd == nil {
		t.Fatal("expected a command waiting for the next message")
	}

	m.inbox <- duelMsg{types.MsgTurnChanged, []string{"1", "1"}}
	if got, ok := cmd().(duelMsg); !ok || got.name != types.MsgTurnChanged {
		t.Errorf("pump returned %#v", got)
	}
}

func TestProviderFeedsInbox(t *testing.T) {
	m, p := newTestModel(t)
	p.h(types.MsgKillCreature, []string{"7"})

	got := <-m.inbox
	if got.name != types.MsgKillCreature || got.args[0] != "7" {
		t.Errorf("inbox got %+v", got)
	}
}

func TestHandleEnter_SendsCommand(t *testing.T) {
	m, p := newTestModel(t)
	m = enter(t, m, "play imp on 4")

	if len(p.sent) != 1 {
		t.Fatalf("expected one command, got %+v", p.sent)
	}
	got := p.sent[0]
	if got.name != types.CmdPlayCard || got.args[0] != 12 || got.args[1] != 103 {
		t.Errorf("sent %+v, want PlayCard [12 103]", got)
	}
	if !strings.Contains(logText(m), "> play imp on 4") {
		t.Error("expected input echo")
	}
}

func TestHandleEnter_Errors(t *testing.T) {
	m, p := newTestModel(t)
	m = enter(t, m, "play 5")
	m = enter(t, m, "dance")

	log := logText(m)
	if !strings.Contains(log, "No card at hand position 5") || !strings.Contains(log, `Unknown command "dance"`) {
		t.Errorf("expected resolve errors in log:\n%s", log)
	}
	if len(p.sent) != 0 {
		t.Errorf("nothing should be sent, got %+v", p.sent)
	}

	next, _ := m.Update(duelMsg{types.MsgTurnChanged, []string{"2", "1"}})
	m = enter(t, next.(Model), "charge")
	if !strings.Contains(logText(m), "It's not your turn.") {
		t.Error("expected turn refusal")
	}
}

func TestHandleEnter_Again(t *testing.T) {
	m, p := newTestModel(t)
	m = enter(t, m, "again")
	if !strings.Contains(logText(m), "Nothing to repeat.") {
		t.Error("expected 'Nothing to repeat'")
	}

	m = enter(t, m, "charge")
	m = enter(t, m, "/help")
	enter(t, m, "g")
	if len(p.sent) != 2 || p.sent[1].name != types.CmdCharge {
		t.Errorf("g should repeat the last duel command, sent %+v", p.sent)
	}
}

func TestStatusBarAndBoard(t *testing.T) {
	m, _ := newTestModel(t)
	m.width = 80
	next, _ := m.Update(duelMsg{types.MsgSpawnCreature, []string{"20", types.DisplayCreature, "elf", "Soul", "101"}})
	m = next.(Model)

	bar := m.renderStatusBar()
	if !strings.Contains(bar, "You 20 | Enemy 20 | Your turn (1)") || !strings.Contains(bar, "Hand 2 | T:1") {
		t.Errorf("status bar = %q", bar)
	}

	board := m.renderBoard()
	for _, want := range []string{"2: Elf", "1: -", "Hand: 1) Elf  2) Imp"} {
		if !strings.Contains(board, want) {
			t.Errorf("expected %q in board:\n%s", want, board)
		}
	}
}

func TestTurnLabel(t *testing.T) {
	tests := []struct {
		b    client.Board
		want string
	}{
		{client.Board{MyTurn: true, Budget: 2}, "Your turn (2)"},
		{client.Board{}, "Opponent's turn"},
		{client.Board{Over: true, Won: true}, "Victory"},
		{client.Board{Over: true}, "Defeat"},
	}
	for _, tt := range tests {
		if got := turnLabel(tt.b); got != tt.want {
			t.Errorf("turnLabel(%+v) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestView_Layout(t *testing.T) {
	m, _ := newTestModel(t)
	if m.View() != "Loading..." {
		t.Error("expected loading view before the first resize")
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	m = next.(Model)
	if m.viewport.Height != 30-2-boardHeight {
		t.Errorf("viewport height = %d", m.viewport.Height)
	}
	if !strings.Contains(m.View(), "Your turn") {
		t.Error("expected log and status in view")
	}
}

func TestHandleMeta_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	for _, cmd := range []string{"/quit", "/exit"} {
		if _, quit := m.handleMeta(cmd); !quit {
			t.Errorf("expected quit=true for %s", cmd)
		}
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m, _ := newTestModel(t)

	output, quit := m.handleMeta("/help")
	if quit {
		t.Error("help should not quit")
	}
	joined := strings.Join(output, "\n")
	for _, expected := range []string{"/dump", "/state", "/quit", "play <card>", "discard"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Trace(t *testing.T) {
	m, _ := newTestModel(t)

	output, _ := m.handleMeta("/trace")
	if !m.trace || !strings.Contains(output[0], "enabled") {
		t.Errorf("expected trace enabled, got %v", output)
	}
	next, _ := m.Update(duelMsg{types.MsgLinkSlot, []string{"0", "100"}})
	if !strings.Contains(logText(next.(Model)), "[trace] LinkSlot [0 100]") {
		t.Error("expected raw message while tracing")
	}

	output, _ = m.handleMeta("/trace")
	if m.trace || !strings.Contains(output[0], "disabled") {
		t.Errorf("expected trace disabled, got %v", output)
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m, _ := newTestModel(t)

	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}

func TestHandleMeta_State(t *testing.T) {
	m, _ := newTestModel(t)

	joined := strings.Join(func() []string { out, _ := m.handleMeta("/state"); return out }(), "\n")
	for _, want := range []string{"Player: 1 (row 0)", "Turn: 1", "Links: 10 slots, 2 cards, 0 creatures", "Hand 1: #11 elf (Soul)"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in state output:\n%s", want, joined)
		}
	}
}

func TestHandleMeta_Dump(t *testing.T) {
	m, _ := newTestModel(t)
	out, _ := m.handleMeta("/dump")
	if !strings.Contains(out[0], "No transcript") {
		t.Errorf("got %v", out)
	}

	m.dump = func() ([]byte, error) { return []byte("{\n}"), nil }
	out, _ = m.handleMeta("/dump")
	if strings.Join(out, "|") != "{|}" {
		t.Errorf("got %v", out)
	}

	path := filepath.Join(t.TempDir(), "duel.json")
	out, _ = m.handleMeta("/dump " + path)
	if !strings.Contains(out[0], "Transcript written") {
		t.Errorf("got %v", out)
	}
	if data, err := os.ReadFile(path); err != nil || string(data) != "{\n}" {
		t.Errorf("file = %q, %v", data, err)
	}
}
