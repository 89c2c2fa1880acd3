// Package client mirrors the duel from one player's seat. A Table consumes
// the message stream, links entity ids to local views, and turns typed
// intents (hand positions, lane numbers) back into commands with ids.
package client

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/moduel/engine/parser"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/linker"
	"github.com/nathoo/moduel/types"
)

// CardView is what a player knows about a card in their hand.
type CardView struct {
	ID      types.EntityID
	Display string
	CardID  string
	Mana    string
}

// CreatureView is a creature on the field.
type CreatureView struct {
	ID      types.EntityID
	Display string
	CardID  string
	Mana    string
	Slot    int
}

// Table is the client-side board. Safe for concurrent use: messages arrive
// on transport goroutines while the UI reads.
type Table struct {
	Self types.EntityID
	Row  int

	mu        sync.RWMutex
	names     map[string]string
	slots     *linker.Linker[int]
	cards     *linker.Linker[*CardView]
	creatures *linker.Linker[*CreatureView]
	hand      []*CardView
	lanes     [state.SlotCount]*CreatureView
	health    map[types.EntityID]int
	start     int
	opponent  types.EntityID
	turnOwner types.EntityID
	budget    int
	turn      int
	winner    types.EntityID
	log       zerolog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithNames supplies display names by content id.
func WithNames(names map[string]string) Option {
	return func(t *Table) { t.names = names }
}

// WithStartingHealth sets the health shown before any damage arrives.
func WithStartingHealth(n int) Option {
	return func(t *Table) { t.start = n }
}

// WithLogger sets the logger for malformed messages.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Table) { t.log = l }
}

// NewTable creates a table for player self seated on row (0 or 1).
func NewTable(self types.EntityID, row int, opts ...Option) *Table {
	t := &Table{
		Self:   self,
		Row:    row,
		names:  map[string]string{},
		health: map[types.EntityID]int{},
		start:  state.DefaultStartingHealth,
		log:    log.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("component", "table").Uint32("self", uint32(self)).Logger()
	t.slots = linker.NewWithLogger[int]("slots", t.log)
	t.cards = linker.NewWithLogger[*CardView]("cards", t.log)
	t.creatures = linker.NewWithLogger[*CreatureView]("creatures", t.log)
	return t
}

// Handle applies a message and discards the description. Its signature
// matches a provider's command handler.
func (t *Table) Handle(name string, args []string) {
	if _, err := t.Apply(name, args); err != nil {
		t.log.Warn().Err(err).Str("message", name).Strs("args", args).Msg("message ignored")
	}
}

// Apply updates the table from one message and returns a one-line
// description for display. Messages that name unknown ids are ignored.
func (t *Table) Apply(name string, args []string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch name {
	case types.MsgLinkSlot:
		if err := need(name, args, 2); err != nil {
			return "", err
		}
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 0 || index >= state.SlotCount {
			return "", eris.Errorf("%s: bad slot index %q", name, args[0])
		}
		id, err := parseID(args[1])
		if err != nil {
			return "", err
		}
		t.slots.Link(id, index)
		return "", nil

	case types.MsgAddHandCard:
		if err := need(name, args, 4); err != nil {
			return "", err
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		c := &CardView{ID: id, Display: args[1], CardID: args[2], Mana: args[3]}
		if !t.cards.Link(id, c) {
			return "", nil
		}
		t.hand = append(t.hand, c)
		return fmt.Sprintf("You draw %s.", t.nameOf(c.CardID)), nil

	case types.MsgRemHandCard:
		if err := need(name, args, 1); err != nil {
			return "", err
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		c, ok := t.cards.Handle(id)
		if !ok {
			return "", nil
		}
		t.cards.UnlinkID(id)
		for i, h := range t.hand {
			if h == c {
				t.hand = append(t.hand[:i], t.hand[i+1:]...)
				break
			}
		}
		return "", nil

	case types.MsgSpawnCreature:
		if err := need(name, args, 5); err != nil {
			return "", err
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		slotID, err := parseID(args[4])
		if err != nil {
			return "", err
		}
		index, ok := t.slots.Handle(slotID)
		if !ok {
			return "", eris.Errorf("%s: unknown slot %d", name, slotID)
		}
		cr := &CreatureView{ID: id, Display: args[1], CardID: args[2], Mana: args[3], Slot: index}
		if !t.creatures.Link(id, cr) {
			return "", nil
		}
		t.lanes[index] = cr
		return fmt.Sprintf("%s %s enters lane %d.", t.sideOf(index), t.nameOf(cr.CardID), index%state.RowSize+1), nil

	case types.MsgKillCreature:
		if err := need(name, args, 1); err != nil {
			return "", err
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		cr, ok := t.creatures.Handle(id)
		if !ok {
			return "", nil
		}
		t.creatures.UnlinkID(id)
		if t.lanes[cr.Slot] == cr {
			t.lanes[cr.Slot] = nil
		}
		return fmt.Sprintf("%s %s is destroyed.", t.sideOf(cr.Slot), t.nameOf(cr.CardID)), nil

	case types.MsgPlayerDamaged:
		if err := need(name, args, 2); err != nil {
			return "", err
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		hp, err := strconv.Atoi(args[1])
		if err != nil {
			return "", eris.Errorf("%s: bad health %q", name, args[1])
		}
		t.health[id] = hp
		t.see(id)
		if id == t.Self {
			return fmt.Sprintf("You are hit! Health %d.", hp), nil
		}
		return fmt.Sprintf("Opponent is hit! Health %d.", hp), nil

	case types.MsgTurnChanged:
		if err := need(name, args, 2); err != nil {
			return "", err
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		budget, err := strconv.Atoi(args[1])
		if err != nil {
			return "", eris.Errorf("%s: bad budget %q", name, args[1])
		}
		t.turnOwner, t.budget = id, budget
		t.turn++
		t.see(id)
		if id == t.Self {
			return "Your turn.", nil
		}
		return "Opponent's turn.", nil

	case types.MsgEndGame:
		if err := need(name, args, 1); err != nil {
			return "", err
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		t.winner = id
		if id == t.Self {
			return "You win!", nil
		}
		return "You lose.", nil
	}

	return "", eris.Errorf("unknown message %q", name)
}

// Resolve turns an intent into a command name and id arguments. Hand
// positions and lanes are 1-based; a card may also be named by content id.
// Playing without a lane picks the first free lane in the player's row.
func (t *Table) Resolve(intent types.Intent) (string, []int, error) {
	name, ok := parser.CommandName(intent.Verb)
	if !ok {
		if intent.Verb == "" {
			return "", nil, eris.New("what do you want to do?")
		}
		return "", nil, eris.Errorf("unknown command %q", intent.Verb)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	switch name {
	case types.CmdPlayCard:
		card, err := t.handCard(intent.Object)
		if err != nil {
			return "", nil, err
		}
		slotID, err := t.lane(intent.Target)
		if err != nil {
			return "", nil, err
		}
		return name, []int{int(card.ID), int(slotID)}, nil

	case types.CmdDiscard:
		card, err := t.handCard(intent.Object)
		if err != nil {
			return "", nil, err
		}
		return name, []int{int(card.ID)}, nil
	}
	return name, nil, nil
}

func (t *Table) handCard(ref string) (*CardView, error) {
	if ref == "" {
		if len(t.hand) == 0 {
			return nil, eris.New("your hand is empty")
		}
		return t.hand[0], nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(t.hand) {
			return nil, eris.Errorf("no card at hand position %d", n)
		}
		return t.hand[n-1], nil
	}
	for _, c := range t.hand {
		if c.CardID == ref || strings.EqualFold(t.nameOf(c.CardID), ref) {
			return c, nil
		}
	}
	return nil, eris.Errorf("no %q in your hand", ref)
}

func (t *Table) lane(ref string) (types.EntityID, error) {
	start := t.Row * state.RowSize
	if ref == "" {
		for i := start; i < start+state.RowSize; i++ {
			if t.lanes[i] == nil {
				return t.slotID(i)
			}
		}
		return 0, eris.New("no free lane")
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 || n > state.RowSize {
		return 0, eris.Errorf("lane must be 1-%d", state.RowSize)
	}
	return t.slotID(start + n - 1)
}

func (t *Table) slotID(index int) (types.EntityID, error) {
	id, ok := t.slots.ID(index)
	if !ok {
		return 0, eris.Errorf("slot %d not linked yet", index)
	}
	return id, nil
}

// see records id as the opponent if it is a player other than Self.
func (t *Table) see(id types.EntityID) {
	if id != t.Self && t.opponent == 0 {
		t.opponent = id
	}
}

func (t *Table) nameOf(cardID string) string {
	if n, ok := t.names[cardID]; ok && n != "" {
		return n
	}
	return cardID
}

func (t *Table) sideOf(index int) string {
	if state.RowOf(index) == t.Row {
		return "Your"
	}
	return "Enemy"
}

func need(name string, args []string, n int) error {
	if len(args) < n {
		return eris.Errorf("%s: want %d args, got %d", name, n, len(args))
	}
	return nil
}

func parseID(s string) (types.EntityID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, eris.Wrapf(err, "bad entity id %q", s)
	}
	return types.EntityID(n), nil
}
