package state

import (
	"github.com/nathoo/moduel/engine/registry"
	"github.com/nathoo/moduel/types"
)

// Board geometry: two rows of RowSize slots, one row per player.
const (
	RowSize   = 5
	SlotCount = 2 * RowSize
)

// OpposingIndex returns the slot number directly across the field from i.
func OpposingIndex(i int) int {
	return (i + RowSize) % SlotCount
}

// RowOf returns the row (0 or 1) that slot number i belongs to.
func RowOf(i int) int {
	return i / RowSize
}

// Duel is the complete mutable duel state.
type Duel struct {
	Player1 *Player
	Player2 *Player
	Slots   [SlotCount]*Slot

	TurnOwner        *Player
	ActionsRemaining int
	ActionsPerTurn   int
	Turn             int
	Winner           *Player
}

// NewDuel registers the ten slots and seats p1 in row 0 and p2 in row 1.
// p1 owns the first turn.
func NewDuel(reg *registry.Registry, defs *Defs, p1, p2 *Player) *Duel {
	d := &Duel{
		Player1:        p1,
		Player2:        p2,
		TurnOwner:      p1,
		ActionsPerTurn: defs.ActionsPerTurn(),
		Turn:           1,
	}
	d.ActionsRemaining = d.ActionsPerTurn
	p1.Row, p2.Row = 0, 1
	for i := range d.Slots {
		s := &Slot{Number: i}
		reg.Register(s)
		d.Slots[i] = s
	}
	return d
}

// Over reports whether a winner has been decided.
func (d *Duel) Over() bool {
	return d.Winner != nil
}

// Opponent returns the other player.
func (d *Duel) Opponent(p *Player) *Player {
	if p == d.Player1 {
		return d.Player2
	}
	return d.Player1
}

// RowOwner returns the player seated on row.
func (d *Duel) RowOwner(row int) *Player {
	if row == 0 {
		return d.Player1
	}
	return d.Player2
}

// Row returns p's slots in ascending order.
func (d *Duel) Row(p *Player) []*Slot {
	start := p.Row * RowSize
	return d.Slots[start : start+RowSize]
}

// EmptySlots returns the empty slots in p's row, ascending.
func (d *Duel) EmptySlots(p *Player) []*Slot {
	var out []*Slot
	for _, s := range d.Row(p) {
		if s.IsEmpty() {
			out = append(out, s)
		}
	}
	return out
}

// HasEmptySlot reports whether p's row has room for a creature.
func (d *Duel) HasEmptySlot(p *Player) bool {
	return len(d.EmptySlots(p)) > 0
}

// SwapTurn hands the turn to the other player and resets the budget.
func (d *Duel) SwapTurn() {
	d.TurnOwner = d.Opponent(d.TurnOwner)
	d.ActionsRemaining = d.ActionsPerTurn
	d.Turn++
}

// Spend consumes one action point. The budget never goes below zero.
func (d *Duel) Spend() {
	if d.ActionsRemaining > 0 {
		d.ActionsRemaining--
	}
}

// ZoneOf reports where c lives by inspecting the containers themselves,
// independent of the card's own Zone field.
func (d *Duel) ZoneOf(c *Card) []types.Zone {
	var zones []types.Zone
	for _, p := range []*Player{d.Player1, d.Player2} {
		for _, h := range p.Hand {
			if h == c {
				zones = append(zones, types.ZoneHand)
			}
		}
		for _, g := range p.Grave {
			if g == c {
				zones = append(zones, types.ZoneGrave)
			}
		}
	}
	for _, s := range d.Slots {
		if s.Creature != nil && s.Creature.Card == c {
			zones = append(zones, types.ZoneField)
		}
	}
	return zones
}
