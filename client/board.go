package client

import (
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/types"
)

// Board is a copy of the table for rendering.
type Board struct {
	Hand        []CardView
	Lanes       [state.SlotCount]*CreatureView
	Row         int
	Health      int
	EnemyHealth int
	MyTurn      bool
	Budget      int
	Turn        int
	Over        bool
	Won         bool
}

// Board returns a detached copy of the table.
func (t *Table) Board() Board {
	t.mu.RLock()
	defer t.mu.RUnlock()

	b := Board{
		Row:         t.Row,
		Health:      t.healthOf(t.Self),
		EnemyHealth: t.healthOf(t.opponent),
		MyTurn:      t.turnOwner == t.Self && t.winner == 0,
		Budget:      t.budget,
		Turn:        t.turn,
		Over:        t.winner != 0,
		Won:         t.winner != 0 && t.winner == t.Self,
	}
	b.Hand = make([]CardView, len(t.hand))
	for i, c := range t.hand {
		b.Hand[i] = *c
	}
	for i, cr := range t.lanes {
		if cr != nil {
			cp := *cr
			b.Lanes[i] = &cp
		}
	}
	return b
}

// Name returns the display name for a content id.
func (t *Table) Name(cardID string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nameOf(cardID)
}

// Links reports how many slots, cards, and creatures are currently linked.
func (t *Table) Links() (slots, cards, creatures int) {
	return t.slots.Len(), t.cards.Len(), t.creatures.Len()
}

func (t *Table) healthOf(id types.EntityID) int {
	if id == 0 {
		return t.start
	}
	if hp, ok := t.health[id]; ok {
		return hp
	}
	return t.start
}
