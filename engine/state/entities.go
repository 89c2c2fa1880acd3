package state

import (
	"github.com/nathoo/moduel/engine/registry"
	"github.com/nathoo/moduel/types"
)

// Player is one side of the duel.
type Player struct {
	registry.Indexed

	UserID         string
	Row            int // 0 owns slots 0..4, 1 owns slots 5..9
	StartingHealth int
	Health         int
	Hand           []*Card
	Grave          []*Card

	// Automated players are driven by the engine's built-in policy.
	Automated bool
}

// NewPlayer registers a player and deals deck into its hand in order.
func NewPlayer(reg *registry.Registry, defs *Defs, userID string, deck []string) *Player {
	p := &Player{
		UserID:         userID,
		StartingHealth: defs.StartingHealth(),
		Health:         defs.StartingHealth(),
		Hand:           []*Card{},
		Grave:          []*Card{},
	}
	reg.Register(p)
	for _, key := range deck {
		c := NewCard(reg, defs.Card(key), p)
		c.Zone = types.ZoneHand
		p.Hand = append(p.Hand, c)
	}
	return p
}

// HandCard returns the hand card with the given id.
func (p *Player) HandCard(id types.EntityID) (*Card, bool) {
	for _, c := range p.Hand {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// RemoveFromHand removes c from the hand, preserving order. Returns false if
// c was not in the hand.
func (p *Player) RemoveFromHand(c *Card) bool {
	for i, h := range p.Hand {
		if h == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			c.Zone = types.ZoneNone
			return true
		}
	}
	return false
}

// AddToGrave appends c to the grave.
func (p *Player) AddToGrave(c *Card) {
	c.Zone = types.ZoneGrave
	p.Grave = append(p.Grave, c)
}

// Dead reports whether the player's health has reached zero or below.
func (p *Player) Dead() bool {
	return p.Health <= 0
}

// Card is a card instance. Its id changes whenever a fresh copy is made
// (revive); the content key stays the same.
type Card struct {
	registry.Indexed

	CardID string
	Owner  *Player
	Attack int
	Health int
	Mana   string
	Zone   types.Zone
}

// NewCard registers a card built from def.
func NewCard(reg *registry.Registry, def types.CardDef, owner *Player) *Card {
	c := &Card{
		CardID: def.ID,
		Owner:  owner,
		Attack: def.Attack,
		Health: def.Health,
		Mana:   def.Mana,
	}
	reg.Register(c)
	return c
}

// Creature is a card summoned to the field. It has its own id.
type Creature struct {
	registry.Indexed

	Card     *Card
	Attack   int
	Health   int
	Sickness bool
}

// NewCreature registers a creature summoned from card, with summoning sickness.
func NewCreature(reg *registry.Registry, card *Card) *Creature {
	cr := &Creature{
		Card:     card,
		Attack:   card.Attack,
		Health:   card.Health,
		Sickness: true,
	}
	reg.Register(cr)
	card.Zone = types.ZoneField
	return cr
}

// Owner returns the player that owns the creature's card.
func (cr *Creature) Owner() *Player {
	return cr.Card.Owner
}

// Slot is a fixed field position.
type Slot struct {
	registry.Indexed

	Number   int
	Creature *Creature
}

// IsEmpty reports whether the slot has no occupant.
func (s *Slot) IsEmpty() bool {
	return s.Creature == nil
}
