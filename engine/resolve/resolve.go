// Package resolve maps command argument ids to registry entities.
// A miss is a typed error; callers treat it as "ignore this command".
package resolve

import (
	"fmt"
	"math"

	"github.com/nathoo/moduel/engine/registry"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/types"
)

// NotFoundError indicates no entity is registered under an id.
type NotFoundError struct {
	ID types.EntityID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no entity with id %d", e.ID)
}

// KindError indicates the id resolved to the wrong kind of entity.
type KindError struct {
	ID   types.EntityID
	Want string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("entity %d is not a %s", e.ID, e.Want)
}

// Card resolves id to a card.
func Card(reg *registry.Registry, id types.EntityID) (*state.Card, error) {
	e, err := lookup(reg, id)
	if err != nil {
		return nil, err
	}
	c, ok := e.(*state.Card)
	if !ok {
		return nil, &KindError{ID: id, Want: "card"}
	}
	return c, nil
}

// Slot resolves id to a slot.
func Slot(reg *registry.Registry, id types.EntityID) (*state.Slot, error) {
	e, err := lookup(reg, id)
	if err != nil {
		return nil, err
	}
	s, ok := e.(*state.Slot)
	if !ok {
		return nil, &KindError{ID: id, Want: "slot"}
	}
	return s, nil
}

// Player resolves id to a player.
func Player(reg *registry.Registry, id types.EntityID) (*state.Player, error) {
	e, err := lookup(reg, id)
	if err != nil {
		return nil, err
	}
	p, ok := e.(*state.Player)
	if !ok {
		return nil, &KindError{ID: id, Want: "player"}
	}
	return p, nil
}

// Arg returns args[i] as an entity id, or 0 if it is missing or does not fit
// in an id.
func Arg(args []int, i int) types.EntityID {
	if i >= len(args) || args[i] < 0 || uint64(args[i]) > math.MaxUint32 {
		return 0
	}
	return types.EntityID(args[i])
}

func lookup(reg *registry.Registry, id types.EntityID) (registry.Entity, error) {
	e, ok := reg.Lookup(id)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return e, nil
}
