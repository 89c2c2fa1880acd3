package engine

import (
	"strconv"

	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/types"
)

// attackSweep makes every creature in the turn owner's row attack, in
// ascending slot order. A creature with summoning sickness loses it instead
// of attacking. The sweep stops as soon as a player dies.
func (e *Engine) attackSweep(res *types.Result) {
	d := e.State
	attacker := d.TurnOwner

	for _, slot := range d.Row(attacker) {
		cr := slot.Creature
		if cr == nil {
			continue
		}
		if cr.Sickness {
			cr.Sickness = false
			continue
		}

		opposing := d.Slots[state.OpposingIndex(slot.Number)]
		if opposing.IsEmpty() {
			defender := d.RowOwner(state.RowOf(opposing.Number))
			defender.Health -= cr.Attack
			emit(res, types.Broadcast, types.MsgPlayerDamaged, id(defender.ID()), strconv.Itoa(defender.Health))
			if defender.Dead() {
				d.Winner = attacker
				emit(res, types.Broadcast, types.MsgEndGame, id(attacker.ID()))
				return
			}
			continue
		}

		victim := opposing.Creature
		victim.Health -= cr.Attack
		if victim.Health <= 0 {
			opposing.Creature = nil
			victim.Owner().AddToGrave(victim.Card)
			emit(res, types.Broadcast, types.MsgKillCreature, id(victim.ID()))
		}
	}
}

// Autopilot picks the automated opponent's next command.
//
// With no empty slot in its row, or nothing in hand or grave, it charges.
// With an empty hand and a non-empty grave it revives. Otherwise it plays its
// first hand card into a random slot of its own row without checking that
// the slot is free; the caller retries no-op plays and sets exhausted once
// too many have failed in a row, which forces a Charge.
func Autopilot(d *state.Duel, p *state.Player, rng *RNG, exhausted bool) types.Command {
	charge := types.Command{Name: types.CmdCharge, Actor: p.ID()}
	switch {
	case exhausted, !d.HasEmptySlot(p):
		return charge
	case len(p.Hand) == 0 && len(p.Grave) == 0:
		return charge
	case len(p.Hand) == 0:
		return types.Command{Name: types.CmdRevive, Actor: p.ID()}
	}

	row := d.Row(p)
	slot := row[rng.Intn(len(row))]
	return types.Command{
		Name:  types.CmdPlayCard,
		Actor: p.ID(),
		Args:  []int{int(p.Hand[0].ID()), int(slot.ID())},
	}
}

// ForcedMove returns the move made for a human turn owner that has nothing
// left in hand: Revive when the grave has cards, Charge otherwise.
func ForcedMove(p *state.Player) (types.Command, bool) {
	if len(p.Hand) > 0 {
		return types.Command{}, false
	}
	if len(p.Grave) > 0 {
		return types.Command{Name: types.CmdRevive, Actor: p.ID()}, true
	}
	return types.Command{Name: types.CmdCharge, Actor: p.ID()}, true
}
