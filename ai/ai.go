// Package ai drives a seat from its own goroutine. Unlike the engine's
// inline autopilot it only sees snapshots and talks to the duel through the
// command queue, the same way a remote player does.
package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/moduel/engine"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/types"
)

// DefaultPoll is how long an idle player sleeps between turn checks.
const DefaultPoll = 500 * time.Millisecond

// ChargeWeight is the selection weight of passing the action.
const ChargeWeight = 3

// settle is the interval used while waiting for an enqueued command to land.
const settle = 5 * time.Millisecond

// Duel is the part of a session the player needs.
type Duel interface {
	Snapshot() state.View
	Enqueue(cmd types.Command) bool
	Done() <-chan struct{}
}

// Player plays one seat by weighted random choice.
type Player struct {
	Session  Duel
	PlayerID types.EntityID
	RNG      *engine.RNG
	Poll     time.Duration
	Log      zerolog.Logger
}

// New returns a player for id with a seeded RNG and default poll interval.
func New(s Duel, id types.EntityID, seed int64) *Player {
	return &Player{
		Session:  s,
		PlayerID: id,
		RNG:      engine.NewRNG(seed),
		Poll:     DefaultPoll,
		Log:      log.Logger.With().Str("component", "ai").Uint32("player", uint32(id)).Logger(),
	}
}

// Run plays until the duel ends (nil) or ctx is cancelled (ctx.Err()).
func (p *Player) Run(ctx context.Context) error {
	poll := p.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}
	for {
		view := p.Session.Snapshot()
		if view.Over {
			return nil
		}
		if view.TurnOwner != p.PlayerID {
			if err := p.sleep(ctx, poll); err != nil {
				return p.stopped(err)
			}
			continue
		}

		me, ok := view.Player(p.PlayerID)
		if !ok {
			return nil
		}
		cmd := p.Choose(me)
		p.Log.Debug().Str("command", cmd.Name).Ints("args", cmd.Args).Msg("choose")
		if !p.Session.Enqueue(cmd) {
			return nil
		}
		if err := p.await(ctx, view, poll); err != nil {
			return p.stopped(err)
		}
	}
}

// Choose picks a command for me from the weighted candidates.
func (p *Player) Choose(me state.PlayerView) types.Command {
	cands, weights := Candidates(me)
	return cands[p.RNG.WeightedSelect(weights)]
}

// Candidates lists every move open to me with its weight. Charge is always
// present unless the hand is empty and the grave is not, in which case
// Revive is the only candidate.
func Candidates(me state.PlayerView) ([]types.Command, []int) {
	if len(me.Hand) == 0 && me.GraveCount > 0 {
		return []types.Command{{Name: types.CmdRevive, Actor: me.ID}}, []int{1}
	}

	cands := []types.Command{{Name: types.CmdCharge, Actor: me.ID}}
	weights := []int{ChargeWeight}
	for _, card := range me.Hand {
		for _, slot := range me.EmptySlots {
			cands = append(cands, types.Command{
				Name:  types.CmdPlayCard,
				Actor: me.ID,
				Args:  []int{int(card), int(slot)},
			})
			weights = append(weights, 1)
		}
		cands = append(cands, types.Command{
			Name:  types.CmdDiscard,
			Actor: me.ID,
			Args:  []int{int(card)},
		})
		weights = append(weights, 1)
	}
	return cands, weights
}

// await blocks until the duel has moved on from before as seen by this seat.
// Other commands processed meanwhile bump the version without changing
// anything here; once the version has moved and stale has passed the command
// is taken as a no-op.
func (p *Player) await(ctx context.Context, before state.View, stale time.Duration) error {
	deadline := time.Now().Add(stale)
	for {
		now := p.Session.Snapshot()
		if now.Version > before.Version && (p.progressed(before, now) || time.Now().After(deadline)) {
			return nil
		}
		if err := p.sleep(ctx, settle); err != nil {
			return err
		}
	}
}

func (p *Player) progressed(before, now state.View) bool {
	if now.Over || now.TurnOwner != before.TurnOwner || now.Turn != before.Turn ||
		now.ActionsRemaining != before.ActionsRemaining {
		return true
	}
	b, _ := before.Player(p.PlayerID)
	n, _ := now.Player(p.PlayerID)
	return len(b.Hand) != len(n.Hand) || b.GraveCount != n.GraveCount ||
		len(b.EmptySlots) != len(n.EmptySlots)
}

// errDone marks a session that finished while the player slept.
type errDone struct{}

func (errDone) Error() string { return "session done" }

func (p *Player) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.Session.Done():
		return errDone{}
	case <-timer.C:
		return nil
	}
}

func (p *Player) stopped(err error) error {
	if _, ok := err.(errDone); ok {
		return nil
	}
	return err
}
