// Package engine provides the duel state machine: the Step() orchestrator
// that validates a command, applies it, runs the turn-end check and attack
// sweep, and keeps driving automated or stuck players until a human decision
// is needed.
package engine

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/moduel/engine/registry"
	"github.com/nathoo/moduel/engine/resolve"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/types"
)

// Continuation bounds.
const (
	DefaultMaxAutoSteps    = 1000
	DefaultMaxPlayAttempts = 32
)

// Engine holds the content, the registry, and the mutable duel state.
// It is not safe for concurrent use; Session serializes access.
type Engine struct {
	Defs     *state.Defs
	Registry *registry.Registry
	State    *state.Duel
	RNG      *RNG

	maxAutoSteps    int
	maxPlayAttempts int
	failedPlays     int
	log             zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed seeds the RNG used by the automated-opponent policy.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.RNG = NewRNG(seed) }
}

// WithLogger sets the logger for ignored commands and continuation warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMaxAutoSteps bounds the continuation moves applied per submitted command.
func WithMaxAutoSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAutoSteps = n
		}
	}
}

// WithMaxPlayAttempts bounds consecutive no-op automated plays before the
// policy falls back to Charge.
func WithMaxPlayAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPlayAttempts = n
		}
	}
}

// New creates an engine over defs with a fresh registry.
func New(defs *state.Defs, opts ...Option) *Engine {
	e := &Engine{
		Defs:            defs,
		Registry:        registry.New(),
		RNG:             NewRNG(1),
		maxAutoSteps:    DefaultMaxAutoSteps,
		maxPlayAttempts: DefaultMaxPlayAttempts,
		log:             log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "engine").Logger()
	return e
}

// NewPlayer registers a player in this engine's registry and deals deck.
func (e *Engine) NewPlayer(userID string, deck []string) *state.Player {
	return state.NewPlayer(e.Registry, e.Defs, userID, deck)
}

// Start seats p1 and p2, gives p1 the first turn, and returns the setup
// messages: every LinkSlot first, then each player's dealt hand.
func (e *Engine) Start(p1, p2 *state.Player) types.Result {
	var res types.Result
	d := state.NewDuel(e.Registry, e.Defs, p1, p2)
	e.State = d

	for _, s := range d.Slots {
		emit(&res, types.Broadcast, types.MsgLinkSlot, strconv.Itoa(s.Number), id(s.ID()))
	}
	for _, p := range []*state.Player{p1, p2} {
		for _, c := range p.Hand {
			emitAddHandCard(&res, c)
		}
	}
	emit(&res, types.Broadcast, types.MsgTurnChanged, id(d.TurnOwner.ID()), strconv.Itoa(d.ActionsRemaining))

	e.advance(&res)
	res.GameOver = d.Over()
	return res
}

// Step applies one submitted command and every continuation move that
// follows it. An illegal command yields an empty Result.
func (e *Engine) Step(cmd types.Command) types.Result {
	var res types.Result
	if e.State == nil {
		e.log.Debug().Str("command", cmd.Name).Msg("ignored: duel not started")
		return res
	}
	if e.State.Over() {
		e.log.Debug().Str("command", cmd.Name).Msg("ignored: duel over")
		res.GameOver = true
		return res
	}
	if !e.apply(cmd, &res) {
		return res
	}
	e.advance(&res)
	res.GameOver = e.State.Over()
	return res
}

// advance applies continuation moves until a human decision is needed, the
// duel ends, or the step bound is hit.
func (e *Engine) advance(res *types.Result) {
	for steps := 0; !e.State.Over(); steps++ {
		next, ok := e.continuation()
		if !ok {
			return
		}
		if steps >= e.maxAutoSteps {
			e.log.Warn().
				Int("steps", steps).
				Uint32("owner", uint32(e.State.TurnOwner.ID())).
				Msg("continuation bound reached, awaiting owner")
			return
		}
		if !e.apply(next, res) && next.Name == types.CmdPlayCard {
			e.failedPlays++
		}
	}
}

// continuation returns the move the engine makes on the turn owner's behalf,
// if any.
func (e *Engine) continuation() (types.Command, bool) {
	owner := e.State.TurnOwner
	if owner.Automated {
		return Autopilot(e.State, owner, e.RNG, e.failedPlays >= e.maxPlayAttempts), true
	}
	return ForcedMove(owner)
}

// apply validates and executes one command. It reports whether the command
// changed state; a false return means nothing was emitted.
func (e *Engine) apply(cmd types.Command, res *types.Result) bool {
	d := e.State
	if cmd.Actor != d.TurnOwner.ID() {
		e.ignore(cmd, "not turn owner")
		return false
	}

	var ok bool
	switch cmd.Name {
	case types.CmdPlayCard:
		ok = e.playCard(cmd, res)
	case types.CmdCharge:
		ok = true
	case types.CmdRevive:
		ok = e.revive(res)
	case types.CmdDiscard:
		ok = e.discard(cmd, res)
	default:
		e.ignore(cmd, "unknown command")
		return false
	}
	if !ok {
		return false
	}

	e.failedPlays = 0
	res.Applied = append(res.Applied, cmd)
	d.Spend()
	e.checkEndTurn(res)
	return true
}

func (e *Engine) playCard(cmd types.Command, res *types.Result) bool {
	owner := e.State.TurnOwner
	card, err := resolve.Card(e.Registry, resolve.Arg(cmd.Args, 0))
	if err != nil {
		e.ignoreErr(cmd, err)
		return false
	}
	slot, err := resolve.Slot(e.Registry, resolve.Arg(cmd.Args, 1))
	if err != nil {
		e.ignoreErr(cmd, err)
		return false
	}
	if _, inHand := owner.HandCard(card.ID()); !inHand {
		e.ignore(cmd, "card not in hand")
		return false
	}
	if state.RowOf(slot.Number) != owner.Row {
		e.ignore(cmd, "slot not in own row")
		return false
	}
	if !slot.IsEmpty() {
		e.ignore(cmd, "slot occupied")
		return false
	}

	owner.RemoveFromHand(card)
	emit(res, owner.ID(), types.MsgRemHandCard, id(card.ID()))

	cr := state.NewCreature(e.Registry, card)
	slot.Creature = cr
	emit(res, types.Broadcast, types.MsgSpawnCreature,
		id(cr.ID()), types.DisplayCreature, card.CardID, card.Mana, id(slot.ID()))
	return true
}

func (e *Engine) revive(res *types.Result) bool {
	owner := e.State.TurnOwner
	if len(owner.Grave) == 0 {
		e.ignore(types.Command{Name: types.CmdRevive, Actor: owner.ID()}, "grave empty")
		return false
	}
	for _, dead := range owner.Grave {
		dead.Zone = types.ZoneNone
		fresh := state.NewCard(e.Registry, e.Defs.Card(dead.CardID), owner)
		fresh.Zone = types.ZoneHand
		owner.Hand = append(owner.Hand, fresh)
		emitAddHandCard(res, fresh)
	}
	owner.Grave = []*state.Card{}
	return true
}

func (e *Engine) discard(cmd types.Command, res *types.Result) bool {
	owner := e.State.TurnOwner
	card, ok := owner.HandCard(resolve.Arg(cmd.Args, 0))
	if !ok {
		e.ignore(cmd, "card not in hand")
		return false
	}
	owner.RemoveFromHand(card)
	emit(res, owner.ID(), types.MsgRemHandCard, id(card.ID()))
	return true
}

// checkEndTurn ends the turn once the budget is spent: the owner's row
// attacks, then the turn passes unless someone won.
func (e *Engine) checkEndTurn(res *types.Result) {
	d := e.State
	if d.ActionsRemaining > 0 {
		return
	}
	e.attackSweep(res)
	if d.Over() {
		return
	}
	d.SwapTurn()
	emit(res, types.Broadcast, types.MsgTurnChanged, id(d.TurnOwner.ID()), strconv.Itoa(d.ActionsRemaining))
}

func (e *Engine) ignore(cmd types.Command, reason string) {
	e.log.Debug().
		Str("command", cmd.Name).
		Uint32("actor", uint32(cmd.Actor)).
		Ints("args", cmd.Args).
		Msg("ignored: " + reason)
}

func (e *Engine) ignoreErr(cmd types.Command, err error) {
	e.log.Debug().
		Err(err).
		Str("command", cmd.Name).
		Uint32("actor", uint32(cmd.Actor)).
		Msg("ignored: unresolved argument")
}

func emit(res *types.Result, target types.EntityID, name string, args ...string) {
	res.Messages = append(res.Messages, types.Message{Target: target, Name: name, Args: args})
}

func emitAddHandCard(res *types.Result, c *state.Card) {
	emit(res, c.Owner.ID(), types.MsgAddHandCard, id(c.ID()), types.DisplayHandCard, c.CardID, c.Mana)
}

func id(x types.EntityID) string {
	return strconv.FormatUint(uint64(x), 10)
}
