// Package provider decouples a player's front end from where the duel runs.
// A front end sends commands and receives messages through a GameProvider
// whether the session is in this process or across a connection.
package provider

import (
	"strconv"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/moduel/engine"
	"github.com/nathoo/moduel/engine/events"
	"github.com/nathoo/moduel/types"
)

// Handler receives one message addressed to the local player.
type Handler func(name string, args []string)

// GameProvider is a player's connection to a duel.
type GameProvider interface {
	// LocalID is the user id of the player this provider acts for.
	LocalID() string
	// SendCommand submits a command on the player's behalf.
	SendCommand(name string, args ...int)
	// OnCommandReceived registers the handler for incoming messages.
	OnCommandReceived(h Handler)
}

// handlers is the shared handler slot. Setting it is safe at any time.
type handlers struct {
	mu sync.RWMutex
	h  Handler
}

func (hs *handlers) set(h Handler) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.h = h
}

func (hs *handlers) deliver(name string, args []string) {
	hs.mu.RLock()
	h := hs.h
	hs.mu.RUnlock()
	if h != nil {
		h(name, args)
	}
}

// Local drives a player seated in an in-process session.
type Local struct {
	userID   string
	playerID types.EntityID
	session  *engine.Session
	handlers handlers
	unsub    func()
}

// NewLocal subscribes to the session's messages for playerID. Create it
// before the session starts to receive the setup messages.
func NewLocal(s *engine.Session, userID string, playerID types.EntityID) *Local {
	l := &Local{userID: userID, playerID: playerID, session: s}
	l.unsub = s.Bus().Subscribe(events.ForPlayer(playerID), func(m types.Message) {
		l.handlers.deliver(m.Name, m.Args)
	})
	return l
}

// LocalID returns the player's user id.
func (l *Local) LocalID() string { return l.userID }

// PlayerID returns the player's entity id.
func (l *Local) PlayerID() types.EntityID { return l.playerID }

// SendCommand enqueues the command with this player as actor.
func (l *Local) SendCommand(name string, args ...int) {
	l.session.Enqueue(types.Command{Name: name, Actor: l.playerID, Args: args})
}

// OnCommandReceived sets the message handler.
func (l *Local) OnCommandReceived(h Handler) { l.handlers.set(h) }

// Close stops message delivery.
func (l *Local) Close() { l.unsub() }

// Transport carries commands to a remote session.
type Transport interface {
	Send(name string, args []string) error
}

// Remote drives a player whose session runs elsewhere.
type Remote struct {
	userID    string
	transport Transport
	handlers  handlers
	log       zerolog.Logger
}

// NewRemote creates a provider that sends over t. The transport's read loop
// calls Deliver for every incoming message.
func NewRemote(userID string, t Transport) *Remote {
	return &Remote{
		userID:    userID,
		transport: t,
		log:       log.Logger.With().Str("component", "provider").Str("user_id", userID).Logger(),
	}
}

// LocalID returns the player's user id.
func (r *Remote) LocalID() string { return r.userID }

// SendCommand serializes the command onto the transport. Send failures are
// logged and the command is dropped.
func (r *Remote) SendCommand(name string, args ...int) {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strconv.Itoa(a)
	}
	if err := r.transport.Send(name, out); err != nil {
		r.log.Error().Err(eris.Wrapf(err, "send %s", name)).Msg("command dropped")
	}
}

// OnCommandReceived sets the message handler.
func (r *Remote) OnCommandReceived(h Handler) { r.handlers.set(h) }

// Deliver hands an incoming message to the handler.
func (r *Remote) Deliver(name string, args []string) {
	r.handlers.deliver(name, args)
}

// ParseArgs converts wire arguments back to ints. It fails on the first
// argument that is not an integer.
func ParseArgs(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, eris.Wrapf(err, "argument %d", i)
		}
		out[i] = n
	}
	return out, nil
}
