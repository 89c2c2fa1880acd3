package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/nathoo/moduel/engine/events"
	"github.com/nathoo/moduel/engine/queue"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/engine/transcript"
	"github.com/nathoo/moduel/types"
)

// ErrStarted is returned when Start is called twice.
var ErrStarted = errors.New("session already started")

// Session runs an Engine on a single goroutine. Commands from any goroutine
// go through Enqueue; messages come out of Bus in the order produced; other
// goroutines read the duel only through Snapshot.
type Session struct {
	engine *Engine
	queue  *queue.Queue
	bus    *events.Bus
	rec    *transcript.Recorder
	log    zerolog.Logger

	mu      sync.RWMutex
	view    state.View
	version uint64
	started bool

	done chan struct{}
}

// NewSession wraps e. The engine must not be used directly afterwards.
func NewSession(e *Engine) *Session {
	return &Session{
		engine: e,
		queue:  queue.New(),
		bus:    events.NewBus(),
		log:    e.log.With().Str("component", "session").Logger(),
		done:   make(chan struct{}),
	}
}

// Bus returns the message bus. Subscribe before Start to see setup messages.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// NewPlayer registers a player with the session's engine. Call before Start.
func (s *Session) NewPlayer(userID string, deck []string) *state.Player {
	return s.engine.NewPlayer(userID, deck)
}

// Start seats the players, publishes the setup messages, and launches the
// command loop. The loop exits when the duel ends or ctx is cancelled.
func (s *Session) Start(ctx context.Context, p1, p2 *state.Player) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return eris.Wrap(ErrStarted, "start session")
	}
	s.started = true
	s.mu.Unlock()

	s.rec = transcript.NewRecorder(s.engine.RNG.Seed(), seat(p1), seat(p2))

	res := s.engine.Start(p1, p2)
	s.publish(res)
	s.log.Info().
		Str("player1", p1.UserID).
		Str("player2", p2.UserID).
		Msg("duel started")

	if res.GameOver {
		s.finish()
		return nil
	}
	go s.run(ctx)
	return nil
}

// Enqueue submits cmd for processing. It returns false once the session has
// stopped accepting commands.
func (s *Session) Enqueue(cmd types.Command) bool {
	return s.queue.Push(cmd)
}

// Snapshot returns a detached copy of the duel.
func (s *Session) Snapshot() state.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Done is closed when the command loop exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the command loop exits.
func (s *Session) Wait() {
	<-s.done
}

// Transcript returns the duel log so far.
func (s *Session) Transcript() transcript.Transcript {
	if s.rec == nil {
		return transcript.Transcript{Version: transcript.FormatVersion}
	}
	return s.rec.Snapshot()
}

func (s *Session) run(ctx context.Context) {
	defer s.finish()
	for {
		cmd, err := s.queue.Pop(ctx)
		if err != nil {
			s.log.Info().Err(err).Msg("duel stopped")
			return
		}
		s.rec.Command(cmd)
		res := s.engine.Step(cmd)
		s.publish(res)
		if res.GameOver {
			s.log.Info().Uint32("winner", uint32(s.engine.State.Winner.ID())).Msg("duel over")
			return
		}
	}
}

// publish records res, refreshes the snapshot, then delivers the messages,
// so a subscriber that reads Snapshot sees the state they describe. The
// version advances for every processed command, applied or not.
func (s *Session) publish(res types.Result) {
	s.rec.Messages(res.Messages)

	s.mu.Lock()
	s.version++
	s.view = state.Snapshot(s.engine.State, s.version)
	s.mu.Unlock()

	s.bus.Publish(res.Messages...)
}

func (s *Session) finish() {
	s.queue.Close()
	close(s.done)
}

func seat(p *state.Player) transcript.Seat {
	deck := make([]string, 0, len(p.Hand))
	for _, c := range p.Hand {
		deck = append(deck, c.CardID)
	}
	return transcript.Seat{UserID: p.UserID, Deck: deck, Automated: p.Automated}
}
