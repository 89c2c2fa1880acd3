package netplay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/moduel/engine"
	"github.com/nathoo/moduel/engine/events"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/linker"
	"github.com/nathoo/moduel/provider"
	"github.com/nathoo/moduel/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 64 * 1024
	sendBufferSize = 512

	// guestRow is the board row of the joining player.
	guestRow = 1
)

// Host serves one duel. The local player is seated as player one; the first
// websocket peer to send its settings becomes player two and the duel starts.
type Host struct {
	ctx     context.Context
	session *engine.Session
	p1      *state.Player
	local   *provider.Local
	peers   *linker.Linker[*peer]

	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu     sync.Mutex
	joined bool
	ready  chan struct{}
}

// NewHost prepares to host s with p1 as the local player. The session starts
// when a peer joins; ctx bounds its lifetime.
func NewHost(ctx context.Context, s *engine.Session, p1 *state.Player) *Host {
	l := log.Logger.With().Str("component", "host").Logger()
	return &Host{
		ctx:     ctx,
		session: s,
		p1:      p1,
		local:   provider.NewLocal(s, p1.UserID, p1.ID()),
		peers:   linker.NewWithLogger[*peer]("peers", l),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log:   l,
		ready: make(chan struct{}),
	}
}

// Local returns the provider for the hosting player.
func (h *Host) Local() *provider.Local { return h.local }

// Ready is closed once player two has joined and the duel has started.
func (h *Host) Ready() <-chan struct{} { return h.ready }

// ServeHTTP upgrades the request and serves one peer until it disconnects.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}
	p := newPeer(conn, h.log)
	go p.writeLoop()
	defer p.close()

	if err := h.handshake(p); err != nil {
		h.log.Warn().Err(err).Str("peer", p.id).Msg("handshake failed")
		return
	}
	h.readLoop(p)
}

func (h *Host) handshake(p *peer) error {
	f, err := p.read()
	if err != nil {
		return err
	}
	if f.T != FramePlayerSettings {
		return eris.Errorf("expected %s, got %s", FramePlayerSettings, f.T)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.joined {
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "duel full"),
			time.Now().Add(writeWait))
		return eris.New("duel full")
	}

	p2 := h.session.NewPlayer(f.UserID, f.Deck)
	h.peers.Link(p2.ID(), p)
	p.unsub = h.session.Bus().Subscribe(events.ForPlayer(p2.ID()), func(m types.Message) {
		p.send(Frame{T: FrameRequest, Name: m.Name, Args: m.Args})
	})

	p.send(Frame{T: FrameConfirmUserID, UserID: p2.UserID, Player: p2.ID(), Row: guestRow})
	p.send(Frame{T: FrameGameReady, UserID: p2.UserID})

	if err := h.session.Start(h.ctx, h.p1, p2); err != nil {
		return eris.Wrap(err, "start duel")
	}
	h.joined = true
	close(h.ready)
	h.log.Info().
		Str("peer", p.id).
		Str("user_id", p2.UserID).
		Uint32("player", uint32(p2.ID())).
		Msg("player joined")
	return nil
}

func (h *Host) readLoop(p *peer) {
	defer func() {
		h.peers.UnlinkHandle(p)
		h.log.Info().Str("peer", p.id).Msg("peer disconnected")
	}()
	for {
		f, err := p.read()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug().Err(err).Str("peer", p.id).Msg("read failed")
			}
			return
		}
		if f.T != FrameRequest {
			h.log.Debug().Str("peer", p.id).Str("frame", f.T).Msg("unexpected frame")
			continue
		}
		actor, ok := h.peers.ID(p)
		if !ok {
			return
		}
		args, err := provider.ParseArgs(f.Args)
		if err != nil {
			h.log.Debug().Err(err).Str("command", f.Name).Msg("bad arguments")
			continue
		}
		h.session.Enqueue(types.Command{Name: f.Name, Actor: actor, Args: args})
	}
}

// peer is one websocket connection on the host side.
type peer struct {
	id    string
	conn  *websocket.Conn
	out   chan []byte
	done  chan struct{}
	once  sync.Once
	unsub func()
	log   zerolog.Logger
}

func newPeer(conn *websocket.Conn, l zerolog.Logger) *peer {
	p := &peer{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	p.log = l.With().Str("peer", p.id).Logger()
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return p
}

func (p *peer) read() (Frame, error) {
	_, data, err := p.conn.ReadMessage()
	if err != nil {
		return Frame{}, eris.Wrap(err, "read frame")
	}
	return Decode(data)
}

// send queues f without blocking. A peer that cannot keep up is dropped.
func (p *peer) send(f Frame) {
	data, err := Encode(f)
	if err != nil {
		p.log.Error().Err(err).Msg("frame dropped")
		return
	}
	select {
	case <-p.done:
	case p.out <- data:
	default:
		p.log.Warn().Msg("send buffer full, disconnecting")
		p.close()
	}
}

func (p *peer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case data := <-p.out:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				p.log.Debug().Err(err).Msg("write failed")
				p.close()
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.close()
				return
			}
		}
	}
}

func (p *peer) close() {
	p.once.Do(func() {
		if p.unsub != nil {
			p.unsub()
		}
		close(p.done)
		_ = p.conn.Close()
	})
}
