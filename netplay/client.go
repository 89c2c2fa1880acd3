package netplay

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/moduel/provider"
	"github.com/nathoo/moduel/types"
)

// Settings are sent by a joining player.
type Settings struct {
	UserID string
	Deck   []string
}

// Client is a joined player's connection to a host.
type Client struct {
	// PlayerID and Row are assigned by the host during the handshake.
	PlayerID types.EntityID
	Row      int

	conn   *websocket.Conn
	remote *provider.Remote
	log    zerolog.Logger

	wmu  sync.Mutex
	once sync.Once
	done chan struct{}
}

// Dial connects to a host, sends settings, and waits until the duel is
// ready. Messages are not read until Listen is called, so the caller can
// register a handler on Provider first without missing the setup.
func Dial(ctx context.Context, url string, settings Settings) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "websocket dial failed")
	}
	c := &Client{
		conn: conn,
		log:  log.Logger.With().Str("component", "netplay").Str("user_id", settings.UserID).Logger(),
		done: make(chan struct{}),
	}
	c.remote = provider.NewRemote(settings.UserID, c)

	if err := c.write(Frame{T: FramePlayerSettings, UserID: settings.UserID, Deck: settings.Deck}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := c.handshake(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) handshake(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}
	confirmed := false
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return eris.Wrap(err, "waiting for game_ready")
		}
		f, err := Decode(data)
		if err != nil {
			return err
		}
		switch f.T {
		case FrameConfirmUserID:
			c.PlayerID, c.Row = f.Player, f.Row
			confirmed = true
		case FrameGameReady:
			if !confirmed {
				return eris.New("game_ready before confirm_user_id")
			}
			c.log.Info().Uint32("player", uint32(c.PlayerID)).Msg("joined duel")
			return nil
		default:
			return eris.Errorf("unexpected %s frame during handshake", f.T)
		}
	}
}

// Provider returns the joined player's provider.
func (c *Client) Provider() *provider.Remote { return c.remote }

// Listen starts delivering host messages to the provider in arrival order.
func (c *Client) Listen() {
	go c.readLoop()
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Send implements provider.Transport.
func (c *Client) Send(name string, args []string) error {
	return c.write(Frame{T: FrameRequest, Name: name, Args: args})
}

// Close sends a close frame and drops the connection.
func (c *Client) Close() error {
	c.wmu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.wmu.Unlock()
	err := c.conn.Close()
	c.once.Do(func() { close(c.done) })
	return err
}

func (c *Client) write(f Frame) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return eris.Wrap(err, "write frame")
	}
	return nil
}

func (c *Client) readLoop() {
	defer c.once.Do(func() { close(c.done) })
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Err(err).Msg("connection closed")
			}
			return
		}
		f, err := Decode(data)
		if err != nil {
			c.log.Warn().Err(err).Msg("bad frame")
			continue
		}
		if f.T != FrameRequest {
			continue
		}
		c.remote.Deliver(f.Name, f.Args)
	}
}
