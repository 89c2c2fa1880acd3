// Package netplay carries a duel over websockets. The host runs the session
// and seats the first peer to join as player two; the client drives that
// player through a provider.Remote.
package netplay

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/nathoo/moduel/types"
)

// Frame types.
const (
	FrameRequest        = "request"
	FramePlayerSettings = "player_settings"
	FrameGameReady      = "game_ready"
	FrameConfirmUserID  = "confirm_user_id"
)

// Frame is one websocket text message. Request frames carry a command (peer
// to host) or a message (host to peer) in Name and Args.
type Frame struct {
	T      string         `json:"t"`
	Name   string         `json:"name,omitempty"`
	Args   []string       `json:"args,omitempty"`
	UserID string         `json:"user_id,omitempty"`
	Deck   []string       `json:"deck,omitempty"`
	Player types.EntityID `json:"player,omitempty"`
	Row    int            `json:"row,omitempty"`
}

// Encode serializes f.
func Encode(f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, eris.Wrap(err, "encode frame")
	}
	return data, nil
}

// Decode parses a frame and checks its type.
func Decode(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, eris.Wrap(err, "decode frame")
	}
	switch f.T {
	case FrameRequest, FramePlayerSettings, FrameGameReady, FrameConfirmUserID:
		return f, nil
	}
	return Frame{}, eris.Errorf("unknown frame type %q", f.T)
}
