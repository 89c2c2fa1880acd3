// Package transcript records a duel as JSON: the seed, the seated players,
// every submitted command, and every message the state machine produced.
// Replaying the commands against a fresh engine with the same seed and
// players reproduces the messages.
package transcript

import (
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/nathoo/moduel/types"
)

// FormatVersion is written into every transcript.
const FormatVersion = "1"

// Seat describes one player at setup.
type Seat struct {
	UserID    string   `json:"user_id"`
	Deck      []string `json:"deck"`
	Automated bool     `json:"automated,omitempty"`
}

// Transcript is the JSON-serializable duel log.
type Transcript struct {
	Version  string          `json:"version"`
	Seed     int64           `json:"seed"`
	Seats    []Seat          `json:"seats"`
	Commands []types.Command `json:"commands"`
	Messages []types.Message `json:"messages"`
	Winner   types.EntityID  `json:"winner,omitempty"`
}

// Recorder accumulates a transcript. Safe for concurrent use: the session
// loop writes while UIs read.
type Recorder struct {
	mu sync.Mutex
	t  Transcript
}

// NewRecorder starts a transcript for a duel seeded with seed.
func NewRecorder(seed int64, seats ...Seat) *Recorder {
	return &Recorder{t: Transcript{
		Version:  FormatVersion,
		Seed:     seed,
		Seats:    seats,
		Commands: []types.Command{},
		Messages: []types.Message{},
	}}
}

// Command records a submitted command, applied or not.
func (r *Recorder) Command(cmd types.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t.Commands = append(r.t.Commands, cmd)
}

// Messages records produced messages in order.
func (r *Recorder) Messages(msgs []types.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t.Messages = append(r.t.Messages, msgs...)
	for _, m := range msgs {
		if m.Name == types.MsgEndGame && len(m.Args) > 0 {
			r.t.Winner = parseID(m.Args[0])
		}
	}
}

// Snapshot returns a copy of the transcript so far.
func (r *Recorder) Snapshot() Transcript {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.t
	out.Seats = append([]Seat(nil), r.t.Seats...)
	out.Commands = append([]types.Command{}, r.t.Commands...)
	out.Messages = append([]types.Message{}, r.t.Messages...)
	return out
}

// Save serializes t to indented JSON.
func Save(t Transcript) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "encode transcript")
	}
	return data, nil
}

// Load deserializes a transcript.
func Load(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "decode transcript")
	}
	if t.Version != FormatVersion {
		return nil, eris.Errorf("unsupported transcript version %q", t.Version)
	}
	// Ensure slices are never nil after load.
	if t.Commands == nil {
		t.Commands = []types.Command{}
	}
	if t.Messages == nil {
		t.Messages = []types.Message{}
	}
	return &t, nil
}

func parseID(s string) types.EntityID {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return types.EntityID(n)
}
