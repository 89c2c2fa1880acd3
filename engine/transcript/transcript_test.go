package transcript

import (
	"strings"
	"testing"

	"github.com/nathoo/moduel/types"
)

func TestRoundTrip(t *testing.T) {
	rec := NewRecorder(42,
		Seat{UserID: "alice", Deck: []string{"elf", "succubus"}},
		Seat{UserID: "bot", Deck: []string{"alraune"}, Automated: true},
	)
	rec.Command(types.Command{Name: types.CmdPlayCard, Actor: 1, Args: []int{3, 15}})
	rec.Command(types.Command{Name: types.CmdCharge, Actor: 2})
	rec.Messages([]types.Message{
		{Target: 1, Name: types.MsgRemHandCard, Args: []string{"3"}},
		{Name: types.MsgEndGame, Args: []string{"2"}},
	})

	data, err := Save(rec.Snapshot())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.Seed != 42 {
		t.Errorf("seed = %d, want 42", got.Seed)
	}
	if len(got.Seats) != 2 || got.Seats[1].UserID != "bot" || !got.Seats[1].Automated {
		t.Errorf("seats not preserved: %+v", got.Seats)
	}
	if len(got.Commands) != 2 || got.Commands[0].Args[1] != 15 {
		t.Errorf("commands not preserved: %+v", got.Commands)
	}
	if len(got.Messages) != 2 || got.Messages[0].Target != 1 {
		t.Errorf("messages not preserved: %+v", got.Messages)
	}
	if got.Winner != 2 {
		t.Errorf("winner = %d, want 2", got.Winner)
	}
}

func TestLoad_EmptyListsNeverNil(t *testing.T) {
	got, err := Load([]byte(`{"version":"1","seed":7}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Commands == nil || got.Messages == nil {
		t.Error("expected non-nil command and message slices")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"malformed", `{not json`, "decode transcript"},
		{"wrong version", `{"version":"99"}`, "unsupported transcript version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	rec := NewRecorder(1)
	rec.Command(types.Command{Name: types.CmdCharge, Actor: 1})
	snap := rec.Snapshot()
	rec.Command(types.Command{Name: types.CmdCharge, Actor: 2})

	if len(snap.Commands) != 1 {
		t.Errorf("snapshot changed after recording: %d commands", len(snap.Commands))
	}
}
