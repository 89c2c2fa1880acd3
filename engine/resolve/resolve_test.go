package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/moduel/engine/registry"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/types"
)

func setup() (*registry.Registry, *state.Duel) {
	reg := registry.New()
	defs := state.NewDefs()
	p1 := state.NewPlayer(reg, defs, "a", []string{"elf"})
	p2 := state.NewPlayer(reg, defs, "b", nil)
	return reg, state.NewDuel(reg, defs, p1, p2)
}

func TestCard(t *testing.T) {
	reg, d := setup()
	want := d.Player1.Hand[0]

	got, err := Card(reg, want.ID())
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if got != want {
		t.Error("resolved the wrong card")
	}
}

func TestSlot(t *testing.T) {
	reg, d := setup()
	got, err := Slot(reg, d.Slots[3].ID())
	if err != nil {
		t.Fatalf("Slot: %v", err)
	}
	if got.Number != 3 {
		t.Errorf("Number = %d, want 3", got.Number)
	}
}

func TestPlayer(t *testing.T) {
	reg, d := setup()
	got, err := Player(reg, d.Player2.ID())
	if err != nil || got != d.Player2 {
		t.Errorf("Player = %v, %v", got, err)
	}
}

func TestNotFound(t *testing.T) {
	reg, _ := setup()
	_, err := Card(reg, 9999)

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if nf.ID != 9999 {
		t.Errorf("ID = %d", nf.ID)
	}
}

func TestWrongKind(t *testing.T) {
	reg, d := setup()
	tests := []struct {
		name string
		fn   func() error
		want string
	}{
		{"slot as card", func() error { _, err := Card(reg, d.Slots[0].ID()); return err }, "card"},
		{"card as slot", func() error { _, err := Slot(reg, d.Player1.Hand[0].ID()); return err }, "slot"},
		{"slot as player", func() error { _, err := Player(reg, d.Slots[0].ID()); return err }, "player"},
	}
	for _, tt := range tests {
		var ke *KindError
		if err := tt.fn(); !errors.As(err, &ke) {
			t.Errorf("%s: expected KindError, got %v", tt.name, err)
		} else if ke.Want != tt.want {
			t.Errorf("%s: Want = %q", tt.name, ke.Want)
		}
	}
}

func TestArg(t *testing.T) {
	args := []int{4, -1}
	if Arg(args, 0) != 4 {
		t.Error("Arg(0)")
	}
	if Arg(args, 1) != types.Broadcast {
		t.Error("negative arg should map to 0")
	}
	if Arg(args, 5) != types.Broadcast {
		t.Error("missing arg should map to 0")
	}
	if got := Arg([]int{4 + 1<<32}, 0); got != types.Broadcast {
		t.Errorf("oversized arg = %d, want 0", got)
	}
	if got := Arg([]int{1<<32 - 1}, 0); got != types.EntityID(1<<32-1) {
		t.Errorf("max id = %d", got)
	}
}
