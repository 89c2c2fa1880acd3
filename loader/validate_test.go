package loader

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/types"
)

func validDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Cards["elf"] = types.CardDef{ID: "elf", Name: "Elf", Attack: 2, Health: 3, Mana: "Soul"}
	defs.Decks["main"] = []string{"elf"}
	return defs
}

func TestValidate_Valid(t *testing.T) {
	if err := validate(validDefs(), zerolog.Nop()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*state.Defs)
		want   string
	}{
		{"no decks", func(d *state.Defs) { d.Decks = map[string][]string{} }, "at least one Deck"},
		{"unknown card", func(d *state.Defs) { d.Decks["main"] = []string{"orc"} }, `undefined card "orc"`},
		{"zero health", func(d *state.Defs) {
			d.Cards["elf"] = types.CardDef{ID: "elf", Health: 0}
		}, "health must be positive"},
		{"negative attack", func(d *state.Defs) {
			d.Cards["elf"] = types.CardDef{ID: "elf", Attack: -2, Health: 1}
		}, "attack must not be negative"},
		{"bad starting health", func(d *state.Defs) { d.Rules.StartingHealth = 0 }, "starting_health"},
		{"bad budget", func(d *state.Defs) { d.Rules.ActionsPerTurn = -1 }, "actions_per_turn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := validDefs()
			tt.mutate(defs)
			err := validate(defs, zerolog.Nop())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_UnusedCardWarns(t *testing.T) {
	defs := validDefs()
	defs.Cards["spare"] = types.CardDef{ID: "spare", Health: 1}

	var buf strings.Builder
	if err := validate(defs, zerolog.New(&buf)); err != nil {
		t.Fatalf("warnings must not fail validation: %v", err)
	}
	if !strings.Contains(buf.String(), `card \"spare\" is not in any deck`) {
		t.Errorf("expected warning logged, got %q", buf.String())
	}
}
