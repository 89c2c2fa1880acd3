package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nathoo/moduel/engine/state"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks compiled defs for consistency. Warnings are logged and
// never fail the load.
func validate(defs *state.Defs, l zerolog.Logger) error {
	ve := &ValidationError{}

	if defs.Rules.StartingHealth <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Rules.starting_health must be positive, got %d", defs.Rules.StartingHealth))
	}
	if defs.Rules.ActionsPerTurn <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Rules.actions_per_turn must be positive, got %d", defs.Rules.ActionsPerTurn))
	}

	for _, key := range sortedKeys(defs.Cards) {
		card := defs.Cards[key]
		if card.Health <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("card %q health must be positive, got %d", key, card.Health))
		}
		if card.Attack < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("card %q attack must not be negative, got %d", key, card.Attack))
		}
	}

	if len(defs.Decks) == 0 {
		ve.Errors = append(ve.Errors, "at least one Deck is required")
	}
	used := map[string]bool{}
	for _, name := range sortedKeys(defs.Decks) {
		deck := defs.Decks[name]
		if len(deck) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("deck %q is empty", name))
		}
		for _, key := range deck {
			used[key] = true
			if _, ok := defs.Cards[key]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf("deck %q references undefined card %q", name, key))
			}
		}
	}

	for _, key := range sortedKeys(defs.Cards) {
		if !used[key] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("card %q is not in any deck", key))
		}
	}
	for _, w := range ve.Warnings {
		l.Warn().Msg(w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
