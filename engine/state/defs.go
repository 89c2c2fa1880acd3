// Package state holds the duel's entity model: players, cards, creatures,
// slots, and the board that ties them together, plus the immutable content
// definitions they are built from.
package state

import "github.com/nathoo/moduel/types"

// Card stats used when content omits them.
const (
	DefaultAttack         = 1
	DefaultHealth         = 6
	DefaultMana           = "Soul"
	DefaultStartingHealth = 20
	DefaultActionsPerTurn = 1
)

// Defs holds the immutable content loaded from Lua.
type Defs struct {
	Cards map[string]types.CardDef
	Decks map[string][]string
	Rules types.RulesDef
}

// NewDefs returns empty definitions with default rules.
func NewDefs() *Defs {
	return &Defs{
		Cards: map[string]types.CardDef{},
		Decks: map[string][]string{},
		Rules: types.RulesDef{
			StartingHealth: DefaultStartingHealth,
			ActionsPerTurn: DefaultActionsPerTurn,
		},
	}
}

// Card returns the definition for key. Unknown keys get default stats so a
// client-supplied deck never stalls setup.
func (d *Defs) Card(key string) types.CardDef {
	if def, ok := d.Cards[key]; ok {
		return def
	}
	return types.CardDef{
		ID:     key,
		Name:   key,
		Attack: DefaultAttack,
		Health: DefaultHealth,
		Mana:   DefaultMana,
	}
}

// StartingHealth returns the configured starting health, or the default.
func (d *Defs) StartingHealth() int {
	if d.Rules.StartingHealth > 0 {
		return d.Rules.StartingHealth
	}
	return DefaultStartingHealth
}

// ActionsPerTurn returns the configured action budget, or the default.
func (d *Defs) ActionsPerTurn() int {
	if d.Rules.ActionsPerTurn > 0 {
		return d.Rules.ActionsPerTurn
	}
	return DefaultActionsPerTurn
}
