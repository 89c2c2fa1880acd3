package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/types"
)

// rawCard holds a card table before compilation.
type rawCard struct {
	key   string
	file  string
	table *lua.LTable
}

// rawDeck holds a deck table before compilation.
type rawDeck struct {
	name  string
	file  string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getInt returns an int field and whether it was set.
func getInt(tbl *lua.LTable, key string) (int, bool) {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n), true
	}
	return 0, false
}

// compile turns collected tables into Defs. Structural problems (duplicate
// keys, non-string deck entries) are reported together.
func compile(coll *collector) (*state.Defs, error) {
	defs := state.NewDefs()
	ve := &ValidationError{}

	if coll.rules != nil {
		if n, ok := getInt(coll.rules, "starting_health"); ok {
			defs.Rules.StartingHealth = n
		}
		if n, ok := getInt(coll.rules, "actions_per_turn"); ok {
			defs.Rules.ActionsPerTurn = n
		}
	}

	for _, raw := range coll.cards {
		if _, dup := defs.Cards[raw.key]; dup {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: duplicate card %q", raw.file, raw.key))
			continue
		}
		defs.Cards[raw.key] = compileCard(raw)
	}

	for _, raw := range coll.decks {
		if _, dup := defs.Decks[raw.name]; dup {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: duplicate deck %q", raw.file, raw.name))
			continue
		}
		deck, errs := compileDeck(raw)
		ve.Errors = append(ve.Errors, errs...)
		defs.Decks[raw.name] = deck
	}

	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return defs, nil
}

func compileCard(raw rawCard) types.CardDef {
	def := types.CardDef{
		ID:     raw.key,
		Name:   getString(raw.table, "name"),
		Attack: state.DefaultAttack,
		Health: state.DefaultHealth,
		Mana:   getString(raw.table, "mana"),
	}
	if def.Name == "" {
		def.Name = raw.key
	}
	if def.Mana == "" {
		def.Mana = state.DefaultMana
	}
	if n, ok := getInt(raw.table, "attack"); ok {
		def.Attack = n
	}
	if n, ok := getInt(raw.table, "health"); ok {
		def.Health = n
	}
	return def
}

func compileDeck(raw rawDeck) ([]string, []string) {
	var (
		deck []string
		errs []string
	)
	for i := 1; i <= raw.table.MaxN(); i++ {
		s, ok := raw.table.RawGetInt(i).(lua.LString)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: deck %q entry %d is not a card key", raw.file, raw.name, i))
			continue
		}
		deck = append(deck, string(s))
	}
	return deck, errs
}

// sortedLuaFiles returns files sorted with rules.lua first, then alphabetical.
func sortedLuaFiles(files []string) []string {
	sorted := make([]string, 0, len(files))
	var rest []string
	for _, f := range files {
		if f == "rules.lua" {
			sorted = append(sorted, f)
		} else {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	return append(sorted, rest...)
}
