package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the content constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Card "key" { ... } is curried: Card("key") returns a function that takes a table.
	L.SetGlobal("Card", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.cards = append(coll.cards, rawCard{key: key, table: tbl, file: coll.file})
			return 0
		}))
		return 1
	}))

	// Deck "name" { "key", ... }
	L.SetGlobal("Deck", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.decks = append(coll.decks, rawDeck{name: name, table: tbl, file: coll.file})
			return 0
		}))
		return 1
	}))

	// Rules { starting_health = 20, actions_per_turn = 1 }
	L.SetGlobal("Rules", L.NewFunction(func(L *lua.LState) int {
		coll.rules = L.CheckTable(1)
		return 0
	}))
}
