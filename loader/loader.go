// Package loader loads Lua card content into Go structs at startup.
// The Lua VM is discarded after loading; nothing runs Lua during a duel.
package loader

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/moduel/engine/state"
)

//go:embed content/*.lua
var defaultContent embed.FS

// collector accumulates Lua definitions during file execution.
type collector struct {
	file  string
	cards []rawCard
	decks []rawDeck
	rules *lua.LTable
}

// Load reads all .lua files from dir, compiles them into card definitions,
// validates them, and returns the immutable Defs.
func Load(dir string) (*state.Defs, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadDefault loads the content built into the binary.
func LoadDefault() (*state.Defs, error) {
	return LoadFS(defaultContent, "content")
}

// LoadFS is Load over any file system.
func LoadFS(fsys fs.FS, dir string) (*state.Defs, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, eris.Wrapf(err, "reading content directory %s", dir)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, eris.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		data, err := fs.ReadFile(fsys, path.Join(dir, f))
		if err != nil {
			return nil, eris.Wrapf(err, "reading %s", f)
		}
		coll.file = f
		fn, err := L.Load(bytes.NewReader(data), f)
		if err != nil {
			return nil, eris.Wrapf(err, "parsing %s", f)
		}
		L.Push(fn)
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			return nil, eris.Wrapf(err, "executing %s", f)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, err
	}

	l := log.Logger.With().Str("component", "loader").Logger()
	if err := validate(defs, l); err != nil {
		return nil, err
	}
	l.Debug().Int("cards", len(defs.Cards)).Int("decks", len(defs.Decks)).Msg("content loaded")
	return defs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not reseed the shared generator.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
