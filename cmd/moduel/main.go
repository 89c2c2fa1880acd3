// Moduel is a two-player lane duel played in the terminal.
// Usage: moduel [--version] [--plain] [--settings <file>] [--content <dir>]
//
//	[--host | --join <url> | --selfplay [--dump <file>]]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/moduel/ai"
	"github.com/nathoo/moduel/cli"
	"github.com/nathoo/moduel/client"
	"github.com/nathoo/moduel/config"
	"github.com/nathoo/moduel/engine"
	"github.com/nathoo/moduel/engine/state"
	"github.com/nathoo/moduel/engine/transcript"
	"github.com/nathoo/moduel/loader"
	"github.com/nathoo/moduel/netplay"
	"github.com/nathoo/moduel/provider"
	"github.com/nathoo/moduel/tui"
	"github.com/nathoo/moduel/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: moduel [--version] [--plain] [--settings <file>] [--content <dir>] [--host | --join <url> | --selfplay [--dump <file>]]"

type options struct {
	plain    bool
	host     bool
	selfplay bool
	joinURL  string
	settings string
	content  string
	dumpPath string
}

func main() {
	var opts options

	args := os.Args[1:]
	value := func(i *int, flag string) string {
		if *i+1 >= len(args) {
			config.Exitf("%s requires a value", flag)
		}
		*i++
		return args[*i]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("moduel %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			opts.plain = true
		case "--host":
			opts.host = true
		case "--selfplay":
			opts.selfplay = true
		case "--join":
			opts.joinURL = value(&i, "--join")
		case "--settings":
			opts.settings = value(&i, "--settings")
		case "--content":
			opts.content = value(&i, "--content")
		case "--dump":
			opts.dumpPath = value(&i, "--dump")
		default:
			config.Exitf("%s", usage)
		}
	}

	settings, err := config.Load(opts.settings)
	if err != nil {
		config.Exitf("Error loading settings: %v", err)
	}
	if opts.content != "" {
		settings.Content = opts.content
	}

	// The full-screen UI owns the terminal; logs would tear it.
	interactive := !opts.selfplay
	fullscreen := interactive && !opts.plain && isTerminal()
	var logOut io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if fullscreen {
		logOut = io.Discard
	}
	log.Logger = zerolog.New(logOut).Level(settings.Level()).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if opts.joinURL != "" {
		runJoin(ctx, settings, opts.joinURL, fullscreen)
		return
	}

	defs, err := loadContent(settings.Content)
	if err != nil {
		config.Exitf("Error loading content: %v", err)
	}

	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := engine.NewSession(engine.New(defs, engine.WithSeed(seed), engine.WithLogger(log.Logger)))

	switch {
	case opts.selfplay:
		runSelfPlay(ctx, s, defs, settings, seed, opts.dumpPath)
	case opts.host:
		runHost(ctx, s, defs, settings, fullscreen)
	default:
		runLocal(ctx, s, defs, settings, seed, fullscreen)
	}
}

func loadContent(dir string) (*state.Defs, error) {
	if dir == "" {
		return loader.LoadDefault()
	}
	return loader.Load(dir)
}

// playerDeck returns the user's explicit card list, or their named deck.
func playerDeck(defs *state.Defs, settings config.Settings) []string {
	if len(settings.DeckCards) > 0 {
		return settings.DeckCards
	}
	return deck(defs, settings.Deck)
}

func deck(defs *state.Defs, name string) []string {
	d, ok := defs.Decks[name]
	if !ok {
		config.Exitf("Unknown deck %q", name)
	}
	return d
}

// runLocal plays the user against the computer.
func runLocal(ctx context.Context, s *engine.Session, defs *state.Defs, settings config.Settings, seed int64, fullscreen bool) {
	p1 := s.NewPlayer(settings.UserID, playerDeck(defs, settings))
	p2 := s.NewPlayer(settings.AI.UserID, deck(defs, settings.AI.Deck))
	p2.Automated = settings.AI.Mode == config.ModeInline

	local := provider.NewLocal(s, p1.UserID, p1.ID())
	defer local.Close()
	front := newFrontEnd(local, newTable(defs, p1.ID(), 0), fullscreen, dumper(s))

	if err := s.Start(ctx, p1, p2); err != nil {
		config.Exitf("Error starting duel: %v", err)
	}
	if settings.AI.Mode == config.ModeThreaded {
		bot := ai.New(s, p2.ID(), seed+1)
		bot.Poll = settings.AI.Poll
		go func() {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("computer player stopped")
			}
		}()
	}
	front()
}

// runHost waits for a peer and plays against it.
func runHost(ctx context.Context, s *engine.Session, defs *state.Defs, settings config.Settings, fullscreen bool) {
	p1 := s.NewPlayer(settings.UserID, playerDeck(defs, settings))
	h := netplay.NewHost(ctx, s, p1)
	defer h.Local().Close()

	srv := &http.Server{Addr: settings.Host.Addr(), Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("host stopped")
		}
	}()
	defer srv.Close()

	front := newFrontEnd(h.Local(), newTable(defs, p1.ID(), 0), fullscreen, dumper(s))
	fmt.Fprintf(os.Stderr, "Waiting for an opponent on ws://%s ...\n", settings.Host.Addr())
	select {
	case <-h.Ready():
	case <-ctx.Done():
		return
	}
	front()
}

// runJoin connects to a host as player two.
func runJoin(ctx context.Context, settings config.Settings, url string, fullscreen bool) {
	defs, err := loadContent(settings.Content)
	if err != nil {
		config.Exitf("Error loading content: %v", err)
	}
	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	c, err := netplay.Dial(dialCtx, url, netplay.Settings{
		UserID: settings.UserID,
		Deck:   playerDeck(defs, settings),
	})
	cancel()
	if err != nil {
		config.Exitf("Error joining duel: %v", err)
	}
	defer c.Close()

	front := newFrontEnd(c.Provider(), newTable(defs, c.PlayerID, c.Row), fullscreen, nil)
	c.Listen()
	front()
}

// runSelfPlay lets two computer players finish a duel and reports the result.
func runSelfPlay(ctx context.Context, s *engine.Session, defs *state.Defs, settings config.Settings, seed int64, dumpPath string) {
	p1 := s.NewPlayer(settings.UserID, playerDeck(defs, settings))
	p2 := s.NewPlayer(settings.AI.UserID, deck(defs, settings.AI.Deck))
	if err := s.Start(ctx, p1, p2); err != nil {
		config.Exitf("Error starting duel: %v", err)
	}

	for i, p := range []*state.Player{p1, p2} {
		bot := ai.New(s, p.ID(), seed+int64(i)+1)
		bot.Poll = settings.AI.Poll
		go func() { _ = bot.Run(ctx) }()
	}
	s.Wait()

	view := s.Snapshot()
	tr := s.Transcript()
	log.Info().
		Bool("finished", view.Over).
		Uint32("winner", uint32(view.Winner)).
		Int("turns", view.Turn).
		Int("commands", len(tr.Commands)).
		Msg("self-play done")

	if dumpPath != "" {
		data, err := transcript.Save(tr)
		if err != nil {
			config.Exitf("Error encoding transcript: %v", err)
		}
		if err := os.WriteFile(dumpPath, data, 0o644); err != nil {
			config.Exitf("Error writing transcript: %v", err)
		}
	}
}

func newTable(defs *state.Defs, self types.EntityID, row int) *client.Table {
	names := make(map[string]string, len(defs.Cards))
	for key, c := range defs.Cards {
		names[key] = c.Name
	}
	return client.NewTable(self, row,
		client.WithNames(names),
		client.WithStartingHealth(defs.StartingHealth()))
}

func dumper(s *engine.Session) func() ([]byte, error) {
	return func() ([]byte, error) { return transcript.Save(s.Transcript()) }
}

// newFrontEnd subscribes a UI to p and returns the function that runs it.
// Subscribing happens now so the UI sees the duel's setup messages.
func newFrontEnd(p provider.GameProvider, t *client.Table, fullscreen bool, dump func() ([]byte, error)) func() {
	if fullscreen {
		m := tui.New(p, t, tui.WithDump(dump))
		return func() {
			if err := tui.Run(m); err != nil {
				config.Exitf("Error: %v", err)
			}
		}
	}
	c := cli.New(p, t)
	c.Dump = dump
	return c.Run
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
