// Package config holds user settings: a YAML file overridden by MODUEL_*
// environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// AI modes.
const (
	ModeInline   = "inline"
	ModeThreaded = "threaded"
)

// Settings are the user's preferences.
type Settings struct {
	UserID   string `yaml:"user_id" env:"MODUEL_USER_ID"`
	Deck     string `yaml:"deck" env:"MODUEL_DECK"`
	Content  string `yaml:"content" env:"MODUEL_CONTENT"`
	Seed     int64  `yaml:"seed" env:"MODUEL_SEED"`
	LogLevel string `yaml:"log_level" env:"MODUEL_LOG_LEVEL"`

	// DeckCards, when set, is played instead of the named deck.
	DeckCards []string `yaml:"deck_cards" env:"MODUEL_DECK_CARDS"`

	// TimeOutPlayers is accepted for compatibility with older settings
	// files. Nothing enforces it.
	TimeOutPlayers bool `yaml:"time_out_players" env:"MODUEL_TIME_OUT_PLAYERS"`

	Host HostSettings `yaml:"host" envPrefix:"MODUEL_HOST_"`
	AI   AISettings   `yaml:"ai" envPrefix:"MODUEL_AI_"`
}

// HostSettings is where a hosted duel listens.
type HostSettings struct {
	Address string `yaml:"address" env:"ADDRESS"`
	Port    int    `yaml:"port" env:"PORT"`
}

// Addr returns address:port.
func (h HostSettings) Addr() string {
	return net.JoinHostPort(h.Address, strconv.Itoa(h.Port))
}

// AISettings configure the computer opponent.
type AISettings struct {
	UserID string        `yaml:"user_id" env:"USER_ID"`
	Deck   string        `yaml:"deck" env:"DECK"`
	Mode   string        `yaml:"mode" env:"MODE"`
	Poll   time.Duration `yaml:"poll" env:"POLL"`
}

// Default returns settings with a fresh user id.
func Default() Settings {
	return Settings{
		UserID:   uuid.NewString(),
		Deck:     "starter",
		LogLevel: "info",
		Host: HostSettings{
			Address: "127.0.0.1",
			Port:    7777,
		},
		AI: AISettings{
			UserID: "computer",
			Deck:   "ai",
			Mode:   ModeInline,
			Poll:   500 * time.Millisecond,
		},
	}
}

// Load reads path over the defaults, then applies the environment. An empty
// path skips the file.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, eris.Wrapf(err, "reading settings %s", path)
		}
		if err := yaml.Unmarshal(b, &s); err != nil {
			return Settings{}, eris.Wrapf(err, "parsing settings %s", path)
		}
		if err := applyLegacy(b, &s); err != nil {
			return Settings{}, eris.Wrapf(err, "parsing settings %s", path)
		}
	}
	if err := env.Parse(&s); err != nil {
		return Settings{}, eris.Wrap(err, "parse env")
	}
	if s.UserID == "" {
		s.UserID = uuid.NewString()
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// legacySettings are the flat keys of the older settings.json layout.
type legacySettings struct {
	UserID           string    `yaml:"UserID"`
	Deck             yaml.Node `yaml:"Deck"`
	HostAddress      string    `yaml:"HostAddress"`
	HostPort         int       `yaml:"HostPort"`
	ContentDirectory string    `yaml:"ContentDirectory"`
}

// applyLegacy copies any older-layout keys in b onto s. Deck may be a deck
// name or a list of card ids.
func applyLegacy(b []byte, s *Settings) error {
	var l legacySettings
	if err := yaml.Unmarshal(b, &l); err != nil {
		return err
	}
	if l.UserID != "" {
		s.UserID = l.UserID
	}
	if l.HostAddress != "" {
		s.Host.Address = l.HostAddress
	}
	if l.HostPort != 0 {
		s.Host.Port = l.HostPort
	}
	if l.ContentDirectory != "" {
		s.Content = l.ContentDirectory
	}
	switch l.Deck.Kind {
	case yaml.ScalarNode:
		s.Deck = l.Deck.Value
	case yaml.SequenceNode:
		var cards []string
		if err := l.Deck.Decode(&cards); err != nil {
			return eris.Wrap(err, "Deck")
		}
		s.DeckCards = cards
	}
	return nil
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	switch s.AI.Mode {
	case ModeInline, ModeThreaded:
	default:
		return eris.Errorf("ai.mode must be %q or %q, got %q", ModeInline, ModeThreaded, s.AI.Mode)
	}
	if s.AI.Poll <= 0 {
		return eris.Errorf("ai.poll must be positive, got %s", s.AI.Poll)
	}
	if s.Host.Port < 0 || s.Host.Port > 65535 {
		return eris.Errorf("host.port out of range: %d", s.Host.Port)
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return eris.Wrapf(err, "log_level %q", s.LogLevel)
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (s Settings) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || s.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Exitf prints a message to stderr and exits with status 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
