package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ritksm/gdy/internal/domain"
)

// BotConfig controls how bots fill and play seats.
type BotConfig struct {
	Enabled bool   `json:"enabled"`
	Level   string `json:"level"`
	// MinDelaySeconds and MaxDelaySeconds bound the random pause before a bot acts.
	MinDelaySeconds int `json:"min_delay_seconds"`
	MaxDelaySeconds int `json:"max_delay_seconds"`
	// AutoFillDelaySeconds configures how many seconds to wait before adding bots to a solo human lobby.
	AutoFillDelaySeconds int `json:"auto_fill_delay_seconds"`
}

type GameConfig struct {
	MinPlayers          int       `json:"min_players"`
	MaxPlayers          int       `json:"max_players"`
	TurnDurationSeconds int       `json:"turn_duration_seconds"`
	TripleRule          string    `json:"triple_rule"`
	PairRun             string    `json:"pair_run"`
	SecureShuffle       bool      `json:"secure_shuffle"`
	Bots                BotConfig `json:"bots"`
}

// Default returns the configuration used when no file is loaded.
func Default() *GameConfig {
	return &GameConfig{
		MinPlayers:          domain.MinPlayers,
		MaxPlayers:          4,
		TurnDurationSeconds: 30,
		TripleRule:          domain.TripleRuleEqual.String(),
		PairRun:             domain.PairRunStrict.String(),
		Bots: BotConfig{
			Enabled:              true,
			Level:                "shed",
			MinDelaySeconds:      1,
			MaxDelaySeconds:      3,
			AutoFillDelaySeconds: 5,
		},
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := ReadGameConfig(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ReadGameConfig reads and validates a config file without touching the global.
// Fields missing from the file keep their Default values.
func ReadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}

	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetGameConfig returns the global game configuration, or Default if none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// Validate checks player bounds, rule names and bot delays.
func (c *GameConfig) Validate() error {
	if c.MinPlayers < domain.MinPlayers || c.MaxPlayers > domain.MaxPlayers || c.MinPlayers > c.MaxPlayers {
		return fmt.Errorf("invalid player bounds %d..%d (allowed %d..%d)", c.MinPlayers, c.MaxPlayers, domain.MinPlayers, domain.MaxPlayers)
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	if c.Bots.MinDelaySeconds < 0 || c.Bots.MaxDelaySeconds < c.Bots.MinDelaySeconds {
		return fmt.Errorf("invalid bot delay %d..%d", c.Bots.MinDelaySeconds, c.Bots.MaxDelaySeconds)
	}
	return nil
}

// Rules converts the configured rule names to a domain rule set.
func (c *GameConfig) Rules() (domain.Rules, error) {
	triple, err := domain.ParseTripleRule(c.TripleRule)
	if err != nil {
		return domain.Rules{}, err
	}
	pairRun, err := domain.ParsePairRunPolicy(c.PairRun)
	if err != nil {
		return domain.Rules{}, err
	}
	return domain.Rules{Triple: triple, PairRun: pairRun}, nil
}

// Shuffler returns the deck shuffler selected by SecureShuffle. A nil result
// lets the game fall back to its own seeded source.
func (c *GameConfig) Shuffler() domain.Shuffler {
	if c.SecureShuffle {
		return domain.SecureShuffler{}
	}
	return nil
}
