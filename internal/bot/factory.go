package bot

import (
	"fmt"

	"github.com/ritksm/gdy/internal/bot/brain"
)

// BotLevel names a strategy as used in configuration and bot identities.
type BotLevel string

const (
	BotLevelLowest BotLevel = "lowest"
	BotLevelShed   BotLevel = "shed"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelLowest:
		return &LowestBot{}, nil
	case BotLevelShed, "":
		return &ShedBot{Memory: brain.NewMemory()}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}
