package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/config"
)

const (
	defaultConfigPath     = "data/game_config.json"
	defaultIdentitiesPath = "data/bot_identities.json"
)

// InitModule wires RPCs, hooks and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	configPath := defaultConfigPath
	if p := env[EnvConfigPath]; p != "" {
		configPath = p
	}
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("InitModule: Using default game config: %v", err)
	}

	identitiesPath := defaultIdentitiesPath
	if p := env[EnvBotIdentities]; p != "" {
		identitiesPath = p
	}
	if err := bot.LoadIdentities(identitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else if err := bot.ProvisionBots(ctx, nk, logger); err != nil {
		logger.Warn("InitModule: Could not provision bots: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameGdy, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	logger.Info("Gdy Go module loaded.")
	return nil
}
