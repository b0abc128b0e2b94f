// Standalone websocket table server for private games with friends and bots.
package main

import (
	"flag"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"
	_ "github.com/joho/godotenv/autoload"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/config"
	"github.com/ritksm/gdy/internal/server"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	addr := flag.String("addr", envOr("GDY_ADDR", ":8080"), "Listen address")
	configPath := flag.String("config", envOr("GDY_CONFIG_PATH", "data/game_config.json"), "Game config file")
	identitiesPath := flag.String("bot_identities", envOr("GDY_BOT_IDENTITIES_PATH", "data/bot_identities.json"), "Bot identity file")
	flag.Parse()

	glog.Info("Starting Gdy table server...")

	if err := config.LoadGameConfig(*configPath); err != nil {
		glog.Warningf("Using default game config: %v", err)
	}
	cfg := config.GetGameConfig()

	if err := bot.LoadIdentities(*identitiesPath); err != nil {
		glog.Warningf("Could not load bot identities: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	service, err := app.NewServiceFromConfig(rng, cfg)
	if err != nil {
		glog.Fatal(err)
	}

	hub := server.NewHub(service, server.Options{
		MaxPlayers: cfg.MaxPlayers,
		BotLevel:   bot.BotLevel(cfg.Bots.Level),
	})
	go hub.Run()
	defer hub.Stop()

	glog.Infof("Listening on %s", *addr)
	glog.Fatal(http.ListenAndServe(*addr, server.NewMux(hub)))
}
