package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/semantik/go-server/internal/config"
	"github.com/semantik/go-server/internal/game"
	"github.com/semantik/go-server/internal/httpserver"
	"github.com/semantik/go-server/internal/rank"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	oracle, err := rank.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load rank dataset")
	}
	targets, words := oracle.Stats()
	log.Info().Int("targets", targets).Int("words", words).Msg("rank dataset loaded")

	rooms := game.NewRooms(cfg.Game, oracle)

	// Idle-room reaper: rooms themselves have no background timers (all
	// timeouts are lazy), this only bounds memory for abandoned codes.
	if cfg.Rooms.TTL > 0 {
		go func() {
			for range time.Tick(cfg.Rooms.TTL / 4) {
				if n := rooms.EvictIdle(cfg.Rooms.TTL); n > 0 {
					log.Info().Int("evicted", n).Msg("idle rooms reaped")
				}
			}
		}()
	}

	srv := httpserver.New(rooms, oracle, cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	log.Info().Str("addr", cfg.HTTP.Addr).Msg("starting go-server")
	if err := srv.Start(cfg.HTTP.Addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
