// internal/config/config.go
//
// Environment-backed runtime configuration.
//
// Pattern: load once in main, validate, pass down explicitly. No globals.
// `godotenv.Load()` runs before this in main, so a local `.env` feeds the
// same variables in development.
//
// Variables (defaults in parentheses):
//   PORT / HTTP_ADDR              listen address (":5180")
//   LOG_LEVEL                     zerolog level ("info")
//   PLAYER_TOKEN_SECRET           HMAC secret for player tokens (dev default)
//   PLAYER_TOKEN_TTL              token lifetime ("720h")
//   ROOM_TTL                      idle-room eviction bound; 0 disables ("0")
//   RANK_DB_FILE / RANK_DATA_FILE dataset paths (read by internal/rank)
//   ROUND_TIME_LIMIT              ("5m")      COOLDOWN_DURATION     ("10s")
//   COOLDOWN_BASE_PENALTY         ("1")       MAX_PLAYERS           ("8")
//   TOP_REVEAL                    ("20")      TURN_TIME_LIMIT       ("30s")
//   TURN_REDUCED_TIME_LIMIT       ("15s")     TURN_TIMEOUT_THRESHOLD("2")
//   TURN_TIMEOUT_PENALTY          ("2")       REGRESSION_PENALTY    ("0", off)
//   REGRESSION_WINDOW             ("10")      BEST_WORD_BONUS       ("0", off)

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/semantik/go-server/internal/game"
)

// Config describes all runtime settings for the server.
type Config struct {
	HTTP struct {
		Addr string
	}

	Log struct {
		Level string
	}

	Auth struct {
		TokenSecret string
		TokenTTL    time.Duration
	}

	Rooms struct {
		TTL time.Duration // idle eviction bound; 0 disables the reaper
	}

	Game game.Config
}

// LoadFromEnv reads, defaults, and validates the configuration.
func LoadFromEnv() (Config, error) {
	var c Config

	port := envString("PORT", "5180")
	c.HTTP.Addr = envString("HTTP_ADDR", ":"+port)
	c.Log.Level = envString("LOG_LEVEL", "info")

	c.Auth.TokenSecret = envString("PLAYER_TOKEN_SECRET", "dev-secret-change-me")
	c.Auth.TokenTTL = envDuration("PLAYER_TOKEN_TTL", 30*24*time.Hour)

	c.Rooms.TTL = envDuration("ROOM_TTL", 0)

	g := game.DefaultConfig()
	g.MaxPlayers = envInt("MAX_PLAYERS", g.MaxPlayers)
	g.RoundTimeLimit = envDuration("ROUND_TIME_LIMIT", g.RoundTimeLimit)
	g.TopReveal = envInt("TOP_REVEAL", g.TopReveal)
	g.CooldownWindow = envDuration("COOLDOWN_DURATION", g.CooldownWindow)
	g.CooldownBasePenalty = envInt("COOLDOWN_BASE_PENALTY", g.CooldownBasePenalty)
	g.TurnTimeLimit = envDuration("TURN_TIME_LIMIT", g.TurnTimeLimit)
	g.ReducedTurnTimeLimit = envDuration("TURN_REDUCED_TIME_LIMIT", g.ReducedTurnTimeLimit)
	g.TurnTimeoutThreshold = envInt("TURN_TIMEOUT_THRESHOLD", g.TurnTimeoutThreshold)
	g.TurnTimeoutPenalty = envInt("TURN_TIMEOUT_PENALTY", g.TurnTimeoutPenalty)
	g.Scoring.RegressionPenalty = envInt("REGRESSION_PENALTY", g.Scoring.RegressionPenalty)
	g.Scoring.RegressionWindow = envInt("REGRESSION_WINDOW", g.Scoring.RegressionWindow)
	g.Scoring.BestBonus = envInt("BEST_WORD_BONUS", g.Scoring.BestBonus)
	c.Game = g

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configurations the server should refuse to start with.
func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Auth.TokenSecret == "" {
		return errors.New("PLAYER_TOKEN_SECRET is empty")
	}
	if c.Game.MaxPlayers < 1 {
		return fmt.Errorf("MAX_PLAYERS=%d is not a roster", c.Game.MaxPlayers)
	}
	if c.Game.RoundTimeLimit <= 0 {
		return errors.New("ROUND_TIME_LIMIT must be positive")
	}
	if c.Game.CooldownWindow <= 0 {
		return errors.New("COOLDOWN_DURATION must be positive")
	}
	if c.Game.TurnTimeLimit <= 0 || c.Game.ReducedTurnTimeLimit <= 0 {
		return errors.New("turn time limits must be positive")
	}
	if c.Game.ReducedTurnTimeLimit > c.Game.TurnTimeLimit {
		return errors.New("TURN_REDUCED_TIME_LIMIT exceeds TURN_TIME_LIMIT")
	}
	if c.Game.Scoring.RegressionPenalty > 0 {
		return errors.New("REGRESSION_PENALTY must be zero or negative")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
