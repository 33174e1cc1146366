// internal/game/config.go
//
// Tunables for room lifecycle, arbitration, and scoring.
// Defaults reproduce the long-standing production values; everything here is
// overridable from the environment via internal/config.

package game

import "time"

// Config carries every game-level tunable. One Config is shared by all rooms
// created by a Rooms service.
type Config struct {
	MaxPlayers     int           // roster cap per room
	RoundTimeLimit time.Duration // wall-clock budget for one secret word
	TopReveal      int           // nearest neighbors revealed when a round ends

	// Cooldown arbitration (ModeCooldown).
	CooldownWindow      time.Duration // lockout after each accepted guess
	CooldownBasePenalty int           // first penalty when guessing while hot; doubles per streak

	// Turn arbitration (ModeTurn).
	TurnTimeLimit        time.Duration // per-turn budget
	ReducedTurnTimeLimit time.Duration // budget once a player keeps timing out
	TurnTimeoutThreshold int           // consecutive timeouts before the budget shrinks
	TurnTimeoutPenalty   int           // points charged to a skipped player

	Scoring ScoringConfig
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:     8,
		RoundTimeLimit: 5 * time.Minute,
		TopReveal:      20,

		CooldownWindow:      10 * time.Second,
		CooldownBasePenalty: 1,

		TurnTimeLimit:        30 * time.Second,
		ReducedTurnTimeLimit: 15 * time.Second,
		TurnTimeoutThreshold: 2,
		TurnTimeoutPenalty:   2,

		Scoring: DefaultScoring(),
	}
}
