// internal/game/types.go
//
// Core type definitions for rooms, rounds, guesses, and the read-only
// result/snapshot shapes handed to the transport layer.
//
// Mutable state (player, round, Room) is unexported and only ever touched
// under the owning room's lock. The exported structs here are value copies
// built while the lock is held; handlers may serialize them freely.

package game

import (
	"time"

	"github.com/semantik/go-server/internal/rank"
)

// Mode selects a room's arbitration strategy, fixed at creation.
type Mode string

const (
	// ModeCooldown: anyone may guess at any time; rapid repeat guessing is
	// taxed with an exponential penalty instead of being blocked.
	ModeCooldown Mode = "cooldown"
	// ModeTurn: exactly one player may guess at a time, enforced by a
	// rotating pointer and a per-turn time budget.
	ModeTurn Mode = "turn"
)

// player is the per-room, per-player mutable state.
type player struct {
	id   string
	name string

	score int // signed; penalties may push it negative

	// Cooldown arbitration bookkeeping.
	cooldownEnd    time.Time
	cooldownStreak int // consecutive guesses submitted while still hot

	// Turn arbitration bookkeeping.
	timeoutStreak int // consecutive skipped turns
}

// round is one secret word's lifecycle within a room.
type round struct {
	number    int
	secret    string // normalized; never revealed until the round ends
	startedAt time.Time

	guesses []Guess
	seen    map[string]struct{} // normalized words already in the log

	found    bool
	winner   string // player id, "" until found
	timedOut bool
	bestRank int // best (lowest) rank seen so far; 0 = none yet
}

// Guess is one immutable entry of a round's guess log.
type Guess struct {
	Word            string `json:"word"`
	Rank            int    `json:"rank"`
	BasePoints      int    `json:"basePoints"`
	CooldownPenalty int    `json:"cooldownPenalty"`
	BestBonus       int    `json:"bestBonus"`
	TotalPoints     int    `json:"totalPoints"`
	Indicator       string `json:"indicator"`
	PlayerID        string `json:"playerId"`
	PlayerName      string `json:"playerName"`
	WasInCooldown   bool   `json:"wasInCooldown"`
	AtMs            int64  `json:"atMs"` // unix millis of submission
}

// CreateResult is returned by Rooms.Create.
type CreateResult struct {
	Code           string `json:"code"`
	PlayerID       string `json:"playerId"`
	Mode           Mode   `json:"mode"`
	RoundTimeLimit int    `json:"roundTimeLimit"` // seconds
	CooldownWindow int    `json:"cooldownDuration"`
}

// JoinResult is returned by Rooms.Join.
type JoinResult struct {
	Code           string            `json:"code"`
	PlayerID       string            `json:"playerId"`
	Players        map[string]string `json:"players"`
	Started        bool              `json:"started"`
	RoundNumber    int               `json:"roundNumber"`
	Mode           Mode              `json:"mode"`
	RoundTimeLimit int               `json:"roundTimeLimit"`
	CooldownWindow int               `json:"cooldownDuration"`
	Reconnected    bool              `json:"reconnected"`
	GameRestarted  bool              `json:"gameRestarted"` // fairness restart was triggered
}

// LobbyInfo is the lightweight pre-game view.
type LobbyInfo struct {
	Players     map[string]string `json:"players"`
	Started     bool              `json:"started"`
	RoundNumber int               `json:"roundNumber"`
}

// GuessResult reports one accepted guess back to the submitter.
type GuessResult struct {
	Word            string `json:"word"`
	Rank            int    `json:"rank"`
	BasePoints      int    `json:"basePoints"`
	CooldownPenalty int    `json:"cooldownPenalty"`
	BestBonus       int    `json:"bestBonus"`
	TotalPoints     int    `json:"totalPoints"`
	Indicator       string `json:"indicator"`
	Found           bool   `json:"found"`
	WasInCooldown   bool   `json:"wasInCooldown"`
	SecretWord      string `json:"secretWord,omitempty"` // set iff found, or alongside ErrRoundTimedOut
	NewCooldown     int    `json:"newCooldown"`          // seconds until the submitter may guess penalty-free
}

// Snapshot is the full room view returned by Rooms.State. Building one is
// side-effectful at the room level (the lazy timeout evaluation runs first),
// but the snapshot itself is a detached copy.
type Snapshot struct {
	Code        string            `json:"code"`
	Mode        Mode              `json:"mode"`
	Started     bool              `json:"started"`
	Players     map[string]string `json:"players"`
	Scores      map[string]int    `json:"scores"`
	Guesses     []Guess           `json:"guesses"` // sorted ascending by rank
	Found       bool              `json:"found"`
	Winner      string            `json:"winner,omitempty"`
	WinnerName  string            `json:"winnerName,omitempty"`
	RoundNumber int               `json:"roundNumber"`

	RoundRemaining int  `json:"roundRemaining"` // seconds
	RoundTimeout   bool `json:"roundTimeout"`

	// Revealed only once the round has ended (found or timed out).
	SecretWord string          `json:"secretWord,omitempty"`
	TopWords   []rank.Neighbor `json:"topWords,omitempty"`

	// Turn mode.
	CurrentPlayer     string `json:"currentPlayer,omitempty"`
	CurrentPlayerName string `json:"currentPlayerName,omitempty"`
	TurnRemaining     int    `json:"turnRemaining,omitempty"` // seconds

	// Cooldown mode, personalized for the requesting player.
	PlayerCooldown int `json:"playerCooldown"` // seconds
	NextPenalty    int `json:"nextPenalty"`    // penalty a guess submitted right now would incur
}
