// internal/game/room.go
//
// One room: roster, current round, arbitration, and the full guess path.
//
// Locking follows one rule: exported methods take r.mu for their entire
// span; helpers suffixed *Locked assume it is held. The whole submission
// path (lazy timeout evaluation → arbitration → rank lookup → scoring →
// log append → score update) runs under the one lock, so concurrent
// submissions can never both read a stale current player or both slip in
// under an expired cooldown, and no request can observe a half-applied
// transition.
//
// All timeout detection is lazy: there is no timer goroutine. The room
// recomputes its authoritative state from wall-clock deltas whenever it is
// touched, which means an unpolled room "expires" only on its next access.
// That latency is accepted.

package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/semantik/go-server/internal/rank"
)

// Room is a persistent multiplayer session. Created via Rooms.Create, never
// destroyed except by idle eviction or process shutdown.
type Room struct {
	mu sync.Mutex

	code   string
	mode   Mode
	cfg    Config
	oracle *rank.Oracle
	now    func() time.Time

	createdAt time.Time
	touchedAt time.Time // last externally-driven access, for idle eviction

	order   []string // player ids in join order (turn rotation order)
	players map[string]*player
	started bool

	round round
	arb   arbiter
}

func newRoom(code string, mode Mode, cfg Config, oracle *rank.Oracle, now func() time.Time) *Room {
	r := &Room{
		code:      code,
		mode:      mode,
		cfg:       cfg,
		oracle:    oracle,
		now:       now,
		createdAt: now(),
		touchedAt: now(),
		players:   make(map[string]*player),
	}
	switch mode {
	case ModeTurn:
		r.arb = newTurnArbiter(r, now())
	default:
		r.arb = newCooldownArbiter(r)
	}
	r.startNewRoundLocked(now()) // round 1 exists from the moment the room does
	return r
}

// Join adds a player (or reconnects an existing one when existingID matches
// the roster). A brand-new player joining a started game triggers the
// fairness restart: fresh round, every score and arbitration counter zeroed.
func (r *Room) Join(name, existingID string) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.touchLocked()

	res := JoinResult{
		Code:           r.code,
		Mode:           r.mode,
		RoundTimeLimit: int(r.cfg.RoundTimeLimit / time.Second),
		CooldownWindow: int(r.cfg.CooldownWindow / time.Second),
	}

	if existingID != "" {
		if p, ok := r.players[existingID]; ok {
			// Reconnection: identity and counters preserved; the display
			// name follows the latest join.
			if name != "" {
				p.name = name
			}
			res.PlayerID = p.id
			res.Reconnected = true
			res.Players = r.rosterLocked()
			res.Started = r.started
			res.RoundNumber = r.round.number
			return res, nil
		}
	}

	if len(r.players) >= r.cfg.MaxPlayers {
		return JoinResult{}, ErrRoomFull
	}

	id := r.addPlayerLocked(name)
	res.PlayerID = id

	// Fairness restart: a late joiner must not face an unrecoverable
	// deficit, at the documented cost of discarding in-progress standings.
	if r.started {
		r.startNewRoundLocked(now)
		for _, p := range r.players {
			p.score = 0
		}
		res.GameRestarted = true
	}

	res.Players = r.rosterLocked()
	res.Started = r.started
	res.RoundNumber = r.round.number
	return res, nil
}

// Start flips the room to started and re-bases the round and turn clocks, so
// lobby waiting time is not charged against the first word.
func (r *Room) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.touchLocked()

	r.started = true
	r.round.startedAt = now
	r.arb.restartClock(now)
}

// Lobby returns the pre-game view. No lazy evaluation: the lobby has no
// running clocks of interest.
func (r *Room) Lobby() LobbyInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchLocked()

	return LobbyInfo{
		Players:     r.rosterLocked(),
		Started:     r.started,
		RoundNumber: r.round.number,
	}
}

// Guess runs the full submission path for one word.
//
// On ErrRoundTimedOut the returned result carries the revealed secret; the
// timeout flag itself may have been flipped by this very call; detection is
// a legitimate state transition even on a rejected submission. Every other
// rejection leaves the room untouched.
func (r *Room) Guess(playerID, raw string) (GuessResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.touchLocked()

	p, ok := r.players[playerID]
	if !ok {
		return GuessResult{}, ErrPlayerNotInRoom
	}

	r.tickLocked(now)

	if r.round.timedOut {
		return GuessResult{SecretWord: r.round.secret}, ErrRoundTimedOut
	}
	if r.round.found {
		return GuessResult{}, ErrRoundOver
	}

	word := rank.Normalize(raw)
	if word == "" {
		return GuessResult{}, ErrEmptyGuess
	}
	if _, dup := r.round.seen[word]; dup {
		return GuessResult{}, ErrAlreadyGuessed
	}
	if !r.oracle.HasTarget(r.round.secret) {
		// The dataset no longer knows our own secret: corrupt build, not a
		// player error.
		return GuessResult{}, ErrConfiguration
	}
	rk, known := r.oracle.Rank(r.round.secret, word)
	if !known {
		return GuessResult{}, ErrUnknownWord
	}

	adm, err := r.arb.decide(playerID, now)
	if err != nil {
		return GuessResult{}, err
	}

	base := r.cfg.Scoring.BasePoints(rk, r.round.guesses)
	bonus := r.cfg.Scoring.Bonus(rk, r.round.bestRank)
	total := base + bonus - adm.penalty
	indicator := r.cfg.Scoring.Indicator(rk)

	g := Guess{
		Word:            word,
		Rank:            rk,
		BasePoints:      base,
		CooldownPenalty: adm.penalty,
		BestBonus:       bonus,
		TotalPoints:     total,
		Indicator:       indicator,
		PlayerID:        p.id,
		PlayerName:      p.name,
		WasInCooldown:   adm.wasInCooldown,
		AtMs:            now.UnixMilli(),
	}

	// From here on everything applies as one unit under the lock.
	r.round.guesses = append(r.round.guesses, g)
	r.round.seen[word] = struct{}{}
	if r.round.bestRank == 0 || rk < r.round.bestRank {
		r.round.bestRank = rk
	}
	p.score += total

	if rk == 1 {
		r.round.found = true
		r.round.winner = p.id
	}
	r.arb.accepted(playerID, now, !r.round.found)

	res := GuessResult{
		Word:            g.Word,
		Rank:            g.Rank,
		BasePoints:      g.BasePoints,
		CooldownPenalty: g.CooldownPenalty,
		BestBonus:       g.BestBonus,
		TotalPoints:     g.TotalPoints,
		Indicator:       g.Indicator,
		Found:           r.round.found,
		WasInCooldown:   g.WasInCooldown,
		NewCooldown:     secondsCeil(p.cooldownEnd.Sub(now)),
	}
	if r.round.found {
		res.SecretWord = r.round.secret
	}
	return res, nil
}

// State performs the lazy timeout evaluation, then returns a detached
// snapshot, personalized for playerID (which may be empty).
func (r *Room) State(playerID string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.touchLocked()

	r.tickLocked(now)
	return r.snapshotLocked(playerID, now)
}

// NewRound replaces the current round and returns the new round number.
func (r *Room) NewRound() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.touchLocked()

	r.startNewRoundLocked(now)
	return r.round.number
}

// ------------------------------ internals -----------------------------------

// touchLocked stamps the access time and returns "now" for the operation.
func (r *Room) touchLocked() time.Time {
	now := r.now()
	r.touchedAt = now
	return now
}

// tickLocked applies due lazy transitions: the shared round timeout first,
// then the strategy's own (turn skips, which only matter while the round is
// live). Both are computed from wall-clock deltas; calling this twice within
// the same instant changes nothing.
func (r *Room) tickLocked(now time.Time) {
	if !r.round.found && !r.round.timedOut &&
		now.Sub(r.round.startedAt) >= r.cfg.RoundTimeLimit {
		r.round.timedOut = true
	}
	r.arb.tick(now)
}

// addPlayerLocked allocates an id and appends to the roster.
func (r *Room) addPlayerLocked(name string) string {
	id := uuid.NewString()
	r.players[id] = &player{id: id, name: name}
	r.order = append(r.order, id)
	return id
}

// startNewRoundLocked draws a fresh secret, resets the guess log and round
// flags, bumps the round number, and clears every arbitration counter.
func (r *Room) startNewRoundLocked(now time.Time) {
	r.round = round{
		number:    r.round.number + 1,
		secret:    r.oracle.RandomTarget(),
		startedAt: now,
		seen:      make(map[string]struct{}),
	}
	r.arb.reset(now)
}

func (r *Room) rosterLocked() map[string]string {
	out := make(map[string]string, len(r.players))
	for id, p := range r.players {
		out[id] = p.name
	}
	return out
}

// snapshotLocked builds the read-only view. Assumes tickLocked already ran
// for this instant.
func (r *Room) snapshotLocked(playerID string, now time.Time) Snapshot {
	s := Snapshot{
		Code:        r.code,
		Mode:        r.mode,
		Started:     r.started,
		Players:     r.rosterLocked(),
		Scores:      make(map[string]int, len(r.players)),
		Found:       r.round.found,
		Winner:      r.round.winner,
		RoundNumber: r.round.number,

		RoundRemaining: secondsFloor(r.cfg.RoundTimeLimit - now.Sub(r.round.startedAt)),
		RoundTimeout:   r.round.timedOut,
	}
	for id, p := range r.players {
		s.Scores[id] = p.score
	}
	if r.round.winner != "" {
		s.WinnerName = r.players[r.round.winner].name
	}

	// Guess log sorted ascending by rank (ties keep submission order).
	s.Guesses = append([]Guess(nil), r.round.guesses...)
	sort.SliceStable(s.Guesses, func(i, j int) bool {
		return s.Guesses[i].Rank < s.Guesses[j].Rank
	})

	// The secret and its neighborhood become visible only once the round has
	// ended, and stay visible for every later query of the same round.
	if r.round.found || r.round.timedOut {
		s.SecretWord = r.round.secret
		s.TopWords = r.oracle.Neighbors(r.round.secret, r.cfg.TopReveal)
	}

	r.arb.timersInto(&s, playerID, now)
	return s
}
