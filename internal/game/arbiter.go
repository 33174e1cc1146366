// internal/game/arbiter.go
//
// Guess arbitration: who may submit right now, and what it costs.
//
// A room is configured with exactly one strategy for its lifetime:
//   - turnArbiter: exclusive rotation over the roster with a per-turn time
//     budget; absent players are skipped lazily, charged a penalty, and
//     eventually get a reduced budget.
//   - cooldownArbiter: free-for-all, but guessing while a player's cooldown
//     window is still running incurs an exponential penalty and extends the
//     window additively.
//
// Every method runs under the owning room's mutex; the arbiters hold a back
// reference to the room instead of duplicating roster and score state. The
// per-room lock is also what makes the lazy timeout transition apply exactly
// once; there is deliberately no "advancing" guard flag here.

package game

import "time"

// admission is an arbiter's verdict on a single guess attempt.
type admission struct {
	penalty       int  // points taxed off this guess (cooldown mode)
	wasInCooldown bool // the attempt landed inside a running cooldown window
}

// arbiter is the capability interface shared by both strategies, so the
// guess path stays agnostic to which one is active.
type arbiter interface {
	// tick applies any due lazy time-based transitions (turn skips).
	tick(now time.Time)
	// decide reports whether playerID may guess right now. It never mutates:
	// the guess may still be rejected by validation further down the path.
	decide(playerID string, now time.Time) (admission, error)
	// accepted records a guess that made it into the log. roundLive is false
	// when this guess ended the round.
	accepted(playerID string, now time.Time, roundLive bool)
	// reset clears per-player counters and restarts clocks for a new round.
	reset(now time.Time)
	// restartClock re-bases the strategy's clock, used when the lobby
	// officially starts so waiting time is not charged against anyone.
	restartClock(now time.Time)
	// timersInto fills the strategy-specific snapshot fields, personalized
	// for playerID (may be empty).
	timersInto(s *Snapshot, playerID string, now time.Time)
}

// ---------------------------- turn rotation ---------------------------------

type turnArbiter struct {
	room      *Room
	idx       int       // index into room.order of the current player
	turnStart time.Time // when the current turn began
}

func newTurnArbiter(r *Room, now time.Time) *turnArbiter {
	return &turnArbiter{room: r, turnStart: now}
}

// currentID returns the id of the player whose turn it is.
func (a *turnArbiter) currentID() string {
	return a.room.order[a.idx%len(a.room.order)]
}

// budgetFor returns p's per-turn budget, shrunk once their consecutive
// timeout streak reaches the configured threshold.
func (a *turnArbiter) budgetFor(p *player) time.Duration {
	cfg := a.room.cfg
	if cfg.TurnTimeoutThreshold > 0 && p.timeoutStreak >= cfg.TurnTimeoutThreshold {
		return cfg.ReducedTurnTimeLimit
	}
	return cfg.TurnTimeLimit
}

// tick applies at most one lazy turn-timeout transition: charge the current
// player, bump their streak, advance the pointer, and re-base the turn clock.
// Idempotent within an instant: after the clock reset, elapsed is zero.
func (a *turnArbiter) tick(now time.Time) {
	r := a.room
	if !r.started || r.round.found || r.round.timedOut || len(r.order) == 0 {
		return
	}
	p := r.players[a.currentID()]
	if now.Sub(a.turnStart) < a.budgetFor(p) {
		return
	}
	p.score -= r.cfg.TurnTimeoutPenalty
	p.timeoutStreak++
	a.idx = (a.idx + 1) % len(r.order)
	a.turnStart = now
}

func (a *turnArbiter) decide(playerID string, _ time.Time) (admission, error) {
	if playerID != a.currentID() {
		return admission{}, ErrNotYourTurn
	}
	return admission{}, nil
}

// accepted clears the submitter's timeout streak (responding ends the
// penalty spiral) and, if the round continues, passes the turn along.
func (a *turnArbiter) accepted(playerID string, now time.Time, roundLive bool) {
	if p, ok := a.room.players[playerID]; ok {
		p.timeoutStreak = 0
	}
	if roundLive {
		a.idx = (a.idx + 1) % len(a.room.order)
		a.turnStart = now
	}
}

func (a *turnArbiter) reset(now time.Time) {
	for _, p := range a.room.players {
		p.timeoutStreak = 0
	}
	a.turnStart = now
}

func (a *turnArbiter) restartClock(now time.Time) { a.turnStart = now }

func (a *turnArbiter) timersInto(s *Snapshot, _ string, now time.Time) {
	r := a.room
	if len(r.order) == 0 {
		return
	}
	cur := a.currentID()
	s.CurrentPlayer = cur
	s.CurrentPlayerName = r.players[cur].name
	remaining := a.budgetFor(r.players[cur]) - now.Sub(a.turnStart)
	s.TurnRemaining = secondsFloor(remaining)
}

// --------------------------- cooldown throttle ------------------------------

type cooldownArbiter struct {
	room *Room
}

func newCooldownArbiter(r *Room) *cooldownArbiter { return &cooldownArbiter{room: r} }

// penaltyFor computes the exponential penalty for p's next in-cooldown guess:
// base × 2^streak. The shift is capped; past 30 doublings the exact value
// stopped mattering long ago.
func (a *cooldownArbiter) penaltyFor(p *player) int {
	streak := p.cooldownStreak
	if streak > 30 {
		streak = 30
	}
	return a.room.cfg.CooldownBasePenalty << streak
}

func (a *cooldownArbiter) tick(time.Time) {} // no lazy transitions of its own

// decide never blocks: guessing while hot is taxed, not rejected.
func (a *cooldownArbiter) decide(playerID string, now time.Time) (admission, error) {
	p := a.room.players[playerID]
	if p.cooldownEnd.After(now) {
		return admission{penalty: a.penaltyFor(p), wasInCooldown: true}, nil
	}
	return admission{}, nil
}

// accepted starts (or compounds) the submitter's cooldown. A guess inside a
// running window extends it additively (remaining + one fresh window), so
// impatience stacks; waiting the window out resets the streak.
func (a *cooldownArbiter) accepted(playerID string, now time.Time, _ bool) {
	p := a.room.players[playerID]
	if remaining := p.cooldownEnd.Sub(now); remaining > 0 {
		p.cooldownStreak++
		p.cooldownEnd = now.Add(remaining + a.room.cfg.CooldownWindow)
		return
	}
	p.cooldownStreak = 0
	p.cooldownEnd = now.Add(a.room.cfg.CooldownWindow)
}

func (a *cooldownArbiter) reset(time.Time) {
	for _, p := range a.room.players {
		p.cooldownStreak = 0
		p.cooldownEnd = time.Time{}
	}
}

func (a *cooldownArbiter) restartClock(time.Time) {}

func (a *cooldownArbiter) timersInto(s *Snapshot, playerID string, now time.Time) {
	p, ok := a.room.players[playerID]
	if !ok {
		return
	}
	if remaining := p.cooldownEnd.Sub(now); remaining > 0 {
		s.PlayerCooldown = secondsCeil(remaining)
		s.NextPenalty = a.penaltyFor(p)
	}
}

// ------------------------------- helpers ------------------------------------

func secondsFloor(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

func secondsCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
