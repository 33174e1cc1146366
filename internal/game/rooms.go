// internal/game/rooms.go
//
// Rooms is the registry and entrypoint for every externally consumed
// operation: create, join, start, lobby, guess, state, new round, eviction.
//
// Concurrency: the registry mutex guards only the code→room map; each room
// carries its own lock, so operations on different rooms never contend. The
// registry lock is released before a room operation begins (lookup, unlock,
// then delegate).
//
// Rooms live for the process lifetime unless idle eviction is enabled; the
// injected clock makes both the lazy timeouts and eviction testable with a
// fake.

package game

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/semantik/go-server/internal/rank"
)

const codeLength = 4

// Rooms owns the set of live rooms.
type Rooms struct {
	mu    sync.Mutex
	rooms map[string]*Room

	cfg    Config
	oracle *rank.Oracle
	now    func() time.Time
}

// Option configures a Rooms service.
type Option func(*Rooms)

// WithClock injects a time source (tests use a fake; production defaults to
// time.Now).
func WithClock(now func() time.Time) Option {
	return func(s *Rooms) { s.now = now }
}

// NewRooms constructs the registry.
func NewRooms(cfg Config, oracle *rank.Oracle, opts ...Option) *Rooms {
	s := &Rooms{
		rooms:  make(map[string]*Room),
		cfg:    cfg,
		oracle: oracle,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create makes a room with one player and an initial round. An empty mode
// defaults to cooldown throttling.
func (s *Rooms) Create(playerName string, mode Mode) (CreateResult, error) {
	switch mode {
	case "":
		mode = ModeCooldown
	case ModeCooldown, ModeTurn:
	default:
		return CreateResult{}, ErrUnknownMode
	}

	s.mu.Lock()
	code := s.uniqueCodeLocked()
	r := newRoom(code, mode, s.cfg, s.oracle, s.now)
	playerID := r.addPlayerLocked(playerName) // room not published yet, lock not needed
	s.rooms[code] = r
	s.mu.Unlock()

	return CreateResult{
		Code:           code,
		PlayerID:       playerID,
		Mode:           mode,
		RoundTimeLimit: int(s.cfg.RoundTimeLimit / time.Second),
		CooldownWindow: int(s.cfg.CooldownWindow / time.Second),
	}, nil
}

// Join adds or reconnects a player to an existing room.
func (s *Rooms) Join(code, playerName, existingID string) (JoinResult, error) {
	r, err := s.lookup(code)
	if err != nil {
		return JoinResult{}, err
	}
	return r.Join(playerName, existingID)
}

// Start flips the room's started flag and re-bases its clocks.
func (s *Rooms) Start(code string) error {
	r, err := s.lookup(code)
	if err != nil {
		return err
	}
	r.Start()
	return nil
}

// Lobby returns the pre-game roster view.
func (s *Rooms) Lobby(code string) (LobbyInfo, error) {
	r, err := s.lookup(code)
	if err != nil {
		return LobbyInfo{}, err
	}
	return r.Lobby(), nil
}

// Guess submits one word on behalf of a player.
func (s *Rooms) Guess(code, playerID, word string) (GuessResult, error) {
	r, err := s.lookup(code)
	if err != nil {
		return GuessResult{}, err
	}
	return r.Guess(playerID, word)
}

// State returns the room snapshot, applying lazy timeouts as a side effect.
func (s *Rooms) State(code, playerID string) (Snapshot, error) {
	r, err := s.lookup(code)
	if err != nil {
		return Snapshot{}, err
	}
	return r.State(playerID), nil
}

// NewRound starts a fresh round and returns its number.
func (s *Rooms) NewRound(code string) (int, error) {
	r, err := s.lookup(code)
	if err != nil {
		return 0, err
	}
	return r.NewRound(), nil
}

// EvictIdle drops rooms untouched for longer than maxIdle and reports how
// many were removed. maxIdle <= 0 is a no-op.
func (s *Rooms) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for code, r := range s.rooms {
		r.mu.Lock()
		idle := now.Sub(r.touchedAt)
		r.mu.Unlock()
		if idle > maxIdle {
			delete(s.rooms, code)
			evicted++
		}
	}
	return evicted
}

// Count returns the number of live rooms.
func (s *Rooms) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// lookup resolves a room by its case-insensitive code.
func (s *Rooms) lookup(code string) (*Room, error) {
	s.mu.Lock()
	r, ok := s.rooms[strings.ToUpper(strings.TrimSpace(code))]
	s.mu.Unlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// uniqueCodeLocked draws 4-letter codes until one is free. Assumes s.mu held.
func (s *Rooms) uniqueCodeLocked() string {
	for {
		code := randomCode(codeLength)
		if _, taken := s.rooms[code]; !taken {
			return code
		}
	}
}

// randomCode returns n random uppercase ASCII letters.
func randomCode(n int) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
