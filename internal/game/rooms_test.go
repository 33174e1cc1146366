package game

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_CodeFormat(t *testing.T) {
	s, _ := newTestRooms(t, DefaultConfig())
	codePattern := regexp.MustCompile(`^[A-Z]{4}$`)

	for i := 0; i < 20; i++ {
		room, err := s.Create("Alice", ModeCooldown)
		require.NoError(t, err)
		assert.Regexp(t, codePattern, room.Code)
	}
	assert.Equal(t, 20, s.Count(), "codes never collide")
}

func TestCreate_RejectsUnknownMode(t *testing.T) {
	s, _ := newTestRooms(t, DefaultConfig())
	_, err := s.Create("Alice", Mode("speedrun"))
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestCreate_DefaultsToCooldown(t *testing.T) {
	s, _ := newTestRooms(t, DefaultConfig())
	room, err := s.Create("Alice", "")
	require.NoError(t, err)
	assert.Equal(t, ModeCooldown, room.Mode)
	assert.Equal(t, 300, room.RoundTimeLimit)
	assert.Equal(t, 10, room.CooldownWindow)
}

func TestLookup_CodeIsCaseInsensitive(t *testing.T) {
	s, _ := newTestRooms(t, DefaultConfig())
	room, err := s.Create("Alice", ModeCooldown)
	require.NoError(t, err)

	lower := " " + strings.ToLower(room.Code) + " "
	snap, err := s.State(lower, room.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, room.Code, snap.Code)

	lobby, err := s.Lobby(strings.ToLower(room.Code))
	require.NoError(t, err)
	assert.Contains(t, lobby.Players, room.PlayerID)
}

func TestLookup_UnknownRoom(t *testing.T) {
	s, _ := newTestRooms(t, DefaultConfig())

	_, err := s.State("ZZZZ", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = s.Join("ZZZZ", "Bob", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = s.Guess("ZZZZ", "p", "sea")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = s.NewRound("ZZZZ")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.ErrorIs(t, s.Start("ZZZZ"), ErrRoomNotFound)
}

func TestCreate_CreatorIsInTheRoster(t *testing.T) {
	s, _ := newTestRooms(t, DefaultConfig())
	room, err := s.Create("Alice", ModeCooldown)
	require.NoError(t, err)

	lobby, err := s.Lobby(room.Code)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{room.PlayerID: "Alice"}, lobby.Players)
	assert.False(t, lobby.Started)
	assert.Equal(t, 1, lobby.RoundNumber)
}

func TestEvictIdle(t *testing.T) {
	s, clock := newTestRooms(t, DefaultConfig())
	stale, err := s.Create("Alice", ModeCooldown)
	require.NoError(t, err)
	fresh, err := s.Create("Bob", ModeCooldown)
	require.NoError(t, err)
	require.Equal(t, 2, s.Count())

	clock.Advance(2 * time.Hour)
	_, err = s.State(fresh.Code, "") // touches the room
	require.NoError(t, err)

	assert.Equal(t, 1, s.EvictIdle(time.Hour))
	assert.Equal(t, 1, s.Count())

	_, err = s.State(stale.Code, "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = s.State(fresh.Code, "")
	assert.NoError(t, err)
}

func TestEvictIdle_DisabledWhenZero(t *testing.T) {
	s, clock := newTestRooms(t, DefaultConfig())
	_, err := s.Create("Alice", ModeCooldown)
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	assert.Equal(t, 0, s.EvictIdle(0))
	assert.Equal(t, 1, s.Count())
}
