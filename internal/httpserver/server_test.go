package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semantik/go-server/internal/game"
	"github.com/semantik/go-server/internal/rank"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestServer wires a server around a single-target oracle and a fake
// clock, so round and cooldown timers only move when a test says so.
func newTestServer(t *testing.T) (*Server, *testClock) {
	t.Helper()
	oracle, err := rank.New(
		[]string{"ocean"},
		map[string]map[string]int{
			"ocean": {"ocean": 1, "sea": 2, "wave": 5, "water": 50, "rock": 9000},
		},
	)
	require.NoError(t, err)

	clock := &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	rooms := game.NewRooms(game.DefaultConfig(), oracle, game.WithClock(clock.Now))
	return New(rooms, oracle, "test-secret", time.Hour), clock
}

// doJSON issues a request with an optional JSON body and bearer token, and
// decodes the response body into a generic map.
func doJSON(t *testing.T, s *Server, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	}
	return rec.Code, out
}

func createRoom(t *testing.T, s *Server, name string, mode string) (code, playerID, token string) {
	t.Helper()
	status, body := doJSON(t, s, http.MethodPost, "/api/create",
		map[string]string{"name": name, "mode": mode}, "")
	require.Equal(t, http.StatusOK, status)
	return body["code"].(string), body["playerId"].(string), body["playerToken"].(string)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	status, body := doJSON(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
}

func TestFullGameFlow(t *testing.T) {
	s, clock := newTestServer(t)
	code, aliceID, aliceTok := createRoom(t, s, "Alice", "cooldown")

	// Bob joins before the game starts.
	status, body := doJSON(t, s, http.MethodPost, "/api/join",
		map[string]string{"code": code, "name": "Bob"}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["gameRestarted"])
	bobTok := body["playerToken"].(string)

	status, _ = doJSON(t, s, http.MethodPost, "/api/start",
		map[string]string{"code": code}, "")
	require.Equal(t, http.StatusOK, status)

	// Alice probes, then Bob wins.
	status, body = doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "sea"}, aliceTok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["rank"])
	assert.Equal(t, float64(15), body["totalPoints"])
	assert.Equal(t, false, body["found"])

	clock.Advance(11 * time.Second)
	status, body = doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "ocean"}, bobTok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, "ocean", body["secretWord"])

	// Everyone sees the finished round.
	status, body = doJSON(t, s, http.MethodGet, "/api/state/"+code, nil, aliceTok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, "Bob", body["winnerName"])
	assert.Equal(t, "ocean", body["secretWord"])
	assert.NotEmpty(t, body["topWords"])
	scores := body["scores"].(map[string]any)
	assert.Equal(t, float64(15), scores[aliceID])

	// Next round via the API.
	status, body = doJSON(t, s, http.MethodPost, "/api/new_round",
		map[string]string{"code": code}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["roundNumber"])
}

func TestGuess_RequiresToken(t *testing.T) {
	s, _ := newTestServer(t)
	code, _, _ := createRoom(t, s, "Alice", "")

	status, body := doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "sea"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "missing_token", body["error"])

	status, body = doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "sea"}, "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_token", body["error"])
}

func TestGuess_TokenBoundToRoom(t *testing.T) {
	s, _ := newTestServer(t)
	_, _, aliceTok := createRoom(t, s, "Alice", "")
	other, _, _ := createRoom(t, s, "Mallory", "")

	status, body := doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": other, "word": "sea"}, aliceTok)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "token_room_mismatch", body["error"])
}

func TestJoin_TokenReconnects(t *testing.T) {
	s, _ := newTestServer(t)
	code, aliceID, aliceTok := createRoom(t, s, "Alice", "")

	status, body := doJSON(t, s, http.MethodPost, "/api/join",
		map[string]string{"code": code, "name": "Alice"}, aliceTok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["reconnected"])
	assert.Equal(t, aliceID, body["playerId"])
}

func TestErrorMapping(t *testing.T) {
	s, _ := newTestServer(t)
	code, _, tok := createRoom(t, s, "Alice", "")

	status, body := doJSON(t, s, http.MethodGet, "/api/state/ZZZZ", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "room_not_found", body["error"])

	status, body = doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "xylophone"}, tok)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "unknown_word", body["error"])

	doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "sea"}, tok)
	status, body = doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "SEA"}, tok)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_guessed", body["error"])

	status, body = doJSON(t, s, http.MethodPost, "/api/create",
		map[string]string{"name": "X", "mode": "speedrun"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "unknown_mode", body["error"])
}

func TestGuess_RoundTimeoutRevealsSecret(t *testing.T) {
	s, clock := newTestServer(t)
	code, _, tok := createRoom(t, s, "Alice", "")
	doJSON(t, s, http.MethodPost, "/api/start", map[string]string{"code": code}, "")

	clock.Advance(5*time.Minute + time.Second)
	status, body := doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "sea"}, tok)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "round_timeout", body["error"])
	assert.Equal(t, true, body["timeout"])
	assert.Equal(t, "ocean", body["secretWord"])
}

func TestState_TokenViaQueryParam(t *testing.T) {
	s, clock := newTestServer(t)
	code, _, tok := createRoom(t, s, "Alice", "")

	// Two quick guesses put Alice in cooldown; the personalized fields only
	// show up when her token rides along.
	doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "sea"}, tok)
	clock.Advance(1 * time.Second)
	doJSON(t, s, http.MethodPost, "/api/guess",
		map[string]string{"code": code, "word": "wave"}, tok)

	status, body := doJSON(t, s, http.MethodGet,
		"/api/state/"+code+"?playerToken="+tok, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Greater(t, body["playerCooldown"].(float64), float64(0))
	assert.Equal(t, float64(2), body["nextPenalty"])

	status, body = doJSON(t, s, http.MethodGet, "/api/state/"+code, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["playerCooldown"], "anonymous view is not personalized")
}

func TestLobby(t *testing.T) {
	s, _ := newTestServer(t)
	code, aliceID, _ := createRoom(t, s, "Alice", "")

	status, body := doJSON(t, s, http.MethodGet, "/api/lobby/"+code, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["started"])
	players := body["players"].(map[string]any)
	assert.Equal(t, "Alice", players[aliceID])
}

func TestLeave_Acknowledges(t *testing.T) {
	s, _ := newTestServer(t)
	code, aliceID, _ := createRoom(t, s, "Alice", "")

	status, body := doJSON(t, s, http.MethodPost, "/api/leave",
		map[string]string{"code": code}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	// Leaving does not drop the player from the scoreboard.
	_, lobby := doJSON(t, s, http.MethodGet, "/api/lobby/"+code, nil, "")
	assert.Contains(t, lobby["players"], aliceID)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/create", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestTokenRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	tok, err := s.mintPlayerToken("player-1", "ABCD", "Alice")
	require.NoError(t, err)

	claims, err := s.parsePlayerToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.Subject)
	assert.Equal(t, "ABCD", claims.Room)
	assert.Equal(t, "Alice", claims.Name)

	// Tokens from a different secret are rejected.
	other := &Server{secret: []byte("other-secret"), tokenTTL: time.Hour}
	forged, err := other.mintPlayerToken("player-1", "ABCD", "Alice")
	require.NoError(t, err)
	_, err = s.parsePlayerToken(forged)
	assert.Error(t, err)
}
