// internal/httpserver/server.go
//
// HTTP wiring for the Semantik backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     JSON content type, credentialed CORS).
//   - Public endpoints: "/", "/health", "/debug/oracle".
//   - Room API under /api: create, join, start, lobby, guess, state,
//     new_round, leave.
//   - Player token minting/verification (see token.go).
//
// The handlers are thin: decode, delegate to the Rooms service, encode. All
// game semantics live in internal/game.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/semantik/go-server/internal/game"
	"github.com/semantik/go-server/internal/rank"
)

// Server bundles the router, the rooms service, and the rank oracle.
type Server struct {
	r      *chi.Mux
	rooms  *game.Rooms
	oracle *rank.Oracle

	secret   []byte
	tokenTTL time.Duration
}

// New constructs a Server, installs middleware, and registers routes.
func New(rooms *game.Rooms, oracle *rank.Oracle, tokenSecret string, tokenTTL time.Duration) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		rooms:    rooms,
		oracle:   oracle,
		secret:   []byte(tokenSecret),
		tokenTTL: tokenTTL,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"semantik-go","endpoints":["/health","POST /api/create","POST /api/join","POST /api/guess","GET /api/state/{code}"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/oracle", func(w http.ResponseWriter, r *http.Request) {
		targets, words := s.oracle.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"targets": targets, "words": words})
	})

	// --- room API ---
	s.r.Route("/api", func(api chi.Router) {
		api.Post("/create", s.handleCreate)
		api.With(s.withPlayer()).Post("/join", s.handleJoin)
		api.Post("/start", s.handleStart)
		api.Get("/lobby/{code}", s.handleLobby)
		api.With(s.requirePlayer()).Post("/guess", s.handleGuess)
		api.With(s.withPlayer()).Get("/state/{code}", s.handleState)
		api.Post("/new_round", s.handleNewRound)
		api.Post("/leave", s.handleLeave)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ handlers ------------------------------------

// createReq/Res payloads for POST /api/create.
type createReq struct {
	Name string    `json:"name"`
	Mode game.Mode `json:"mode"` // "cooldown" (default) | "turn"
}
type createRes struct {
	game.CreateResult
	PlayerToken string `json:"playerToken"`
}

// handleCreate makes a room with the caller as its first player.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Name == "" {
		req.Name = "Player"
	}

	res, err := s.rooms.Create(req.Name, req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	tok, err := s.mintPlayerToken(res.PlayerID, res.Code, req.Name)
	if err != nil {
		log.Error().Err(err).Str("room", res.Code).Msg("mint player token")
		http.Error(w, `{"error":"token_mint_failed"}`, http.StatusInternalServerError)
		return
	}

	log.Info().Str("room", res.Code).Str("mode", string(res.Mode)).Msg("room created")
	_ = json.NewEncoder(w).Encode(createRes{CreateResult: res, PlayerToken: tok})
}

// joinReq/Res payloads for POST /api/join. A bearer token whose room claim
// matches the code is treated as a reconnection attempt.
type joinReq struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
type joinRes struct {
	game.JoinResult
	PlayerToken string `json:"playerToken"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		req.Name = "Player"
	}

	existingID := ""
	if claims := playerFrom(r); claims != nil && codesEqual(claims.Room, req.Code) {
		existingID = claims.Subject
	}

	res, err := s.rooms.Join(req.Code, req.Name, existingID)
	if err != nil {
		writeError(w, err)
		return
	}

	tok, err := s.mintPlayerToken(res.PlayerID, res.Code, req.Name)
	if err != nil {
		log.Error().Err(err).Str("room", res.Code).Msg("mint player token")
		http.Error(w, `{"error":"token_mint_failed"}`, http.StatusInternalServerError)
		return
	}

	if res.GameRestarted {
		log.Info().Str("room", res.Code).Msg("late join forced a fairness restart")
	}
	_ = json.NewEncoder(w).Encode(joinRes{JoinResult: res, PlayerToken: tok})
}

// codeReq is the shared {code} body for start/new_round/leave.
type codeReq struct {
	Code string `json:"code"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req codeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if err := s.rooms.Start(req.Code); err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request) {
	info, err := s.rooms.Lobby(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(info)
}

// guessReq payload for POST /api/guess; the player comes from the token.
type guessReq struct {
	Code string `json:"code"`
	Word string `json:"word"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	claims := playerFrom(r)
	if !codesEqual(claims.Room, req.Code) {
		http.Error(w, `{"error":"token_room_mismatch"}`, http.StatusForbidden)
		return
	}

	res, err := s.rooms.Guess(req.Code, claims.Subject, req.Word)
	if err != nil {
		// A timed-out round rejects the guess but reveals the word.
		if errors.Is(err, game.ErrRoundTimedOut) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(errorBody{
				Error:      "round_timeout",
				Message:    err.Error(),
				SecretWord: res.SecretWord,
				Timeout:    true,
			})
			return
		}
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	playerID := ""
	if claims := playerFrom(r); claims != nil && codesEqual(claims.Room, code) {
		playerID = claims.Subject
	}

	snap, err := s.rooms.State(code, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req codeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	n, err := s.rooms.NewRound(req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"roundNumber": n})
}

// handleLeave acknowledges without removing anything: players stay on the
// scoreboard and may reconnect with their token.
func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req codeReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// codesEqual compares room codes case-insensitively.
func codesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
