// internal/httpserver/errors.go
//
// Maps the game package's error taxonomy onto HTTP statuses and stable JSON
// error codes. Player-facing rejections are 4xx; only a corrupt dataset
// surfaces as a 500.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/semantik/go-server/internal/game"
)

// errorBody is the uniform error payload.
type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	SecretWord string `json:"secretWord,omitempty"` // set on round_timeout rejections
	Timeout    bool   `json:"timeout,omitempty"`
}

func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return http.StatusNotFound, "room_not_found"
	case errors.Is(err, game.ErrRoomFull):
		return http.StatusConflict, "room_full"
	case errors.Is(err, game.ErrPlayerNotInRoom):
		return http.StatusForbidden, "player_not_in_room"
	case errors.Is(err, game.ErrNotYourTurn):
		return http.StatusConflict, "not_your_turn"
	case errors.Is(err, game.ErrRoundOver):
		return http.StatusConflict, "round_over"
	case errors.Is(err, game.ErrRoundTimedOut):
		return http.StatusConflict, "round_timeout"
	case errors.Is(err, game.ErrEmptyGuess):
		return http.StatusBadRequest, "empty_guess"
	case errors.Is(err, game.ErrAlreadyGuessed):
		return http.StatusConflict, "already_guessed"
	case errors.Is(err, game.ErrUnknownWord):
		return http.StatusBadRequest, "unknown_word"
	case errors.Is(err, game.ErrUnknownMode):
		return http.StatusBadRequest, "unknown_mode"
	case errors.Is(err, game.ErrConfiguration):
		return http.StatusInternalServerError, "configuration_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError emits the JSON error payload for err.
func writeError(w http.ResponseWriter, err error) {
	status, code := errorCode(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code, Message: err.Error()})
}
