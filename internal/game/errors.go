// internal/game/errors.go
//
// Error taxonomy for room operations. All of these are recoverable,
// player-facing rejections: a failed request never leaves a room in a
// partially-applied state. ErrConfiguration is the exception: it means the
// current secret has no rank table, i.e. the dataset shipped with the server
// is corrupt, and is logged as an error rather than blamed on the player.

package game

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrPlayerNotInRoom = errors.New("player not in room")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrRoundOver       = errors.New("round already over")
	ErrRoundTimedOut   = errors.New("round timed out")
	ErrEmptyGuess      = errors.New("empty guess")
	ErrAlreadyGuessed  = errors.New("word already guessed")
	ErrUnknownWord     = errors.New("word not in dictionary")
	ErrConfiguration   = errors.New("secret word missing from rank table")
	ErrUnknownMode     = errors.New("unknown arbitration mode")
)
