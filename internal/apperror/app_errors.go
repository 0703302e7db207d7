package apperror

import "errors"

var (
	ErrForbidden      = errors.New("action is not allowed for this player")
	ErrAlreadyGuessed = errors.New("word is already guessed by this player")
	ErrGameNotFound   = errors.New("game not found")
	ErrGameFinished   = errors.New("game is already finished")
	ErrLobbyNotFound  = errors.New("lobby not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrUnknownPlayer  = errors.New("player is not on the scoreboard")
	ErrDeckNotFound   = errors.New("deck not found")
	ErrStaleTask      = errors.New("task no longer matches the game state")

	ErrNotEnoughPlayers = errors.New("not enough players to start a game")
	ErrUnknownGameType  = errors.New("unknown game type")
)
