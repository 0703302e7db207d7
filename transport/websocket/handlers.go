package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
)

func (that *Server) handleMessage(ctx context.Context, sess *session, message *Message) error {
	switch message.Action {
	case "connect":
		return that.handleConnect(ctx, sess, message.Payload)
	case "game:start":
		return that.handleStartGame(ctx, sess, message.Payload)
	case "game:words":
		return that.handleGetWords(ctx, sess, message.Payload)
	case "game:word":
		return that.handleChooseWord(ctx, sess, message.Payload)
	case "game:chat":
		return that.handleChat(ctx, sess, message.Payload)
	default:
		return sess.send("error", ErrorPayload{Message: "unknown action: " + message.Action})
	}
}

func (that *Server) handleConnect(ctx context.Context, sess *session, payload json.RawMessage) error {
	var request ConnectPayload
	if err := json.Unmarshal(payload, &request); err != nil {
		return fmt.Errorf("failed to unmarshal connect payload: %w", err)
	}

	if request.LobbyID == "" || request.PlayerID == "" {
		return sess.send("error", ErrorPayload{Message: "lobby_id and player_id are required"})
	}

	sess.playerID = request.PlayerID

	that.startPump(ctx, sess, channelsFor(&request)...)

	return sess.send("connected", request)
}

func (that *Server) handleStartGame(ctx context.Context, sess *session, payload json.RawMessage) error {
	var request StartGamePayload
	if err := json.Unmarshal(payload, &request); err != nil {
		return fmt.Errorf("failed to unmarshal start payload: %w", err)
	}

	game, err := that.game.StartGame(ctx, request.LobbyID, request.DeckID, request.GameType)
	if err != nil {
		return that.sendError(sess, err)
	}

	return sess.send("game:started", game)
}

func (that *Server) handleGetWords(ctx context.Context, sess *session, payload json.RawMessage) error {
	var request GetWordsPayload
	if err := json.Unmarshal(payload, &request); err != nil {
		return fmt.Errorf("failed to unmarshal words payload: %w", err)
	}

	words, err := that.game.GetWords(ctx, request.GameID, sess.playerID)
	if err != nil {
		return that.sendError(sess, err)
	}

	return sess.send("game:words", WordsPayload{GameID: request.GameID, Words: words})
}

func (that *Server) handleChooseWord(ctx context.Context, sess *session, payload json.RawMessage) error {
	var request ChooseWordPayload
	if err := json.Unmarshal(payload, &request); err != nil {
		return fmt.Errorf("failed to unmarshal choose-word payload: %w", err)
	}

	if err := that.game.ChooseWord(ctx, request.GameID, sess.playerID, request.Word); err != nil {
		return that.sendError(sess, err)
	}

	return sess.send("game:word:accepted", request)
}

func (that *Server) handleChat(ctx context.Context, sess *session, payload json.RawMessage) error {
	var request ChatPayload
	if err := json.Unmarshal(payload, &request); err != nil {
		return fmt.Errorf("failed to unmarshal chat payload: %w", err)
	}

	result, err := that.game.SendChatMessage(ctx, request.LobbyID, sess.playerID, request.Message)
	if err != nil {
		return that.sendError(sess, err)
	}

	// The close-guess signal goes to the sender only; the broadcast to
	// everyone else already happened through the lobby channel.
	if result.CloseGuess {
		return sess.send("game:close-guess", CloseGuessPayload{Similarity: result.Similarity})
	}

	return nil
}

// sendError maps rejected requests to a client-visible error message.
// Rule violations are the user's problem, not system failures, so they
// are not logged as errors.
func (that *Server) sendError(sess *session, err error) error {
	switch {
	case errors.Is(err, apperror.ErrForbidden),
		errors.Is(err, apperror.ErrAlreadyGuessed),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotEnoughPlayers),
		errors.Is(err, apperror.ErrUnknownGameType):
		return sess.send("error", ErrorPayload{Message: err.Error()})
	default:
		that.logger.Error("request failed", "error", err)
		return sess.send("error", ErrorPayload{Message: "internal error"})
	}
}
