package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
)

type LobbyRepository interface {
	Players(ctx context.Context, lobbyID string) ([]string, error)
	AddPlayer(ctx context.Context, lobbyID, playerID string) error

	GameID(ctx context.Context, lobbyID string) (string, error)
	SetGame(ctx context.Context, lobbyID, gameType, gameID string) error
}

type dbLobby struct {
	client *redis.Client
}

func NewLobbyRepository(client *redis.Client) LobbyRepository {
	return &dbLobby{
		client: client,
	}
}

// Players returns the lobby roster in join order.
func (that *dbLobby) Players(ctx context.Context, lobbyID string) ([]string, error) {
	playersKey := fmt.Sprintf("lobby:%s:players", lobbyID)

	players, err := that.client.LRange(ctx, playersKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get lobby players: %w", err)
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("%w: %s", apperror.ErrLobbyNotFound, lobbyID)
	}

	return players, nil
}

func (that *dbLobby) AddPlayer(ctx context.Context, lobbyID, playerID string) error {
	playersKey := fmt.Sprintf("lobby:%s:players", lobbyID)

	if err := that.client.RPush(ctx, playersKey, playerID).Err(); err != nil {
		return fmt.Errorf("failed to add player to lobby: %w", err)
	}

	return nil
}

// GameID resolves the game currently owned by the lobby.
func (that *dbLobby) GameID(ctx context.Context, lobbyID string) (string, error) {
	lobbyKey := "lobby:" + lobbyID

	gameID, err := that.client.HGet(ctx, lobbyKey, "game_id").Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s has no game", apperror.ErrLobbyNotFound, lobbyID)
	}

	if err != nil {
		return "", fmt.Errorf("failed to get lobby game id: %w", err)
	}

	return gameID, nil
}

func (that *dbLobby) SetGame(ctx context.Context, lobbyID, gameType, gameID string) error {
	lobbyKey := "lobby:" + lobbyID

	err := that.client.HSet(ctx, lobbyKey, "game", gameType, "game_id", gameID).Err()
	if err != nil {
		return fmt.Errorf("failed to set lobby game: %w", err)
	}

	return nil
}
