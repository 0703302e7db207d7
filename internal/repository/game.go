package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
	"github.com/rocketscienceinc/drawonary-backend/internal/entity"
)

// updateRetries bounds the optimistic-retry loop of Update. The window
// between read and write is a single JSON round trip, so contention
// beyond a handful of retries means something is looping on the key.
const updateRetries = 16

var ErrUpdateConflict = errors.New("too many concurrent updates for game")

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	if err := game.Validate(); err != nil {
		return fmt.Errorf("refusing to store malformed game: %w", err)
	}

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := "game:" + game.ID
	if err = that.client.Set(ctx, gameKey, gameJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	gameKey := "game:" + id

	response, err := that.client.Get(ctx, gameKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return unmarshalGame([]byte(response))
}

// Update applies fn to the stored game atomically with respect to all
// other Update calls on the same id. It uses an optimistic WATCH/MULTI
// transaction: if another writer touches the key mid-flight the
// transaction fails and the read-modify-write is retried against the
// fresh state. An error returned by fn aborts the update without writing
// and is returned unwrapped so callers can match sentinel errors.
func (that *dbGame) Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error) {
	gameKey := "game:" + id

	var updated *entity.Game

	transaction := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, gameKey).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
		}

		if err != nil {
			return fmt.Errorf("failed to get game by id: %w", err)
		}

		game, err := unmarshalGame([]byte(response))
		if err != nil {
			return err
		}

		if err = fn(game); err != nil {
			return err
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey, gameJSON, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write game: %w", err)
		}

		updated = game

		return nil
	}

	for attempt := 0; attempt < updateRetries; attempt++ {
		err := that.client.Watch(ctx, transaction, gameKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUpdateConflict, id)
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	gameKey := "game:" + id

	if err := that.client.Del(ctx, gameKey).Err(); err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	return nil
}

func unmarshalGame(data []byte) (*entity.Game, error) {
	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("stored game is malformed: %w", err)
	}

	return &game, nil
}
