package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
	"github.com/rocketscienceinc/drawonary-backend/internal/entity"
	"github.com/rocketscienceinc/drawonary-backend/internal/service"
)

// GameUseCase is the surface the transports talk to. Role checks that
// belong to the request (only the drawer sees or chooses words) live
// here; the coordinator enforces the game rules themselves.
type GameUseCase interface {
	StartGame(ctx context.Context, lobbyID, deckID, gameType string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)

	GetWords(ctx context.Context, gameID, playerID string) ([]string, error)
	ChooseWord(ctx context.Context, gameID, playerID, word string) error

	SendChatMessage(ctx context.Context, lobbyID, playerID, message string) (*service.ChatResult, error)
}

// turnCoordinator is the capability every game variant provides. Game
// variants form a closed set selected by the game-type tag stored with
// the game; "draw" is the only variant today.
type turnCoordinator interface {
	StartGame(ctx context.Context, lobbyID, deckID string) (*entity.Game, error)
	GetGeneratedWords(ctx context.Context, gameID string) ([]string, error)
	SetWord(ctx context.Context, gameID, word string) error
	AnalyzeChatMessage(ctx context.Context, lobbyID, playerID, message string) (*service.ChatResult, error)
}

type gameReader interface {
	GetByID(ctx context.Context, id string) (*entity.Game, error)
}

type gameUseCase struct {
	games        gameReader
	coordinators map[string]turnCoordinator
}

func NewGameUseCase(games gameReader, drawCoordinator turnCoordinator) GameUseCase {
	return &gameUseCase{
		games: games,
		coordinators: map[string]turnCoordinator{
			entity.GameTypeDraw: drawCoordinator,
		},
	}
}

func (that *gameUseCase) StartGame(ctx context.Context, lobbyID, deckID, gameType string) (*entity.Game, error) {
	coordinator, err := that.coordinator(gameType)
	if err != nil {
		return nil, err
	}

	game, err := coordinator.StartGame(ctx, lobbyID, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) GetWords(ctx context.Context, gameID, playerID string) ([]string, error) {
	game, err := that.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.Turn != playerID {
		return nil, fmt.Errorf("%w: only the drawer may see the words", apperror.ErrForbidden)
	}

	coordinator, err := that.coordinator(game.Type)
	if err != nil {
		return nil, err
	}

	words, err := coordinator.GetGeneratedWords(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}

	return words, nil
}

func (that *gameUseCase) ChooseWord(ctx context.Context, gameID, playerID, word string) error {
	game, err := that.games.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	if game.Turn != playerID {
		return fmt.Errorf("%w: only the drawer may choose the word", apperror.ErrForbidden)
	}

	coordinator, err := that.coordinator(game.Type)
	if err != nil {
		return err
	}

	if err = coordinator.SetWord(ctx, gameID, word); err != nil {
		return fmt.Errorf("failed to choose word: %w", err)
	}

	return nil
}

func (that *gameUseCase) SendChatMessage(ctx context.Context, lobbyID, playerID, message string) (*service.ChatResult, error) {
	// Chat always routes through the draw coordinator: the lobby's game
	// type decides, and chat analysis only exists for drawing games.
	coordinator, err := that.coordinator(entity.GameTypeDraw)
	if err != nil {
		return nil, err
	}

	result, err := coordinator.AnalyzeChatMessage(ctx, lobbyID, playerID, message)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (that *gameUseCase) coordinator(gameType string) (turnCoordinator, error) {
	coordinator, ok := that.coordinators[gameType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownGameType, gameType)
	}

	return coordinator, nil
}
