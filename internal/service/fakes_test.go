package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
	"github.com/rocketscienceinc/drawonary-backend/internal/entity"
)

// fakeGameRepo serializes updates per instance the way the Redis
// repository serializes them per game id. Games are deep-copied through
// JSON so callers never share memory with the store.
type fakeGameRepo struct {
	mu    sync.Mutex
	games map[string]*entity.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]*entity.Game)}
}

func copyGame(game *entity.Game) *entity.Game {
	data, err := json.Marshal(game)
	if err != nil {
		panic(err)
	}

	var copied entity.Game
	if err = json.Unmarshal(data, &copied); err != nil {
		panic(err)
	}

	if copied.RoundData == nil {
		copied.RoundData = make(map[string]int)
	}

	return &copied
}

func (that *fakeGameRepo) Create(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = copyGame(game)

	return nil
}

func (that *fakeGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return copyGame(game), nil
}

func (that *fakeGameRepo) Update(_ context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	game := copyGame(stored)
	if err := fn(game); err != nil {
		return nil, err
	}

	that.games[id] = copyGame(game)

	return game, nil
}

type fakeLobbyRepo struct {
	players map[string][]string
	gameIDs map[string]string
}

func newFakeLobbyRepo() *fakeLobbyRepo {
	return &fakeLobbyRepo{
		players: make(map[string][]string),
		gameIDs: make(map[string]string),
	}
}

func (that *fakeLobbyRepo) Players(_ context.Context, lobbyID string) ([]string, error) {
	players, ok := that.players[lobbyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrLobbyNotFound, lobbyID)
	}

	return players, nil
}

func (that *fakeLobbyRepo) GameID(_ context.Context, lobbyID string) (string, error) {
	gameID, ok := that.gameIDs[lobbyID]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperror.ErrLobbyNotFound, lobbyID)
	}

	return gameID, nil
}

func (that *fakeLobbyRepo) SetGame(_ context.Context, lobbyID, _, gameID string) error {
	that.gameIDs[lobbyID] = gameID
	return nil
}

type fakePlayerRepo struct {
	players map[string]*entity.Player
}

func newFakePlayerRepo(players ...*entity.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: make(map[string]*entity.Player)}
	for _, player := range players {
		repo.players[player.ID] = player
	}

	return repo
}

func (that *fakePlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	player, ok := that.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, id)
	}

	return player, nil
}

// fakeWordSupply hands out pool words not in the excluded set, in pool
// order, so tests can predict the candidates.
type fakeWordSupply struct {
	pool []string
	err  error
}

func (that *fakeWordSupply) PickWords(_ context.Context, _ string, exclude []string, count int) ([]string, error) {
	if that.err != nil {
		return nil, that.err
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, word := range exclude {
		excluded[word] = struct{}{}
	}

	words := make([]string, 0, count)
	for _, word := range that.pool {
		if _, ok := excluded[word]; ok {
			continue
		}

		words = append(words, word)
		if len(words) == count {
			break
		}
	}

	return words, nil
}

type publishedEvent struct {
	channel string
	name    string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (that *fakePublisher) Publish(_ context.Context, channel, name string, payload any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, publishedEvent{channel: channel, name: name, payload: payload})

	return nil
}

func (that *fakePublisher) named(name string) []publishedEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	var matched []publishedEvent
	for _, published := range that.events {
		if published.name == name {
			matched = append(matched, published)
		}
	}

	return matched
}

func (that *fakePublisher) names() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	names := make([]string, 0, len(that.events))
	for _, published := range that.events {
		names = append(names, published.name)
	}

	return names
}

type scheduledTask struct {
	name    string
	payload any
	fireAt  time.Time
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

func (that *fakeScheduler) Schedule(_ context.Context, name string, payload any, fireAt time.Time) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.tasks = append(that.tasks, scheduledTask{name: name, payload: payload, fireAt: fireAt})

	return nil
}

func (that *fakeScheduler) named(name string) []scheduledTask {
	that.mu.Lock()
	defer that.mu.Unlock()

	var matched []scheduledTask
	for _, task := range that.tasks {
		if task.name == name {
			matched = append(matched, task)
		}
	}

	return matched
}
