package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
	"github.com/rocketscienceinc/drawonary-backend/internal/entity"
	"github.com/rocketscienceinc/drawonary-backend/internal/event"
	"github.com/rocketscienceinc/drawonary-backend/internal/guess"
	"github.com/rocketscienceinc/drawonary-backend/internal/monitor"
	"github.com/rocketscienceinc/drawonary-backend/internal/pkg"
)

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error)
}

type lobbyRepo interface {
	Players(ctx context.Context, lobbyID string) ([]string, error)
	GameID(ctx context.Context, lobbyID string) (string, error)
	SetGame(ctx context.Context, lobbyID, gameType, gameID string) error
}

type playerRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type wordSupply interface {
	PickWords(ctx context.Context, deckID string, exclude []string, count int) ([]string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, channel, name string, payload any) error
}

type taskScheduler interface {
	Schedule(ctx context.Context, name string, payload any, fireAt time.Time) error
}

// Config carries the game tuning knobs of the coordinator.
type Config struct {
	TotalRounds              int
	SelectionWindow          time.Duration
	TurnDuration             time.Duration
	CandidateWords           int
	CloseGuessThreshold      float64
	PointsPerRemainingSecond int
	GuessBasePoints          int
}

func DefaultConfig() Config {
	return Config{
		TotalRounds:              3,
		SelectionWindow:          15 * time.Second,
		TurnDuration:             90 * time.Second,
		CandidateWords:           3,
		CloseGuessThreshold:      85,
		PointsPerRemainingSecond: 5,
		GuessBasePoints:          90,
	}
}

// ChatResult tells the transport what a chat message turned out to be.
// CloseGuess must only be shown to the sending client.
type ChatResult struct {
	Guessed    bool
	CloseGuess bool
	Similarity float64
}

// Coordinator is the turn/round state machine of a draw-and-guess game.
// It is the only component that mutates game state; every mutation goes
// through the repository's atomic Update, so concurrent guesses and
// racing deferred tasks are serialized per game id.
type Coordinator struct {
	logger    *slog.Logger
	conf      Config
	games     gameRepo
	lobbies   lobbyRepo
	players   playerRepo
	words     wordSupply
	publisher eventPublisher
	scheduler taskScheduler
	metrics   *monitor.Metrics

	now func() time.Time
}

func NewCoordinator(
	logger *slog.Logger,
	conf Config,
	games gameRepo,
	lobbies lobbyRepo,
	players playerRepo,
	words wordSupply,
	publisher eventPublisher,
	scheduler taskScheduler,
	metrics *monitor.Metrics,
) *Coordinator {
	return &Coordinator{
		logger:    logger.With("component", "coordinator"),
		conf:      conf,
		games:     games,
		lobbies:   lobbies,
		players:   players,
		words:     words,
		publisher: publisher,
		scheduler: scheduler,
		metrics:   metrics,
		now:       time.Now,
	}
}

// StartGame creates a game for the lobby: it shuffles the roster into a
// fixed drawing order, seeds a blank scoreboard, persists the game and
// opens the first selection phase.
func (that *Coordinator) StartGame(ctx context.Context, lobbyID, deckID string) (*entity.Game, error) {
	playerIDs, err := that.lobbies.Players(ctx, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lobby players: %w", err)
	}

	if len(playerIDs) < 2 {
		return nil, fmt.Errorf("%w: lobby %s has %d", apperror.ErrNotEnoughPlayers, lobbyID, len(playerIDs))
	}

	order := make([]string, len(playerIDs))
	copy(order, playerIDs)
	rand.Shuffle(len(order), func(i, j int) { //nolint:gosec // not used for security
		order[i], order[j] = order[j], order[i]
	})

	roster := make([]*entity.Player, 0, len(order))
	for _, playerID := range order {
		player, err := that.players.GetByID(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get roster player: %w", err)
		}

		roster = append(roster, player)
	}

	game := entity.NewGame(pkg.GenerateGameID(), lobbyID, deckID, order, that.conf.TotalRounds, entity.NewScoreboard(roster))

	if err = that.games.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.lobbies.SetGame(ctx, lobbyID, game.Type, game.ID); err != nil {
		return nil, fmt.Errorf("failed to attach game to lobby: %w", err)
	}

	that.metrics.GamesStarted.Inc()
	that.metrics.ActiveGames.Inc()

	that.publish(ctx, event.LobbyChannel(lobbyID), event.GameStarted, event.GameStartedPayload{
		LobbyID:  lobbyID,
		GameID:   game.ID,
		GameType: game.Type,
	})

	if _, err = that.GenerateWords(ctx, game.ID); err != nil {
		return nil, fmt.Errorf("failed to open first selection phase: %w", err)
	}

	return that.games.GetByID(ctx, game.ID)
}

// GenerateWords opens the selection phase for the current drawer: it
// clears the previous turn, draws candidate words not yet used in this
// game, and schedules the auto-select fallback for the selection
// deadline. An exhausted deck ends the game explicitly instead of
// leaving it stuck.
func (that *Coordinator) GenerateWords(ctx context.Context, gameID string) ([]string, error) {
	deadline := that.now().Add(that.conf.SelectionWindow)

	var (
		candidates []string
		drawer     string
		ended      bool
	)

	_, err := that.games.Update(ctx, gameID, func(game *entity.Game) error {
		if game.IsFinished() {
			return apperror.ErrGameFinished
		}

		game.ResetTurn()

		words, err := that.words.PickWords(ctx, game.DeckID, game.UsedWords, that.conf.CandidateWords)
		if err != nil {
			return fmt.Errorf("failed to pick words: %w", err)
		}

		if len(words) == 0 {
			game.Status = entity.StatusFinished
			ended = true

			return nil
		}

		game.MarkWordsUsed(words)
		game.PossibleWords = words

		candidates = words
		drawer = game.Turn

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare word selection: %w", err)
	}

	if ended {
		that.logger.Info("deck exhausted, ending game", "gameID", gameID)
		that.finishGame(ctx, gameID)

		return nil, nil
	}

	that.publish(ctx, event.GameChannel(gameID), event.SelectingWord, event.SelectingWordPayload{
		GameID:            gameID,
		DrawerID:          drawer,
		SelectionDeadline: deadline,
	})

	if err = that.scheduler.Schedule(ctx, TaskAutoSelectWord, AutoSelectPayload{
		GameID:     gameID,
		Candidates: candidates,
	}, deadline); err != nil {
		return nil, fmt.Errorf("failed to schedule auto-select: %w", err)
	}

	return candidates, nil
}

// GetGeneratedWords returns the candidates currently offered to the
// drawer, regenerating them lazily when none are pending.
func (that *Coordinator) GetGeneratedWords(ctx context.Context, gameID string) ([]string, error) {
	game, err := that.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.IsFinished() {
		return nil, apperror.ErrGameFinished
	}

	if len(game.PossibleWords) > 0 {
		return game.PossibleWords, nil
	}

	return that.GenerateWords(ctx, gameID)
}

// SetWord records the drawer's explicit word choice and starts the
// drawing phase.
func (that *Coordinator) SetWord(ctx context.Context, gameID, word string) error {
	return that.setWord(ctx, gameID, word, nil)
}

// setWord starts the drawing phase. expectCandidates is non-nil when the
// call comes from the auto-select task; the stored candidates must still
// match or the task is stale. A nil expectCandidates means a live drawer
// choice, which must be one of the offered words.
func (that *Coordinator) setWord(ctx context.Context, gameID, word string, expectCandidates []string) error {
	now := that.now()
	turnEndAt := now.Add(that.conf.TurnDuration)
	fromTask := expectCandidates != nil

	_, err := that.games.Update(ctx, gameID, func(game *entity.Game) error {
		if game.IsFinished() {
			if fromTask {
				return fmt.Errorf("%w: game is finished", apperror.ErrStaleTask)
			}

			return apperror.ErrGameFinished
		}

		if game.Word != "" {
			if fromTask {
				return fmt.Errorf("%w: word is already selected", apperror.ErrStaleTask)
			}

			return fmt.Errorf("%w: word is already selected", apperror.ErrForbidden)
		}

		if fromTask && !sameWords(game.PossibleWords, expectCandidates) {
			return fmt.Errorf("%w: offered words have changed", apperror.ErrStaleTask)
		}

		if !fromTask && !containsWord(game.PossibleWords, word) {
			return fmt.Errorf("%w: word was not offered", apperror.ErrForbidden)
		}

		game.Word = word
		game.TurnEndAt = &turnEndAt
		game.PossibleWords = nil
		game.Revealed = nil
		game.RoundData = make(map[string]int)

		return nil
	})
	if err != nil {
		return err
	}

	that.metrics.WordsSelected.Inc()

	wordLength := len([]rune(word))

	that.publish(ctx, event.GameChannel(gameID), event.WordSelected, event.WordSelectedPayload{
		GameID:     gameID,
		WordLength: wordLength,
		TurnEndAt:  turnEndAt,
	})

	if err = that.scheduler.Schedule(ctx, TaskEndTurn, EndTurnPayload{
		GameID: gameID,
		Word:   word,
	}, turnEndAt); err != nil {
		return fmt.Errorf("failed to schedule end of turn: %w", err)
	}

	revealOffsets := []time.Duration{60 * time.Second, 30 * time.Second}
	if wordLength > 5 {
		revealOffsets = append(revealOffsets, 10*time.Second)
	}

	for _, offset := range revealOffsets {
		fireAt := turnEndAt.Add(-offset)
		if !fireAt.After(now) {
			continue
		}

		if err = that.scheduler.Schedule(ctx, TaskRevealLetter, RevealLetterPayload{
			GameID: gameID,
			Word:   word,
		}, fireAt); err != nil {
			return fmt.Errorf("failed to schedule letter reveal: %w", err)
		}
	}

	return nil
}

// GuessWord awards a correct guess: the earlier the guess, the more
// points. When the last guesser is done it ends the turn immediately
// instead of waiting for the scheduled task.
func (that *Coordinator) GuessWord(ctx context.Context, gameID, playerID string) error {
	now := that.now()

	var (
		scoreboard entity.Scoreboard
		word       string
		allDone    bool
	)

	_, err := that.games.Update(ctx, gameID, func(game *entity.Game) error {
		if game.IsFinished() {
			return apperror.ErrGameFinished
		}

		if playerID == game.Turn {
			return fmt.Errorf("%w: the drawer may not guess the word", apperror.ErrForbidden)
		}

		if game.HasGuessed(playerID) {
			return apperror.ErrAlreadyGuessed
		}

		if game.Word == "" || game.TurnEndAt == nil {
			return fmt.Errorf("%w: no word is being drawn", apperror.ErrForbidden)
		}

		remaining := int(game.TurnEndAt.Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}

		points := remaining*that.conf.PointsPerRemainingSecond + that.conf.GuessBasePoints

		game.RoundData[playerID] = points

		if err := game.Scoreboard.AddPoints(playerID, points); err != nil {
			return err
		}
		game.Scoreboard.RecomputePlacements()

		scoreboard = game.Scoreboard
		word = game.Word
		allDone = game.AllGuessersDone()

		return nil
	})
	if err != nil {
		return err
	}

	that.metrics.Guesses.Inc()

	if allDone {
		// Everyone but the drawer has guessed; the scheduled end-turn
		// task will find the word gone and no-op.
		if err = that.EndTurn(ctx, gameID, word); err != nil && !errors.Is(err, apperror.ErrStaleTask) {
			return fmt.Errorf("failed to end turn early: %w", err)
		}
	}

	that.publish(ctx, event.GameChannel(gameID), event.WordGuessed, event.WordGuessedPayload{
		GameID:     gameID,
		PlayerID:   playerID,
		Timestamp:  now,
		Scoreboard: scoreboard,
	})

	return nil
}

// AnalyzeChatMessage routes a chat message: an exact match of the secret
// word becomes a guess, anything else is broadcast as chat, and a near
// miss additionally returns a close-guess signal for the sender only.
func (that *Coordinator) AnalyzeChatMessage(ctx context.Context, lobbyID, playerID, message string) (*ChatResult, error) {
	gameID, err := that.lobbies.GameID(ctx, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lobby game: %w", err)
	}

	game, err := that.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.HasGuessed(playerID) {
		return nil, fmt.Errorf("%w: no chat after guessing the word", apperror.ErrAlreadyGuessed)
	}

	if !game.IsFinished() && game.Word != "" && guess.Matches(game.Word, message) {
		if err = that.GuessWord(ctx, gameID, playerID); err != nil {
			return nil, err
		}

		return &ChatResult{Guessed: true}, nil
	}

	that.publish(ctx, event.LobbyChannel(lobbyID), event.ChatMessage, event.ChatMessagePayload{
		LobbyID:   lobbyID,
		PlayerID:  playerID,
		Message:   message,
		Timestamp: that.now(),
	})

	if game.Word != "" {
		similarity := guess.Similarity(game.Word, message)
		if similarity >= that.conf.CloseGuessThreshold {
			that.metrics.CloseGuesses.Inc()

			return &ChatResult{CloseGuess: true, Similarity: similarity}, nil
		}
	}

	return &ChatResult{}, nil
}

// turnOutcome captures what happened inside the end-of-turn transaction
// so events can be published after the state is committed.
type turnOutcome struct {
	deltas        map[string]int
	scoreboard    entity.Scoreboard
	revealedWord  string
	nextDrawer    string
	newRound      int
	roundAdvanced bool
	ended         bool
}

// EndTurn runs the end-of-turn sequence for the given word. It is
// idempotent: once the turn has ended (early or by timer) the word is
// cleared, so a later call for the same word fails the guard with
// apperror.ErrStaleTask and changes nothing.
func (that *Coordinator) EndTurn(ctx context.Context, gameID, word string) error {
	var out turnOutcome

	_, err := that.games.Update(ctx, gameID, func(game *entity.Game) error {
		if game.IsFinished() {
			return fmt.Errorf("%w: game is finished", apperror.ErrStaleTask)
		}

		if game.Word == "" || game.Word != word {
			return fmt.Errorf("%w: turn has already ended", apperror.ErrStaleTask)
		}

		out.revealedWord = game.Word
		out.deltas = make(map[string]int, len(game.RoundData)+1)
		for playerID, points := range game.RoundData {
			out.deltas[playerID] = points
		}

		points, err := that.giveDrawerPoints(game)
		if err != nil {
			return err
		}

		if points > 0 {
			out.deltas[game.Turn] = points
		}

		that.advance(game, &out)

		// Clearing the word makes any still-pending end-turn task for
		// this turn stale.
		game.Word = ""
		game.TurnEndAt = nil
		game.Revealed = nil

		out.scoreboard = game.Scoreboard

		return nil
	})
	if err != nil {
		return err
	}

	that.metrics.TurnsEnded.Inc()

	that.publish(ctx, event.GameChannel(gameID), event.TurnEnded, event.TurnEndedPayload{
		GameID:       gameID,
		PointDeltas:  out.deltas,
		Scoreboard:   out.scoreboard,
		RevealedWord: out.revealedWord,
		NextDrawerID: out.nextDrawer,
	})

	if out.roundAdvanced {
		that.publish(ctx, event.GameChannel(gameID), event.RoundAdvanced, event.RoundAdvancedPayload{
			GameID:   gameID,
			NewRound: out.newRound,
		})
	}

	if out.ended {
		that.metrics.GamesEnded.Inc()
		that.metrics.ActiveGames.Dec()

		that.publish(ctx, event.GameChannel(gameID), event.GameEnded, event.GameEndedPayload{GameID: gameID})

		that.logger.Info("game ended", "gameID", gameID)

		return nil
	}

	if _, err = that.GenerateWords(ctx, gameID); err != nil {
		return fmt.Errorf("failed to start next turn: %w", err)
	}

	return nil
}

// giveDrawerPoints rewards the drawer from this turn's guesses: half the
// average guesser score, rounded to the nearest ten. Nobody guessing
// means no points.
func (that *Coordinator) giveDrawerPoints(game *entity.Game) (int, error) {
	if len(game.RoundData) == 0 {
		return 0, nil
	}

	total := 0
	for _, points := range game.RoundData {
		total += points
	}

	points := drawerPoints(total, len(game.RoundData))
	if points == 0 {
		return 0, nil
	}

	if err := game.Scoreboard.AddPoints(game.Turn, points); err != nil {
		return 0, err
	}
	game.Scoreboard.RecomputePlacements()

	return points, nil
}

// advance moves the turn to the next drawer, rolling over into a new
// round when the order is exhausted and finishing the game after the
// last round.
func (that *Coordinator) advance(game *entity.Game, out *turnOutcome) {
	next, wrapped := game.NextDrawer()

	if wrapped {
		game.Round++
		out.roundAdvanced = true
		out.newRound = game.Round

		if game.Round > game.TotalRounds {
			game.Status = entity.StatusFinished
			out.ended = true

			return
		}
	}

	game.Turn = next
	out.nextDrawer = next
}

// drawerPoints is half the average of the guessers' points, rounded to
// the nearest ten with exact halves rounding down (95 -> 90, 96 -> 100).
func drawerPoints(total, guesses int) int {
	avg := int(math.Round(float64(total) / float64(guesses*2)))

	points := avg / 10 * 10
	if avg%10 > 5 {
		points += 10
	}

	return points
}

// finishGame marks a game finished outside the normal end-of-turn path
// (deck exhaustion). The state is already committed; this only reports.
func (that *Coordinator) finishGame(ctx context.Context, gameID string) {
	that.metrics.GamesEnded.Inc()
	that.metrics.ActiveGames.Dec()

	that.publish(ctx, event.GameChannel(gameID), event.GameEnded, event.GameEndedPayload{GameID: gameID})
}

// publish delivers an event and logs delivery failures; the state change
// the event reports is already committed and must not be rolled back.
func (that *Coordinator) publish(ctx context.Context, channel, name string, payload any) {
	if err := that.publisher.Publish(ctx, channel, name, payload); err != nil {
		that.logger.Error("failed to publish event", "channel", channel, "event", name, "error", err)
	}
}

func sameWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func containsWord(words []string, word string) bool {
	for _, candidate := range words {
		if candidate == word {
			return true
		}
	}

	return false
}
