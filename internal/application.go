package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/drawonary-backend/internal/config"
	"github.com/rocketscienceinc/drawonary-backend/internal/monitor"
	"github.com/rocketscienceinc/drawonary-backend/internal/pubsub"
	"github.com/rocketscienceinc/drawonary-backend/internal/repository"
	"github.com/rocketscienceinc/drawonary-backend/internal/repository/storage"
	"github.com/rocketscienceinc/drawonary-backend/internal/scheduler"
	"github.com/rocketscienceinc/drawonary-backend/internal/service"
	"github.com/rocketscienceinc/drawonary-backend/internal/usecase"
	"github.com/rocketscienceinc/drawonary-backend/transport/rest"
	"github.com/rocketscienceinc/drawonary-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open word catalog storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close word catalog storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init word catalog schema: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	lobbyRepo := repository.NewLobbyRepository(redisStorage.Connection)
	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	deckRepo := repository.NewDeckRepository(sqliteStorage.Connection)

	if len(conf.DefaultDeck.Words) > 0 {
		if err = deckRepo.CreateDeck(ctx, conf.DefaultDeck.ID, conf.DefaultDeck.Name, conf.DefaultDeck.Words); err != nil {
			return fmt.Errorf("could not seed default deck: %w", err)
		}
	}

	metrics := monitor.NewMetrics("drawonary")
	publisher := pubsub.NewPublisher(logger, redisStorage.Connection)
	subscriber := pubsub.NewSubscriber(logger, redisStorage.Connection)
	taskScheduler := scheduler.New(logger, redisStorage.Connection, conf.Game.SchedulerPollInterval())

	coordinator := service.NewCoordinator(
		logger,
		service.Config{
			TotalRounds:              conf.Game.TotalRounds,
			SelectionWindow:          conf.Game.SelectionWindow(),
			TurnDuration:             conf.Game.TurnDuration(),
			CandidateWords:           conf.Game.CandidateWords,
			CloseGuessThreshold:      conf.Game.CloseGuessThreshold,
			PointsPerRemainingSecond: conf.Game.PointsPerRemainingSec,
			GuessBasePoints:          conf.Game.GuessBasePoints,
		},
		gameRepo,
		lobbyRepo,
		playerRepo,
		deckRepo,
		publisher,
		taskScheduler,
		metrics,
	)

	if err = service.RegisterTasks(taskScheduler, coordinator); err != nil {
		return fmt.Errorf("could not register task handlers: %w", err)
	}

	go func() {
		if schedErr := taskScheduler.Run(ctx); schedErr != nil {
			log.Error("scheduler stopped", "error", schedErr)
		}
	}()

	gameUseCase := usecase.NewGameUseCase(gameRepo, coordinator)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort, metrics.Handler()); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, subscriber)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
