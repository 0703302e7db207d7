package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/drawonary-backend/internal/event"
	"github.com/rocketscienceinc/drawonary-backend/internal/pubsub"
	"github.com/rocketscienceinc/drawonary-backend/internal/usecase"
)

type Server struct {
	logger     *slog.Logger
	game       usecase.GameUseCase
	subscriber *pubsub.Subscriber
	upgrader   websocket.Upgrader
}

func New(logger *slog.Logger, game usecase.GameUseCase, subscriber *pubsub.Subscriber) *Server {
	return &Server{
		logger:     logger.With("component", "websocket"),
		game:       game,
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// session is one connected client. Gorilla connections allow a single
// concurrent writer, so every write goes through writeMu.
type session struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	playerID string

	pumpCancel context.CancelFunc
}

func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	sess := &session{conn: conn}
	defer func() {
		if sess.pumpCancel != nil {
			sess.pumpCancel()
		}
	}()

	log.Info("connection established", "remote", conn.RemoteAddr())

	for {
		var message Message
		if err = conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("failed to read message", "error", err)
			}

			return
		}

		if err = that.handleMessage(ctx, sess, &message); err != nil {
			log.Error("failed to handle message", "action", message.Action, "error", err)
		}
	}
}

func (that *session) send(action string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// startPump replaces the session's event subscription with one covering
// the given channels and forwards every published event to the socket.
func (that *Server) startPump(ctx context.Context, sess *session, channels ...string) {
	if sess.pumpCancel != nil {
		sess.pumpCancel()
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	sess.pumpCancel = cancel

	events, closeSub := that.subscriber.Subscribe(pumpCtx, channels...)

	go func() {
		defer func() {
			if err := closeSub(); err != nil {
				that.logger.Error("failed to close subscription", "error", err)
			}
		}()

		for {
			select {
			case <-pumpCtx.Done():
				return
			case message, ok := <-events:
				if !ok {
					return
				}

				if err := sess.send(message.Name, message.Payload); err != nil {
					that.logger.Error("failed to forward event", "event", message.Name, "error", err)
					return
				}
			}
		}
	}()
}

// channelsFor lists the pub/sub channels a connect request subscribes to.
func channelsFor(payload *ConnectPayload) []string {
	channels := []string{event.LobbyChannel(payload.LobbyID)}

	if payload.GameID != "" {
		channels = append(channels, event.GameChannel(payload.GameID))
	}

	return channels
}
