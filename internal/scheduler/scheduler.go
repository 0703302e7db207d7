// Package scheduler executes named, payload-bearing tasks at or after an
// absolute timestamp. Tasks live in a Redis sorted set scored by fire
// time, so pending tasks survive process restarts and any one instance
// claims a due task exactly once.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
	"github.com/rocketscienceinc/drawonary-backend/internal/pkg"
)

const tasksKey = "scheduler:tasks"

var ErrDuplicateHandler = errors.New("handler is already registered for task")

// Handler runs a due task. Returning apperror.ErrStaleTask means the task
// was overtaken by a live action and is a no-op by design; any other
// error is an operational failure.
type Handler func(ctx context.Context, payload json.RawMessage) error

type task struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
	FireAt  time.Time       `json:"fire_at"`
}

type Scheduler struct {
	logger   *slog.Logger
	client   *redis.Client
	interval time.Duration
	handlers map[string]Handler
}

func New(logger *slog.Logger, client *redis.Client, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		logger:   logger.With("component", "scheduler"),
		client:   client,
		interval: pollInterval,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a task name. All handlers must be
// registered before Run is called.
func (that *Scheduler) Register(name string, handler func(ctx context.Context, payload json.RawMessage) error) error {
	if _, ok := that.handlers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}

	that.handlers[name] = handler

	return nil
}

// Schedule stores a task to be executed at or after fireAt. Once
// scheduled a task cannot be withdrawn; handlers guard against stale
// state instead.
func (that *Scheduler) Schedule(ctx context.Context, name string, payload any, fireAt time.Time) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	taskJSON, err := json.Marshal(task{
		ID:      pkg.GenerateTaskID(),
		Name:    name,
		Payload: payloadJSON,
		FireAt:  fireAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = that.client.ZAdd(ctx, tasksKey, redis.Z{
		Score:  float64(fireAt.UnixMilli()),
		Member: taskJSON,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule task: %w", err)
	}

	that.logger.Debug("task scheduled", "task", name, "fire_at", fireAt)

	return nil
}

// Run polls for due tasks until ctx is canceled.
func (that *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := that.dispatchDue(ctx); err != nil {
				that.logger.Error("failed to dispatch due tasks", "error", err)
			}
		}
	}
}

func (that *Scheduler) dispatchDue(ctx context.Context) error {
	now := time.Now()

	members, err := that.client.ZRangeByScore(ctx, tasksKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to fetch due tasks: %w", err)
	}

	for _, member := range members {
		// ZRem succeeds for exactly one instance, so a task fires once
		// even with several schedulers polling the same set.
		removed, err := that.client.ZRem(ctx, tasksKey, member).Result()
		if err != nil {
			return fmt.Errorf("failed to claim task: %w", err)
		}

		if removed == 0 {
			continue
		}

		that.execute(ctx, []byte(member))
	}

	return nil
}

func (that *Scheduler) execute(ctx context.Context, raw []byte) {
	var claimed task
	if err := json.Unmarshal(raw, &claimed); err != nil {
		that.logger.Error("failed to unmarshal claimed task", "error", err)
		return
	}

	log := that.logger.With("task", claimed.Name, "task_id", claimed.ID)

	handler, ok := that.handlers[claimed.Name]
	if !ok {
		log.Error("no handler registered for task")
		return
	}

	err := handler(ctx, claimed.Payload)

	switch {
	case errors.Is(err, apperror.ErrStaleTask):
		// Overtaken by a live action; a no-op by contract.
		log.Debug("task was stale", "error", err)
	case err != nil:
		log.Error("task failed", "error", err)
	default:
		log.Debug("task executed")
	}
}
