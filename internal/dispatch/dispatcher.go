// Package dispatch runs gateway events on isolated, bounded concurrent tasks.
//
// Each accepted event becomes one Task running on its own goroutine. At most
// MaxConcurrent tasks run at once; up to MaxPending tasks may be accepted
// (running plus waiting for a slot). Events beyond that are rejected and
// counted. A task's error or panic is logged and counted, never retried and
// never propagated to the gateway connection.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/rickgao/registration-bot/internal/gateway"
	"github.com/rickgao/registration-bot/internal/metrics"
)

// Errors
var (
	ErrTaskPanic = errors.New("task panicked")
	ErrStopped   = errors.New("dispatcher stopped")
)

// Task is one unit of work for one event. It owns a private copy of the event.
type Task struct {
	ID    uuid.UUID
	Event gateway.Event
}

// Handler processes tasks for one event type.
type Handler interface {
	Handle(ctx context.Context, task Task) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, task Task) error

func (f HandlerFunc) Handle(ctx context.Context, task Task) error {
	return f(ctx, task)
}

// Config configures a Dispatcher.
type Config struct {
	MaxConcurrent int64         // Tasks executing at once
	MaxPending    int64         // Tasks accepted (executing + waiting)
	TaskTimeout   time.Duration // Per-task deadline, 0 = none
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 32,
		MaxPending:    1024,
		TaskTimeout:   30 * time.Second,
	}
}

// Dispatcher fans events out to handlers. It implements gateway.Dispatcher.
type Dispatcher struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	handlersMu sync.RWMutex
	handlers   map[string]Handler

	sem     *semaphore.Weighted
	pending atomic.Int64

	// Root context for all tasks. Independent of any gateway connection.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// New creates a dispatcher.
func New(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxPending < cfg.MaxConcurrent {
		cfg.MaxPending = cfg.MaxConcurrent
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:      cfg,
		logger:   logger.With("component", "dispatch"),
		metrics:  m,
		handlers: make(map[string]Handler),
		sem:      semaphore.NewWeighted(cfg.MaxConcurrent),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Handle registers h for eventType, replacing any previous handler.
func (d *Dispatcher) Handle(eventType string, h Handler) {
	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()
	d.handlers[eventType] = h
}

// HandleFunc registers a function for eventType.
func (d *Dispatcher) HandleFunc(eventType string, fn func(ctx context.Context, task Task) error) {
	d.Handle(eventType, HandlerFunc(fn))
}

// Pending returns the number of accepted tasks that have not finished.
func (d *Dispatcher) Pending() int64 {
	return d.pending.Load()
}

// Dispatch starts a task for ev if a handler is registered. It never blocks.
func (d *Dispatcher) Dispatch(ev gateway.Event) {
	d.handlersMu.RLock()
	h, ok := d.handlers[ev.Type]
	d.handlersMu.RUnlock()

	if !ok {
		d.logger.Debug("no handler for event", "type", ev.Type, "seq", ev.Seq)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.metrics.IncTasksRejected()
		d.logger.Warn("rejecting event", "type", ev.Type, "seq", ev.Seq, "error", ErrStopped)
		return
	}

	if n := d.pending.Add(1); n > d.cfg.MaxPending {
		d.pending.Add(-1)
		d.metrics.IncTasksRejected()
		d.logger.Warn("dispatch queue full, rejecting event",
			"type", ev.Type,
			"seq", ev.Seq,
			"max_pending", d.cfg.MaxPending,
		)
		return
	}

	task := Task{ID: uuid.New(), Event: ev}

	d.wg.Add(1)
	go d.run(h, task)
}

func (d *Dispatcher) run(h Handler, task Task) {
	defer d.wg.Done()
	defer d.pending.Add(-1)

	logger := d.logger.With("task_id", task.ID, "type", task.Event.Type)

	if err := d.sem.Acquire(d.ctx, 1); err != nil {
		d.metrics.IncTasksFailed()
		logger.Warn("task abandoned before start", "error", err)
		return
	}
	defer d.sem.Release(1)

	d.metrics.IncTasksDispatched()

	ctx := d.ctx
	if d.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.TaskTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := safeHandle(ctx, h, task); err != nil {
		d.metrics.IncTasksFailed()
		logger.Warn("task failed", "error", err, "duration", time.Since(start))
		return
	}
	logger.Debug("task completed", "duration", time.Since(start))
}

func safeHandle(ctx context.Context, h Handler, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return h.Handle(ctx, task)
}

// Stop rejects new events and waits for accepted tasks. If ctx expires
// first, remaining tasks have their context cancelled and ctx.Err() is
// returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.logger.Info("stopping dispatcher", "pending", d.pending.Load())

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.logger.Info("dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.cancel()
		d.logger.Warn("shutdown timeout, abandoning tasks", "pending", d.pending.Load())
		return ctx.Err()
	}
}
