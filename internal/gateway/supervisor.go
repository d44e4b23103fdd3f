package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/registration-bot/internal/metrics"
)

// Supervisor keeps one gateway connection alive. Every attempt gets a fresh
// Connection and Session; nothing carries over between attempts.
type Supervisor struct {
	cfg        SupervisorConfig
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu      sync.RWMutex
	current *Connection

	newConnection func() *Connection
}

// NewSupervisor creates a supervisor.
func NewSupervisor(cfg SupervisorConfig, dispatcher Dispatcher, m *metrics.Metrics, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = time.Second
	}
	if cfg.ReconnectMaxWait < cfg.ReconnectBaseWait {
		cfg.ReconnectMaxWait = cfg.ReconnectBaseWait
	}

	s := &Supervisor{
		cfg:        cfg,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger.With("component", "gateway"),
	}
	s.newConnection = func() *Connection {
		return NewConnection(s.cfg.Connection, s.dispatcher, s.metrics, s.logger)
	}
	return s
}

// Phase returns the phase of the current connection.
func (s *Supervisor) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return PhaseDisconnected
	}
	return s.current.Session().Phase()
}

// Run connects and reconnects with exponential backoff until ctx is
// cancelled (returns nil) or a failure cannot be recovered from.
func (s *Supervisor) Run(ctx context.Context) error {
	wait := s.cfg.ReconnectBaseWait
	maxWait := s.cfg.ReconnectMaxWait

	for {
		conn := s.newConnection()
		s.mu.Lock()
		s.current = conn
		s.mu.Unlock()

		err := conn.Run(ctx)

		if ctx.Err() != nil {
			s.logger.Info("gateway stopped")
			return nil
		}
		if err == nil {
			err = ErrConnectionClosed
		}

		if errors.Is(err, ErrFatalClose) {
			s.logger.Error("gateway closed, not reconnecting", "error", err)
			return err
		}
		if s.cfg.ExitOnFatal {
			s.logger.Error("gateway connection lost", "error", err)
			return err
		}

		// Reset backoff once a session reached READY.
		if conn.Ready() {
			wait = s.cfg.ReconnectBaseWait
		}

		s.logger.Warn("gateway connection lost, reconnecting",
			"error", err,
			"wait", wait,
		)
		s.metrics.IncReconnects()

		select {
		case <-ctx.Done():
			s.logger.Info("gateway stopped")
			return nil
		case <-time.After(wait):
		}

		wait *= 2
		if wait > maxWait {
			wait = maxWait
		}
	}
}
