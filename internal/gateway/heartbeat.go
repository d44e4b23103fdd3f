package gateway

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// heartbeatSender sends one heartbeat carrying seq, or null when seq is nil.
type heartbeatSender func(seq *int64) error

// Monitor sends heartbeats at a fixed interval and declares the connection
// dead when no acknowledgement has been seen for more than two intervals.
type Monitor struct {
	interval time.Duration
	session  *Session
	send     heartbeatSender
	onDead   func()
	logger   *slog.Logger
	now      func() time.Time

	startedAt time.Time
	done      chan struct{}
	exited    chan struct{}
	stopOnce  sync.Once
	started   atomic.Bool
	dead      atomic.Bool
}

// NewMonitor creates a monitor. onDead is called at most once.
func NewMonitor(interval time.Duration, session *Session, send heartbeatSender, onDead func(), logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		interval: interval,
		session:  session,
		send:     send,
		onDead:   onDead,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

// Start launches the heartbeat loop.
func (m *Monitor) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	m.startedAt = m.now()
	go m.loop()
}

// Stop terminates the loop and waits for it to exit. Safe to call more
// than once and before Start.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
	if m.started.Load() {
		<-m.exited
	}
}

// Dead reports whether the monitor declared the connection dead.
func (m *Monitor) Dead() bool {
	return m.dead.Load()
}

func (m *Monitor) loop() {
	defer close(m.exited)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if !m.tick(m.now()) {
				return
			}
		}
	}
}

// tick runs one heartbeat cycle at now. It returns false once the
// connection has been declared dead.
func (m *Monitor) tick(now time.Time) bool {
	if m.dead.Load() {
		return false
	}

	last := m.session.LastAck()
	if last.IsZero() {
		last = m.startedAt
	}

	if since := now.Sub(last); since > 2*m.interval {
		if m.dead.CompareAndSwap(false, true) {
			m.logger.Warn("heartbeat not acknowledged, connection dead",
				"since_last_ack", since,
				"interval", m.interval,
			)
			if m.onDead != nil {
				m.onDead()
			}
		}
		return false
	}

	var seqPtr *int64
	seq, ok := m.session.Sequence()
	if ok {
		seqPtr = &seq
	}

	if err := m.send(seqPtr); err != nil {
		// Write failures surface on the read side; keep ticking so a dead
		// link is still detected.
		m.logger.Debug("failed to send heartbeat", "error", err)
		return true
	}
	m.logger.Debug("heartbeat sent", "seq", seq, "has_seq", ok)
	return true
}
