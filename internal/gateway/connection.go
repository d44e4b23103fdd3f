package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/registration-bot/internal/metrics"
)

// Close codes after which reconnecting cannot help.
var fatalCloseCodes = map[int]string{
	4004: "authentication failed",
	4010: "invalid shard",
	4011: "sharding required",
	4012: "invalid api version",
	4013: "invalid intents",
	4014: "disallowed intents",
}

// Connection runs one gateway connection from dial to close. It is not
// reusable; the Supervisor creates a new one per attempt.
type Connection struct {
	cfg        ConnectionConfig
	logger     *slog.Logger
	dispatcher Dispatcher
	metrics    *metrics.Metrics

	session   *Session
	client    Client
	newClient func(ClientConfig, *slog.Logger) Client
	monitor   *Monitor

	dead     chan struct{}
	deadOnce sync.Once
	ready    atomic.Bool
}

// NewConnection creates a connection that hands events to dispatcher.
func NewConnection(cfg ConnectionConfig, dispatcher Dispatcher, m *metrics.Metrics, logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	if dispatcher == nil {
		dispatcher = DispatcherFunc(func(Event) {})
	}

	return &Connection{
		cfg:        cfg,
		logger:     logger,
		dispatcher: dispatcher,
		metrics:    m,
		session:    NewSession(),
		newClient:  NewClient,
		dead:       make(chan struct{}),
	}
}

// Session returns the connection's session state for observation.
func (c *Connection) Session() *Session {
	return c.session
}

// Ready reports whether the connection ever received READY. It stays true
// after the connection closes.
func (c *Connection) Ready() bool {
	return c.ready.Load()
}

// Run dials the gateway and processes frames until the connection ends.
// It returns nil when ctx is cancelled and an error for every other cause.
func (c *Connection) Run(ctx context.Context) error {
	c.session.reset()
	c.session.setPhase(PhaseConnecting)
	defer c.teardown()

	c.client = c.newClient(c.cfg.Client, c.logger)
	if err := c.client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect gateway: %w", err)
	}

	c.session.setPhase(PhaseAwaitingHello)
	c.logger.Info("gateway connected", "url", c.cfg.Client.URL)

	helloTimeout := c.cfg.HelloTimeout
	if helloTimeout <= 0 {
		helloTimeout = DefaultHelloTimeout
	}
	helloTimer := time.NewTimer(helloTimeout)
	defer helloTimer.Stop()
	helloDeadline := helloTimer.C

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-c.dead:
			return ErrHeartbeatTimeout

		case <-helloDeadline:
			return fmt.Errorf("%w within %s", ErrHelloTimeout, helloTimeout)

		case err := <-c.client.Errors():
			return classifyClose(err)

		case msg := <-c.client.Messages():
			if err := c.handleMessage(msg); err != nil {
				return err
			}
			if helloDeadline != nil && c.session.Phase() != PhaseAwaitingHello {
				helloTimer.Stop()
				helloDeadline = nil
			}
		}
	}
}

func (c *Connection) teardown() {
	if c.monitor != nil {
		c.monitor.Stop()
	}
	if c.client != nil {
		c.client.Close()
	}
	c.session.setPhase(PhaseDisconnected)
}

// handleMessage interprets one raw frame. A non-nil error ends the connection.
func (c *Connection) handleMessage(msg TimestampedMessage) error {
	c.metrics.MarkUpdate(msg.ReceivedAt)

	if c.cfg.Debug {
		c.logger.Debug("gateway frame", "raw", string(msg.Data))
	}

	var f Frame
	if err := json.Unmarshal(msg.Data, &f); err != nil {
		c.metrics.IncDecodeErrors()
		c.logger.Warn("dropping malformed frame", "error", err, "size", len(msg.Data))
		return nil
	}

	if f.S != nil {
		c.session.updateSequence(*f.S)
	}

	switch f.Op {
	case OpDispatch:
		c.handleDispatch(f, msg.ReceivedAt)
		return nil

	case OpHeartbeat:
		if err := c.sendHeartbeat(c.currentSequence()); err != nil {
			return fmt.Errorf("send requested heartbeat: %w", err)
		}
		return nil

	case OpInvalidSession:
		c.logger.Error("gateway invalidated session")
		return ErrInvalidSession

	case OpHello:
		return c.handleHello(f, msg.ReceivedAt)

	case OpHeartbeatAck:
		c.session.ack(msg.ReceivedAt)
		return nil

	default:
		c.logger.Debug("ignoring frame", "op", f.Op)
		return nil
	}
}

func (c *Connection) handleHello(f Frame, receivedAt time.Time) error {
	if phase := c.session.Phase(); phase != PhaseAwaitingHello {
		c.logger.Warn("ignoring hello", "phase", phase)
		return nil
	}

	// Without a usable interval the session can never become live.
	var hello HelloData
	if err := json.Unmarshal(f.D, &hello); err != nil {
		c.metrics.IncDecodeErrors()
		return fmt.Errorf("%w: %v", ErrInvalidHeartbeat, err)
	}
	if hello.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHeartbeat, hello.HeartbeatInterval)
	}

	interval := time.Duration(hello.HeartbeatInterval) * time.Millisecond
	c.session.setInterval(hello.HeartbeatInterval)
	c.session.ack(receivedAt)
	c.session.setPhase(PhaseIdentifying)

	if c.session.markIdentified() {
		if err := c.send(OpIdentify, c.cfg.Identify); err != nil {
			return fmt.Errorf("send identify: %w", err)
		}
	}

	c.monitor = NewMonitor(interval, c.session, c.sendHeartbeat, c.markDead, c.logger)
	c.monitor.Start()

	c.logger.Info("identified", "heartbeat_interval", interval)
	return nil
}

func (c *Connection) handleDispatch(f Frame, receivedAt time.Time) {
	if f.T == nil || *f.T == "" {
		c.metrics.IncDecodeErrors()
		c.logger.Warn("dropping dispatch frame", "error", ErrMissingEventType)
		return
	}

	phase := c.session.Phase()
	if phase != PhaseIdentifying && phase != PhaseConnected {
		c.logger.Warn("dropping dispatch before hello", "type", *f.T, "phase", phase)
		return
	}

	if *f.T == EventReady {
		c.session.setPhase(PhaseConnected)
		c.ready.Store(true)
		c.logger.Info("gateway session ready")
	}

	ev := Event{
		Type:       *f.T,
		Data:       append(json.RawMessage(nil), f.D...),
		ReceivedAt: receivedAt,
	}
	if f.S != nil {
		ev.Seq = *f.S
	}
	c.dispatcher.Dispatch(ev)
}

func (c *Connection) currentSequence() *int64 {
	if seq, ok := c.session.Sequence(); ok {
		return &seq
	}
	return nil
}

func (c *Connection) sendHeartbeat(seq *int64) error {
	return c.send(OpHeartbeat, seq)
}

func (c *Connection) send(op Opcode, d any) error {
	data, err := json.Marshal(outboundFrame{Op: op, D: d})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", op, err)
	}
	return c.client.Send(data)
}

func (c *Connection) markDead() {
	c.deadOnce.Do(func() {
		close(c.dead)
	})
}

// classifyClose maps a read error to ErrFatalClose when the server closed
// with a code that rules out reconnecting.
func classifyClose(err error) error {
	if err == nil {
		return ErrConnectionClosed
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		if reason, ok := fatalCloseCodes[ce.Code]; ok {
			return fmt.Errorf("%w: %d %s: %v", ErrFatalClose, ce.Code, reason, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
}
