package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultURL is used when no gateway URL is configured or discovered.
const DefaultURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrConnectionClosed = errors.New("connection closed")
	ErrInvalidSession   = errors.New("invalid session")
	ErrHeartbeatTimeout = errors.New("heartbeat not acknowledged")
	ErrHelloTimeout     = errors.New("no hello received")
	ErrFatalClose       = errors.New("unrecoverable gateway close")
	ErrInvalidHeartbeat = errors.New("invalid heartbeat interval")
	ErrMissingEventType = errors.New("dispatch frame without event type")
)

// Opcode identifies the kind of gateway frame. Values are fixed by the
// remote protocol.
type Opcode int

const (
	OpDispatch       Opcode = 0
	OpHeartbeat      Opcode = 1
	OpIdentify       Opcode = 2
	OpInvalidSession Opcode = 9
	OpHello          Opcode = 10
	OpHeartbeatAck   Opcode = 11
)

func (o Opcode) String() string {
	switch o {
	case OpDispatch:
		return "dispatch"
	case OpHeartbeat:
		return "heartbeat"
	case OpIdentify:
		return "identify"
	case OpInvalidSession:
		return "invalid_session"
	case OpHello:
		return "hello"
	case OpHeartbeatAck:
		return "heartbeat_ack"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// EventReady is the dispatch event that completes identification.
const EventReady = "READY"

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Frame is an inbound gateway frame. S and T are only set on dispatch frames.
type Frame struct {
	Op Opcode          `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s"`
	T  *string         `json:"t"`
}

// outboundFrame is a frame sent by the client.
type outboundFrame struct {
	Op Opcode `json:"op"`
	D  any    `json:"d"`
}

// HelloData is the payload of an OpHello frame.
type HelloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"` // Milliseconds
}

// IdentifyData is the payload of an OpIdentify frame.
type IdentifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties IdentifyProperties `json:"properties"`
}

// IdentifyProperties describes the connecting client.
type IdentifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// Event is a decoded application event handed to the Dispatcher. It is a
// private copy; nothing in it is shared with the Connection.
type Event struct {
	Type       string          // e.g. "INTERACTION_CREATE"
	Seq        int64           // 0 if the frame carried no sequence
	Data       json.RawMessage // Raw "d" payload
	ReceivedAt time.Time
}

// Dispatcher receives application events. Dispatch must not block.
type Dispatcher interface {
	Dispatch(ev Event)
}

// DispatcherFunc is a function adapter for Dispatcher.
type DispatcherFunc func(Event)

func (f DispatcherFunc) Dispatch(ev Event) {
	f(ev)
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Gateway URL including ?v=10&encoding=json
	HandshakeTimeout time.Duration // Dial handshake timeout
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              DefaultURL,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       256,
	}
}

// DefaultHelloTimeout bounds the wait for Hello after the socket opens.
const DefaultHelloTimeout = 20 * time.Second

// ConnectionConfig configures a single gateway Connection.
type ConnectionConfig struct {
	Client       ClientConfig
	Identify     IdentifyData
	HelloTimeout time.Duration // Zero means DefaultHelloTimeout
	Debug        bool          // Log every raw frame
}

// SupervisorConfig configures the reconnect loop.
type SupervisorConfig struct {
	Connection        ConnectionConfig
	ExitOnFatal       bool          // Return on the first connection failure instead of reconnecting
	ReconnectBaseWait time.Duration // Base wait time for reconnection
	ReconnectMaxWait  time.Duration // Max wait time for reconnection
}

// DefaultSupervisorConfig returns sensible defaults.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		Connection: ConnectionConfig{
			Client: DefaultClientConfig(),
		},
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  60 * time.Second,
	}
}
