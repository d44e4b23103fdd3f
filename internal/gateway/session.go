package gateway

import (
	"sync/atomic"
	"time"
)

// Phase is the connection lifecycle state.
type Phase int32

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseAwaitingHello
	PhaseIdentifying
	PhaseConnected
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseAwaitingHello:
		return "awaiting_hello"
	case PhaseIdentifying:
		return "identifying"
	case PhaseConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Session holds the mutable state of one gateway connection. The read loop
// is the only writer; the heartbeat monitor and observers only read.
type Session struct {
	phase      atomic.Int32
	seq        atomic.Int64
	hasSeq     atomic.Bool
	intervalMs atomic.Int64
	identified atomic.Bool

	// lastAck is an offset from base so comparisons keep the monotonic
	// clock reading.
	base    time.Time
	lastAck atomic.Int64
	hasAck  atomic.Bool
}

// NewSession returns a Session in PhaseDisconnected with no sequence.
func NewSession() *Session {
	return &Session{base: time.Now()}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	return Phase(s.phase.Load())
}

// Sequence returns the last received sequence number. ok is false until the
// first sequenced frame arrives.
func (s *Session) Sequence() (seq int64, ok bool) {
	if !s.hasSeq.Load() {
		return 0, false
	}
	return s.seq.Load(), true
}

// LastAck returns when the last heartbeat acknowledgement (or Hello) was
// seen, or the zero time.
func (s *Session) LastAck() time.Time {
	if !s.hasAck.Load() {
		return time.Time{}
	}
	return s.base.Add(time.Duration(s.lastAck.Load()))
}

// HeartbeatInterval returns the server-dictated interval, 0 before Hello.
func (s *Session) HeartbeatInterval() time.Duration {
	return time.Duration(s.intervalMs.Load()) * time.Millisecond
}

func (s *Session) setPhase(p Phase) {
	s.phase.Store(int32(p))
}

// updateSequence stores seq as received. Sequence numbers are only
// meaningful once the session has said Hello.
func (s *Session) updateSequence(seq int64) bool {
	switch s.Phase() {
	case PhaseIdentifying, PhaseConnected:
	default:
		return false
	}
	s.seq.Store(seq)
	s.hasSeq.Store(true)
	return true
}

func (s *Session) ack(t time.Time) {
	s.lastAck.Store(int64(t.Sub(s.base)))
	s.hasAck.Store(true)
}

func (s *Session) setInterval(ms int64) {
	s.intervalMs.Store(ms)
}

// markIdentified reports whether this call was the first.
func (s *Session) markIdentified() bool {
	return s.identified.CompareAndSwap(false, true)
}

func (s *Session) reset() {
	s.setPhase(PhaseDisconnected)
	s.seq.Store(0)
	s.hasSeq.Store(false)
	s.hasAck.Store(false)
	s.lastAck.Store(0)
	s.intervalMs.Store(0)
	s.identified.Store(false)
}
