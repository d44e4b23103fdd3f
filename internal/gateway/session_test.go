package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SequenceRequiresHello(t *testing.T) {
	s := NewSession()

	for _, p := range []Phase{PhaseDisconnected, PhaseConnecting, PhaseAwaitingHello} {
		s.setPhase(p)
		assert.False(t, s.updateSequence(5), "sequence accepted in %s", p)
	}
	_, ok := s.Sequence()
	require.False(t, ok, "sequence should be unset")

	s.setPhase(PhaseIdentifying)
	require.True(t, s.updateSequence(7), "sequence rejected in identifying")
	s.setPhase(PhaseConnected)
	s.updateSequence(12)

	seq, ok := s.Sequence()
	assert.True(t, ok)
	assert.Equal(t, int64(12), seq)
}

func TestSession_StoresValueAsReceived(t *testing.T) {
	s := NewSession()
	s.setPhase(PhaseConnected)

	s.updateSequence(12)
	s.updateSequence(7)

	seq, _ := s.Sequence()
	assert.Equal(t, int64(7), seq)
}

func TestSession_LastAckKeepsMonotonicClock(t *testing.T) {
	s := NewSession()
	assert.True(t, s.LastAck().IsZero())

	now := time.Now()
	s.ack(now)

	last := s.LastAck()
	assert.True(t, last.Equal(now))
	// Time.String prints "m=" only when a monotonic reading is present.
	assert.Contains(t, last.String(), "m=")
	assert.Equal(t, 3*time.Second, now.Add(3*time.Second).Sub(last))
}

func TestSession_LastAckWallClockInput(t *testing.T) {
	s := NewSession()
	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s.ack(at)

	assert.True(t, s.LastAck().Equal(at))
	assert.Equal(t, time.Minute, at.Add(time.Minute).Sub(s.LastAck()))
}

func TestSession_Reset(t *testing.T) {
	s := NewSession()
	s.setPhase(PhaseConnected)
	s.updateSequence(99)
	s.ack(time.Now())
	s.setInterval(41250)
	s.markIdentified()

	s.reset()

	assert.Equal(t, PhaseDisconnected, s.Phase())
	seq, ok := s.Sequence()
	assert.False(t, ok)
	assert.Zero(t, seq)
	assert.True(t, s.LastAck().IsZero(), "LastAck should be cleared")
	assert.Zero(t, s.HeartbeatInterval())
	assert.True(t, s.markIdentified(), "identify flag should be cleared")
}

func TestSession_MarkIdentifiedOnce(t *testing.T) {
	s := NewSession()
	require.True(t, s.markIdentified(), "first call should succeed")
	require.False(t, s.markIdentified(), "second call should fail")
}

func TestSession_HeartbeatInterval(t *testing.T) {
	s := NewSession()
	s.setInterval(45000)
	assert.Equal(t, 45*time.Second, s.HeartbeatInterval())
}

func TestPhase_String(t *testing.T) {
	tests := map[Phase]string{
		PhaseDisconnected:  "disconnected",
		PhaseConnecting:    "connecting",
		PhaseAwaitingHello: "awaiting_hello",
		PhaseIdentifying:   "identifying",
		PhaseConnected:     "connected",
		Phase(42):          "unknown",
	}
	for p, want := range tests {
		assert.Equal(t, want, p.String(), "Phase(%d)", int(p))
	}
}
