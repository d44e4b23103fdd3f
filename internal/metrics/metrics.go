package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics is the explicitly-owned counter set shared by the gateway,
// the dispatcher and the registration handler.
type Metrics struct {
	usersCreated       atomic.Int64
	failedInteractions atomic.Int64
	failedDBUpdates    atomic.Int64

	// lastUpdate is an offset from base so /livez keeps the monotonic
	// clock reading.
	base       time.Time
	lastUpdate atomic.Int64
	hasUpdate  atomic.Bool

	tasksDispatched atomic.Int64
	tasksRejected   atomic.Int64
	tasksFailed     atomic.Int64
	reconnects      atomic.Int64
	decodeErrors    atomic.Int64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	UsersCreated       int64
	FailedInteractions int64
	FailedDBUpdates    int64
	LastUpdate         time.Time

	TasksDispatched int64
	TasksRejected   int64
	TasksFailed     int64
	Reconnects      int64
	DecodeErrors    int64
}

// New returns a zeroed counter set.
func New() *Metrics {
	return &Metrics{base: time.Now()}
}

func (m *Metrics) IncUsersCreated()       { m.usersCreated.Add(1) }
func (m *Metrics) IncFailedInteractions() { m.failedInteractions.Add(1) }
func (m *Metrics) IncFailedDBUpdates()    { m.failedDBUpdates.Add(1) }
func (m *Metrics) IncTasksDispatched()    { m.tasksDispatched.Add(1) }
func (m *Metrics) IncTasksRejected()      { m.tasksRejected.Add(1) }
func (m *Metrics) IncTasksFailed()        { m.tasksFailed.Add(1) }
func (m *Metrics) IncReconnects()         { m.reconnects.Add(1) }
func (m *Metrics) IncDecodeErrors()       { m.decodeErrors.Add(1) }

// MarkUpdate records that a gateway frame was processed at t.
func (m *Metrics) MarkUpdate(t time.Time) {
	m.lastUpdate.Store(int64(t.Sub(m.base)))
	m.hasUpdate.Store(true)
}

// LastUpdate returns the time of the last processed frame, or the zero
// time if none has been seen.
func (m *Metrics) LastUpdate() time.Time {
	if !m.hasUpdate.Load() {
		return time.Time{}
	}
	return m.base.Add(time.Duration(m.lastUpdate.Load()))
}

// Live reports whether a frame was processed within window of now.
func (m *Metrics) Live(now time.Time, window time.Duration) bool {
	last := m.LastUpdate()
	if last.IsZero() {
		return false
	}
	return now.Sub(last) < window
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:       m.usersCreated.Load(),
		FailedInteractions: m.failedInteractions.Load(),
		FailedDBUpdates:    m.failedDBUpdates.Load(),
		LastUpdate:         m.LastUpdate(),
		TasksDispatched:    m.tasksDispatched.Load(),
		TasksRejected:      m.tasksRejected.Load(),
		TasksFailed:        m.tasksFailed.Load(),
		Reconnects:         m.reconnects.Load(),
		DecodeErrors:       m.decodeErrors.Load(),
	}
}
