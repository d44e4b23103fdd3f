package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ConcurrentIncrements(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncUsersCreated()
				m.IncFailedInteractions()
				m.IncFailedDBUpdates()
			}
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	assert.Equal(t, int64(5000), s.UsersCreated)
	assert.Equal(t, int64(5000), s.FailedInteractions)
	assert.Equal(t, int64(5000), s.FailedDBUpdates)
}

func TestMetrics_Live(t *testing.T) {
	m := New()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, m.Live(now, 120*time.Second), "never updated should not be live")

	m.MarkUpdate(now.Add(-119 * time.Second))
	assert.True(t, m.Live(now, 120*time.Second))

	m.MarkUpdate(now.Add(-121 * time.Second))
	assert.False(t, m.Live(now, 120*time.Second))
}

func TestMetrics_LastUpdateKeepsMonotonicClock(t *testing.T) {
	m := New()
	now := time.Now()
	m.MarkUpdate(now)

	last := m.LastUpdate()
	assert.True(t, last.Equal(now))
	// Time.String prints "m=" only when a monotonic reading is present.
	assert.Contains(t, last.String(), "m=")
	assert.Equal(t, time.Duration(0), last.Sub(now))
	assert.True(t, m.Live(now.Add(time.Second), 2*time.Second))
}

func TestCollector_Exposition(t *testing.T) {
	m := New()
	m.IncUsersCreated()
	m.IncUsersCreated()
	m.IncFailedInteractions()
	m.IncFailedDBUpdates()

	expected := `
# HELP registration_bot_users_created Number of users created by current process.
# TYPE registration_bot_users_created counter
registration_bot_users_created 2
# HELP registration_bot_failed_interactions Number of failed discord interaction responses.
# TYPE registration_bot_failed_interactions counter
registration_bot_failed_interactions 1
# HELP registration_bot_failed_db_updates Number of failed member record writes.
# TYPE registration_bot_failed_db_updates counter
registration_bot_failed_db_updates 1
`
	err := testutil.CollectAndCompare(NewCollector(m), strings.NewReader(expected),
		"registration_bot_users_created",
		"registration_bot_failed_interactions",
		"registration_bot_failed_db_updates",
	)
	require.NoError(t, err)
}

func TestServer_Livez(t *testing.T) {
	m := New()
	s := NewServer(ServerConfig{Host: "localhost", Port: 8080}, m, nil)
	now := time.Now()
	s.now = func() time.Time { return now }

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/livez")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "failing", body)

	m.MarkUpdate(now.Add(-time.Second))

	resp, body = get(t, ts.URL+"/livez")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
}

func TestServer_Metrics(t *testing.T) {
	m := New()
	m.IncUsersCreated()
	s := NewServer(ServerConfig{Host: "localhost", Port: 8080}, m, nil)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "registration_bot_users_created 1")
	assert.Contains(t, body, "registration_bot_last_update 0")
	assert.Contains(t, body, "registration_bot_failed_interactions 0")
	assert.Contains(t, body, "registration_bot_failed_db_updates 0")
}

func TestServer_NotFound(t *testing.T) {
	s := NewServer(ServerConfig{Host: "localhost", Port: 8080}, New(), nil)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "404 Page Not Found")
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}
