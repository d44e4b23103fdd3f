package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "registration_bot"

// collector exposes a *Metrics through the Prometheus registry. Values are
// read at scrape time, so the counters stay plain atomics.
type collector struct {
	m *Metrics

	usersCreated       *prometheus.Desc
	lastUpdate         *prometheus.Desc
	failedInteractions *prometheus.Desc
	failedDBUpdates    *prometheus.Desc
	tasksDispatched    *prometheus.Desc
	tasksRejected      *prometheus.Desc
	tasksFailed        *prometheus.Desc
	reconnects         *prometheus.Desc
	decodeErrors       *prometheus.Desc
}

// NewCollector wraps m as a prometheus.Collector.
func NewCollector(m *Metrics) prometheus.Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &collector{
		m:                  m,
		usersCreated:       desc("users_created", "Number of users created by current process."),
		lastUpdate:         desc("last_update", "The last update received over the gateway."),
		failedInteractions: desc("failed_interactions", "Number of failed discord interaction responses."),
		failedDBUpdates:    desc("failed_db_updates", "Number of failed member record writes."),
		tasksDispatched:    desc("tasks_dispatched", "Number of dispatch tasks started."),
		tasksRejected:      desc("tasks_rejected", "Number of events rejected because the dispatch queue was full."),
		tasksFailed:        desc("tasks_failed", "Number of dispatch tasks that returned an error or panicked."),
		reconnects:         desc("gateway_reconnects", "Number of gateway reconnect attempts."),
		decodeErrors:       desc("gateway_decode_errors", "Number of malformed gateway frames dropped."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.usersCreated
	ch <- c.lastUpdate
	ch <- c.failedInteractions
	ch <- c.failedDBUpdates
	ch <- c.tasksDispatched
	ch <- c.tasksRejected
	ch <- c.tasksFailed
	ch <- c.reconnects
	ch <- c.decodeErrors
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Snapshot()

	var last float64
	if !s.LastUpdate.IsZero() {
		last = float64(s.LastUpdate.UnixNano()) / 1e9
	}

	ch <- prometheus.MustNewConstMetric(c.usersCreated, prometheus.CounterValue, float64(s.UsersCreated))
	ch <- prometheus.MustNewConstMetric(c.lastUpdate, prometheus.GaugeValue, last)
	ch <- prometheus.MustNewConstMetric(c.failedInteractions, prometheus.CounterValue, float64(s.FailedInteractions))
	ch <- prometheus.MustNewConstMetric(c.failedDBUpdates, prometheus.CounterValue, float64(s.FailedDBUpdates))
	ch <- prometheus.MustNewConstMetric(c.tasksDispatched, prometheus.CounterValue, float64(s.TasksDispatched))
	ch <- prometheus.MustNewConstMetric(c.tasksRejected, prometheus.CounterValue, float64(s.TasksRejected))
	ch <- prometheus.MustNewConstMetric(c.tasksFailed, prometheus.CounterValue, float64(s.TasksFailed))
	ch <- prometheus.MustNewConstMetric(c.reconnects, prometheus.CounterValue, float64(s.Reconnects))
	ch <- prometheus.MustNewConstMetric(c.decodeErrors, prometheus.CounterValue, float64(s.DecodeErrors))
}
