package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/authclient/pkg/authsession"
)

var _ authsession.Recorder = (*Collector)(nil)

var statuses = []authsession.Status{
	authsession.StatusUnauthenticated,
	authsession.StatusAuthenticating,
	authsession.StatusAuthenticated,
	authsession.StatusRefreshing,
	authsession.StatusError,
}

// Collector implements authsession.Recorder.
type Collector struct {
	Logins          *prometheus.CounterVec
	Refreshes       *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	Restores        *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	Status          *prometheus.GaugeVec
}

// NewCollector creates unregistered collectors under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "login_total", Help: "Login attempts by outcome."},
			[]string{"outcome"},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "token_refresh_total", Help: "Token renewal calls by outcome."},
			[]string{"outcome"},
		),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "token_refresh_duration_seconds",
			Help:      "Latency of token renewal calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		Restores: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "restore_total", Help: "Session restores by outcome."},
			[]string{"outcome"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "session_transitions_total", Help: "Session status changes."},
			[]string{"from", "to"},
		),
		Status: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "session_status", Help: "1 for the current session status, 0 otherwise."},
			[]string{"status"},
		),
	}
	for _, s := range statuses {
		c.Status.WithLabelValues(s.String()).Set(0)
	}
	c.Status.WithLabelValues(authsession.StatusUnauthenticated.String()).Set(1)
	return c
}

// Register adds every collector to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.Logins, c.Refreshes, c.RefreshDuration, c.Restores, c.Transitions, c.Status,
	} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on failure.
func (c *Collector) MustRegister(reg prometheus.Registerer) {
	if err := c.Register(reg); err != nil {
		panic(err)
	}
}

func (c *Collector) ObserveLogin(err error, _ time.Duration) {
	c.Logins.WithLabelValues(authsession.ErrorKind(err)).Inc()
}

func (c *Collector) ObserveRefresh(err error, d time.Duration) {
	c.Refreshes.WithLabelValues(authsession.ErrorKind(err)).Inc()
	c.RefreshDuration.Observe(d.Seconds())
}

func (c *Collector) ObserveRestore(err error) {
	c.Restores.WithLabelValues(authsession.ErrorKind(err)).Inc()
}

func (c *Collector) ObserveTransition(from, to authsession.Status) {
	c.Transitions.WithLabelValues(from.String(), to.String()).Inc()
	c.Status.WithLabelValues(from.String()).Set(0)
	c.Status.WithLabelValues(to.String()).Set(1)
}
