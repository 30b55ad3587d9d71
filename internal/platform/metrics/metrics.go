package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the cue orchestrator.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	ticksTotal        prometheus.Counter
	eventsTotal       prometheus.Counter
	keyChangesTotal   prometheus.Counter
	ownerChangesTotal prometheus.Counter
	activeMarkers     prometheus.Gauge
	playing           prometheus.Gauge
	errorsTotal       prometheus.Counter
}

// New creates and registers Prometheus metrics for the engine.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cue_requests_total",
		Help: "Total number of HTTP requests received",
	})
	ticksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cue_ticks_total",
		Help: "Total number of ranked-observation ticks ingested",
	})
	eventsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cue_marker_events_total",
		Help: "Total number of marker found/lost events processed",
	})
	keyChangesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cue_combo_key_changes_total",
		Help: "Total number of combo key changes",
	})
	ownerChangesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cue_owner_changes_total",
		Help: "Total number of channel ownership changes",
	})
	activeMarkers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cue_active_markers",
		Help: "Number of markers currently visible to the arbiter",
	})
	playing := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cue_playing",
		Help: "Whether the playback session is playing (1) or not (0)",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cue_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		ticksTotal,
		eventsTotal,
		keyChangesTotal,
		ownerChangesTotal,
		activeMarkers,
		playing,
		errorsTotal,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		ticksTotal:        ticksTotal,
		eventsTotal:       eventsTotal,
		keyChangesTotal:   keyChangesTotal,
		ownerChangesTotal: ownerChangesTotal,
		activeMarkers:     activeMarkers,
		playing:           playing,
		errorsTotal:       errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncTicks increments the ticks ingested counter.
func (m *Metrics) IncTicks() {
	m.ticksTotal.Inc()
}

// IncEvents increments the marker events counter.
func (m *Metrics) IncEvents() {
	m.eventsTotal.Inc()
}

// IncKeyChanges increments the combo key changes counter.
func (m *Metrics) IncKeyChanges() {
	m.keyChangesTotal.Inc()
}

// IncOwnerChanges increments the ownership changes counter.
func (m *Metrics) IncOwnerChanges() {
	m.ownerChangesTotal.Inc()
}

// SetActiveMarkers sets the active markers gauge.
func (m *Metrics) SetActiveMarkers(n int) {
	m.activeMarkers.Set(float64(n))
}

// SetPlaying sets the playing gauge from a bool.
func (m *Metrics) SetPlaying(playing bool) {
	if playing {
		m.playing.Set(1)
	} else {
		m.playing.Set(0)
	}
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values
// (e.g. active markers).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
