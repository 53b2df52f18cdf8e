// Package metrics exposes Prometheus counters for track selection and live sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mode labels.
const (
	ModePlaylist = "playlist"
	ModeLive     = "live"
)

// Metrics holds the application counters.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	tracksSelected  *prometheus.CounterVec
	catalogErrors   *prometheus.CounterVec
	commands        *prometheus.CounterVec
	playlistsBuilt  prometheus.Counter
	selectionFailed *prometheus.CounterVec
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tracksSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedmix",
			Name:      "tracks_selected_total",
			Help:      "Tracks picked from seed artists.",
		}, []string{"mode"}),
		catalogErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedmix",
			Name:      "catalog_errors_total",
			Help:      "Catalog lookups that failed during selection.",
		}, []string{"mode"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedmix",
			Name:      "live_commands_total",
			Help:      "Commands processed by live sessions.",
		}, []string{"command"}),
		playlistsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seedmix",
			Name:      "playlists_built_total",
			Help:      "Playlists created.",
		}),
		selectionFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedmix",
			Name:      "selection_exhausted_total",
			Help:      "Times no seed artist yielded a track.",
		}, []string{"mode"}),
	}
	m.registry.MustRegister(m.tracksSelected, m.catalogErrors, m.commands, m.playlistsBuilt, m.selectionFailed)
	return m
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackSelected records a selected track.
func (m *Metrics) TrackSelected(mode string) {
	if m == nil {
		return
	}
	m.tracksSelected.WithLabelValues(mode).Inc()
}

// CatalogError records a failed catalog lookup.
func (m *Metrics) CatalogError(mode string) {
	if m == nil {
		return
	}
	m.catalogErrors.WithLabelValues(mode).Inc()
}

// Command records a processed live command.
func (m *Metrics) Command(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

// PlaylistBuilt records a created playlist.
func (m *Metrics) PlaylistBuilt() {
	if m == nil {
		return
	}
	m.playlistsBuilt.Inc()
}

// SelectionExhausted records an exhausted selection.
func (m *Metrics) SelectionExhausted(mode string) {
	if m == nil {
		return
	}
	m.selectionFailed.WithLabelValues(mode).Inc()
}
