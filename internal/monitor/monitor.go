// Package monitor exposes Prometheus metrics for the game engine.
package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	ActiveGames   prometheus.Gauge
	GamesStarted  prometheus.Counter
	GamesEnded    prometheus.Counter
	Guesses       prometheus.Counter
	CloseGuesses  prometheus.Counter
	TurnsEnded    prometheus.Counter
	WordsSelected prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of games currently in progress",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Total number of games started",
		}),
		GamesEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_ended_total",
			Help:      "Total number of games ended",
		}),
		Guesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correct_guesses_total",
			Help:      "Total number of correct word guesses",
		}),
		CloseGuesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "close_guesses_total",
			Help:      "Total number of close guesses detected in chat",
		}),
		TurnsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_ended_total",
			Help:      "Total number of completed drawing turns",
		}),
		WordsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_selected_total",
			Help:      "Total number of words chosen for drawing",
		}),
	}

	registry.MustRegister(
		m.ActiveGames,
		m.GamesStarted,
		m.GamesEnded,
		m.Guesses,
		m.CloseGuesses,
		m.TurnsEnded,
		m.WordsSelected,
	)

	return m
}

// Handler serves the metrics of this registry.
func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{})
}
