// Package metrics exposes the server's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoomsActive tracks live rooms per game type.
	RoomsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "partyhall",
		Name:      "rooms_active",
		Help:      "Number of live rooms.",
	}, []string{"game_type"})

	// ClientsConnected tracks open WebSocket connections.
	ClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "partyhall",
		Name:      "clients_connected",
		Help:      "Number of open WebSocket connections.",
	})

	// MessagesReceived counts inbound actions by type.
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partyhall",
		Name:      "messages_received_total",
		Help:      "Inbound WebSocket actions.",
	}, []string{"type"})

	// ActionErrors counts rejected actions by error code.
	ActionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partyhall",
		Name:      "action_errors_total",
		Help:      "Actions rejected with a game error.",
	}, []string{"code"})

	// GamesStarted counts started games per type.
	GamesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partyhall",
		Name:      "games_started_total",
		Help:      "Games started.",
	}, []string{"game_type"})
)
