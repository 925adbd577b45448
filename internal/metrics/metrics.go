package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OtherCommand is the command label for ids that have no button
const OtherCommand = "other"

var (
	// PollsTotal tracks completed status polls
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_dashboard_polls_total",
			Help: "Total number of completed status polls",
		},
		[]string{"result"}, // connected, disconnected
	)

	// CommandsTotal tracks completed command requests
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_dashboard_commands_total",
			Help: "Total number of completed command requests",
		},
		[]string{"command", "result"}, // button id or "other"; success, error
	)

	// Connected mirrors the connection indicator
	Connected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "robot_dashboard_connected",
			Help: "Robot connection state as last shown (1 = connected, 0 = disconnected)",
		},
	)

	// LastConnectedTimestamp tracks the last successful poll
	LastConnectedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "robot_dashboard_last_connected_timestamp_seconds",
			Help: "Timestamp of the last successful status poll",
		},
	)

	// RequestDuration tracks robot webserver request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "robot_dashboard_request_duration_seconds",
			Help:    "Duration of robot webserver requests",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"endpoint"},
	)

	// RequestErrorsTotal tracks failed robot webserver requests
	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_dashboard_request_errors_total",
			Help: "Total number of failed robot webserver requests",
		},
		[]string{"endpoint", "status_code"},
	)

	// StaleResponsesTotal counts responses dropped because a newer request was issued
	StaleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_dashboard_stale_responses_total",
			Help: "Total number of responses discarded as superseded",
		},
		[]string{"endpoint"},
	)
)
