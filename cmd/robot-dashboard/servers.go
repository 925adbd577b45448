package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yourusername/robot-dashboard/internal/config"
	"github.com/yourusername/robot-dashboard/internal/dashboard"
)

// snapshotter is the part of the controller the health server reads
type snapshotter interface {
	Snapshot() dashboard.Snapshot
}

type serverSet struct {
	servers []*http.Server
	logger  zerolog.Logger
}

// startServers starts the metrics and health servers. A port of 0 disables
// the matching server.
func startServers(cfg *config.Config, ctrl snapshotter, logger zerolog.Logger) *serverSet {
	set := &serverSet{logger: logger}

	if cfg.MetricsPort > 0 {
		set.servers = append(set.servers, startServer("metrics", cfg.MetricsPort, metricsRouter(), logger))
	}
	if cfg.HealthPort > 0 {
		set.servers = append(set.servers, startServer("health", cfg.HealthPort, healthRouter(ctrl), logger))
	}

	return set
}

func (s *serverSet) shutdown(ctx context.Context) {
	for _, server := range s.servers {
		if err := server.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Str("addr", server.Addr).Msg("Server shutdown error")
		}
	}
}

func metricsRouter() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// healthRouter serves liveness, readiness and a JSON view of the dashboard
func healthRouter(ctrl snapshotter) http.Handler {
	r := mux.NewRouter()

	// Liveness probe - always returns 200 if server is running
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Readiness probe - 200 while the robot answers status polls
	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !ctrl.Snapshot().Connected {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("robot unreachable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		snap := ctrl.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stateResponse{
			Connected:      snap.Connected,
			Polled:         snap.Polled,
			LastPoll:       snap.LastPoll,
			LastError:      snap.LastError,
			LastCommand:    snap.LastCommand,
			CommandVisible: snap.CommandVisible,
			Polls:          snap.Polls,
			Commands:       snap.Commands,
		})
	}).Methods(http.MethodGet)

	return r
}

type stateResponse struct {
	Connected      bool      `json:"connected"`
	Polled         bool      `json:"polled"`
	LastPoll       time.Time `json:"lastPoll"`
	LastError      string    `json:"lastError,omitempty"`
	LastCommand    string    `json:"lastCommand,omitempty"`
	CommandVisible bool      `json:"commandVisible"`
	Polls          uint64    `json:"polls"`
	Commands       uint64    `json:"commands"`
}

func startServer(name string, port int, handler http.Handler, logger zerolog.Logger) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", port).Msgf("Starting %s server", name)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msgf("%s server error", name)
		}
	}()

	return server
}
