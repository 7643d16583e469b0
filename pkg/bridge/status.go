package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultStatusHost = "127.0.0.1"
	defaultStatusPort = 18791
)

type statusResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Workers       map[string]workerState `json:"workers"`
}

func (b *Bridge) statusAddr() string {
	host := strings.TrimSpace(b.cfg.Status.Host)
	if host == "" {
		host = defaultStatusHost
	}

	port := b.cfg.Status.Port
	if port <= 0 {
		port = defaultStatusPort
	}

	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (b *Bridge) statusHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", b.handleHealth)
	mux.HandleFunc("/readyz", b.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}))
	return mux
}

// runStatusServer serves health, readiness and metrics until ctx ends. A
// listen failure is logged; relaying continues without the status surface.
func (b *Bridge) runStatusServer(ctx context.Context) {
	addr := b.statusAddr()
	server := &http.Server{
		Addr:              addr,
		Handler:           b.statusHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	b.log.Info("Status server started", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		b.log.Error("Status server failed", "address", addr, "error", err)
	}
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	b.respondStatus(w, http.StatusOK, "ok")
}

func (b *Bridge) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if !b.isReady() {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	b.respondStatus(w, statusCode, status)
}

func (b *Bridge) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := b.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		b.log.Error("Failed to write status response", "error", err)
	}
}

func (b *Bridge) currentStatus(status string) statusResponse {
	b.mu.RLock()
	defer b.mu.RUnlock()

	uptime := int64(0)
	if !b.startedAt.IsZero() {
		uptime = int64(time.Since(b.startedAt).Seconds())
	}

	workers := make(map[string]workerState, len(b.workerStates))
	for name, state := range b.workerStates {
		workers[name] = state
	}

	return statusResponse{
		Status:        status,
		UptimeSeconds: uptime,
		Workers:       workers,
	}
}

// isReady reports whether both relay directions are running.
func (b *Bridge) isReady() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.workerStates) == 0 {
		return false
	}

	for _, state := range b.workerStates {
		if !state.Running {
			return false
		}
	}

	return true
}
