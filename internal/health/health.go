// Package health tracks whether the database is reachable and publishes the result
// over the standard gRPC health service and an HTTP endpoint.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name the dashboard is registered under, besides the overall "".
const Service = "arat.Dashboard"

const checkTimeout = 5 * time.Second

// stopTimeout bounds how long Serve waits for open RPCs, Watch streams included,
// before closing them.
var stopTimeout = 10 * time.Second

// Checker is implemented by store.Client.
type Checker interface {
	Verify(ctx context.Context) error
}

// Monitor periodically runs a Checker and mirrors the outcome into a gRPC health
// server. Until the first check it reports NOT_SERVING.
type Monitor struct {
	checker  Checker
	interval time.Duration
	server   *health.Server
	logger   *slog.Logger

	mu      sync.RWMutex
	checked bool
	healthy bool
	lastErr error
}

func NewMonitor(checker Checker, interval time.Duration, logger *slog.Logger) *Monitor {
	m := &Monitor{
		checker:  checker,
		interval: interval,
		server:   health.NewServer(),
		logger:   logger,
	}
	m.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return m
}

// Server is the gRPC health service to register on a grpc.Server.
func (m *Monitor) Server() *health.Server {
	return m.server
}

// Check runs the checker once and records the outcome, which it also returns.
func (m *Monitor) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	err := m.checker.Verify(ctx)

	m.mu.Lock()
	changed := !m.checked || m.healthy != (err == nil)
	m.checked = true
	m.healthy = err == nil
	m.lastErr = err
	m.mu.Unlock()

	if err != nil {
		m.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		if changed {
			m.logger.Warn("Database unreachable", "error", err)
		}
		return err
	}

	m.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	if changed {
		m.logger.Info("Database reachable")
	}
	return nil
}

// Run checks every interval until ctx is done, then marks everything NOT_SERVING.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer m.server.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = m.Check(ctx)
		}
	}
}

// Healthy reports the outcome of the last check.
func (m *Monitor) Healthy() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy, m.lastErr
}

func (m *Monitor) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(Service, status)
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ServeHTTP answers 200 when the last check passed and 503 otherwise.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	healthy, err := m.Healthy()

	resp := statusResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING.String()}
	code := http.StatusOK
	if !healthy {
		resp.Status = grpc_health_v1.HealthCheckResponse_NOT_SERVING.String()
		code = http.StatusServiceUnavailable
		if err != nil {
			resp.Error = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// Serve runs a gRPC server exposing only the health service on lis until ctx is
// done.
func Serve(ctx context.Context, lis net.Listener, m *Monitor, logger *slog.Logger) error {
	server := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(server, m.Server())

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC health server listening", "addr", lis.Addr().String())
		errCh <- server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(stopTimeout):
		logger.Warn("gRPC health server did not drain in time, closing open streams", "timeout", stopTimeout)
		server.Stop()
		<-stopped
	}
	return nil
}
