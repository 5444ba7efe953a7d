// Package webserver serves the enrollment dashboard, its websocket and the JSON and
// export endpoints around it.
package webserver

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/psidex/arat/internal/enrollment"
	"github.com/psidex/arat/internal/graphs"
	"github.com/psidex/arat/internal/graphs/vis"
	"github.com/psidex/arat/internal/metrics"
)

// GraphLoader is implemented by enrollment.Loader.
type GraphLoader interface {
	Load(ctx context.Context, limit int) (*graphs.Graph, error)
	Student(ctx context.Context, id string) (*graphs.Graph, error)
}

type Options struct {
	Loader GraphLoader
	Bounds enrollment.Bounds
	// Health answers /healthz, the route is left out when nil.
	Health http.Handler
	Vis    vis.Options
	Logger *slog.Logger
}

type Server struct {
	loader   GraphLoader
	bounds   enrollment.Bounds
	health   http.Handler
	vis      vis.Options
	echarts  graphs.ECharts
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func New(opts Options) *Server {
	return &Server{
		loader:  opts.Loader,
		bounds:  opts.Bounds,
		health:  opts.Health,
		vis:     opts.Vis,
		echarts: graphs.NewECharts(),
		logger:  opts.Logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.dashboard)
	mux.HandleFunc("GET /ws", s.session)
	mux.HandleFunc("GET /api/graph", s.apiGraph)
	mux.HandleFunc("GET /api/students/{id}", s.apiStudent)
	mux.HandleFunc("GET /export/echarts", s.exportECharts)
	mux.Handle("GET /metrics", metrics.Handler())
	if s.health != nil {
		mux.Handle("GET /healthz", s.health)
	}

	return s.recoverer(s.requestLogger(mux))
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dashboard listening", "addr", "http://"+lis.Addr().String())
		if err := server.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is needed by the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request handled",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.logger.Error("Handler panicked", "path", r.URL.Path, "panic", v)
				writeError(w, "Internal server error", "", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
