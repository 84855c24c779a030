// Package server is the HTTP front end: it accepts uploads, keeps the
// current dataset in a session and answers chart requests as JSON specs or
// rendered PNGs.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/monitoring"
	"github.com/paveg/plotdeck/internal/pipeline"
	"github.com/paveg/plotdeck/internal/render"
	"github.com/paveg/plotdeck/internal/session"
	"github.com/paveg/plotdeck/internal/upload"
	"github.com/pkg/errors"
)

// multipartOverhead is allowed on top of the file cap for form boundaries
// and headers
const multipartOverhead = 64 << 10

// Options wires the collaborators of a Server. Store is required; the rest
// fall back to defaults.
type Options struct {
	Engine         *pipeline.Engine
	Store          *upload.Store
	Sessions       *session.Registry
	Renderer       *render.Renderer
	Collector      *monitoring.MetricsCollector
	Metrics        *monitoring.Metrics
	Logger         log.Logger
	Allocator      memory.Allocator
	PreviewColumns int
}

// Server serves the plotdeck HTTP API
type Server struct {
	router         *mux.Router
	engine         *pipeline.Engine
	store          *upload.Store
	sessions       *session.Registry
	renderer       *render.Renderer
	collector      *monitoring.MetricsCollector
	metrics        *monitoring.Metrics
	logger         log.Logger
	mem            memory.Allocator
	previewColumns int
}

// New creates a Server and registers its routes
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: upload store is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Engine == nil {
		engineOpts := pipeline.DefaultOptions()
		engineOpts.Collector = opts.Collector
		engineOpts.Logger = opts.Logger
		opts.Engine = pipeline.NewEngine(engineOpts)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewRegistry()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New()
	}
	if opts.Allocator == nil {
		opts.Allocator = memory.NewGoAllocator()
	}
	if opts.PreviewColumns <= 0 {
		opts.PreviewColumns = dataframe.DefaultPreviewColumns
	}

	s := &Server{
		router:         mux.NewRouter(),
		engine:         opts.Engine,
		store:          opts.Store,
		sessions:       opts.Sessions,
		renderer:       opts.Renderer,
		collector:      opts.Collector,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		mem:            opts.Allocator,
		previewColumns: opts.PreviewColumns,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.instrument)

	s.router.Path("/").Methods(http.MethodGet).HandlerFunc(s.handleIndex)
	s.router.Path("/upload").Methods(http.MethodPost).HandlerFunc(s.handleUpload)

	s.router.Path("/api/session").Methods(http.MethodGet).HandlerFunc(s.handleCurrentSession)
	api := s.router.PathPrefix("/api/sessions/{id}").Subrouter()
	api.Path("/profile").Methods(http.MethodGet).HandlerFunc(s.handleProfile)
	api.Path("/controls").Methods(http.MethodGet).HandlerFunc(s.handleControls)
	api.Path("/chart").Methods(http.MethodPost).HandlerFunc(s.handleChart)
	api.Path("/chart.png").Methods(http.MethodPost).HandlerFunc(s.handleChartPNG)

	s.router.Path("/health").Handler(monitoring.HealthHandler(s.collector))
	s.router.Path("/debug/operations").Handler(monitoring.OperationsHandler(s.collector))
	s.router.Path("/metrics").Handler(s.metrics.Handler())
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the current session's dataset
func (s *Server) Close() {
	s.sessions.Close()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout
func (s *Server) ListenAndServe(ctx context.Context, addr string, readHeaderTimeout, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	return s.Serve(ctx, ln, readHeaderTimeout, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener, readHeaderTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(s.logger).Log("msg", "server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	level.Info(s.logger).Log("msg", "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down server")
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
