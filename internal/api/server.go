package api

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/FocuswithJustin/lectio/core/cache"
	"github.com/FocuswithJustin/lectio/core/catalog"
	"github.com/FocuswithJustin/lectio/core/citation"
	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/internal/config"
	"github.com/FocuswithJustin/lectio/internal/logging"
	"github.com/FocuswithJustin/lectio/internal/server"
)

// Config holds API server settings.
type Config struct {
	Port            int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// Workers bounds concurrent parsing of batch requests.
	Workers int
	// RateLimit is requests per minute per client; 0 disables limiting.
	RateLimit         int
	RateBurst         int
	MaxCitationLength int
	// MaxBatch caps the citations accepted by one batch request.
	MaxBatch int
	// CacheSize bounds the parse result cache; 0 disables it.
	CacheSize int

	CatalogPath string
	Lazy        bool
	// Watch reloads CatalogPath when the file changes.
	Watch          bool
	ReloadDebounce time.Duration
}

// ConfigFrom maps the file configuration onto server settings.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Port:              c.Server.Port,
		AllowedOrigins:    c.Server.AllowedOrigins,
		ShutdownTimeout:   c.Server.ShutdownTimeout,
		Workers:           c.Batch.Workers,
		RateLimit:         c.Server.RateLimit,
		RateBurst:         c.Server.RateBurst,
		MaxCitationLength: c.Server.MaxCitationLength,
		CacheSize:         c.Server.CacheSize,
		CatalogPath:       c.Catalog.Path,
		Lazy:              c.Catalog.Lazy,
		Watch:             c.Server.Watch,
	}
}

func (c *Config) setDefaults() {
	if c.MaxCitationLength < 1 {
		c.MaxCitationLength = 4096
	}
	if c.MaxBatch < 1 {
		c.MaxBatch = 1000
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.ReloadDebounce <= 0 {
		c.ReloadDebounce = 250 * time.Millisecond
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		c.RateBurst = 10
	}
}

// catalogState is what requests resolve against. It is replaced whole on
// reload and never mutated.
type catalogState struct {
	cat         *catalog.Catalog
	parser      *citation.Parser
	fingerprint string
	source      string
	closer      io.Closer
	loadedAt    time.Time
}

// Server is the lectio API server.
type Server struct {
	cfg     Config
	state   atomic.Pointer[catalogState]
	metrics *Metrics
	hub     *Hub
	limiter *RateLimiter
	results *cache.LRU[string, ParseResult]
	started time.Time
}

// New builds a server around cat. source names where cat came from and
// closer, if non-nil, is closed once the catalog is replaced or the
// server is closed.
func New(cfg Config, cat *catalog.Catalog, source string, closer io.Closer) (*Server, error) {
	cfg.setDefaults()
	if cfg.Watch && cfg.CatalogPath == "" {
		return nil, errors.NewValidation("watch", "requires a catalog path")
	}
	s := &Server{
		cfg:     cfg,
		metrics: NewMetrics(),
		started: time.Now(),
	}
	s.hub = NewHub(s.metrics)
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.CacheSize > 0 {
		s.results = cache.New[string, ParseResult](cache.Config{MaxSize: cfg.CacheSize})
	}
	if _, err := s.swap(cat, source, closer); err != nil {
		return nil, err
	}
	return s, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Fingerprint returns the fingerprint of the serving catalog.
func (s *Server) Fingerprint() string { return s.state.Load().fingerprint }

// swap installs cat and returns the state it replaced.
func (s *Server) swap(cat *catalog.Catalog, source string, closer io.Closer) (*catalogState, error) {
	p, err := citation.NewParser(cat)
	if err != nil {
		return nil, err
	}
	next := &catalogState{
		cat:         cat,
		parser:      p,
		fingerprint: cat.Fingerprint(),
		source:      source,
		closer:      closer,
		loadedAt:    time.Now(),
	}
	prev := s.state.Swap(next)
	s.metrics.catalogBooks.Set(float64(cat.Len()))
	if s.results != nil {
		// Keys carry the fingerprint; clearing only frees the old entries.
		s.results.Clear()
	}
	if prev != nil && prev.closer != nil {
		// Requests already holding prev get the shutdown grace to finish.
		time.AfterFunc(s.cfg.ShutdownTimeout, func() {
			if err := prev.closer.Close(); err != nil {
				logging.Warn("failed to close replaced catalog", "source", prev.source, "error", err)
			}
		})
	}
	return prev, nil
}

// Close releases the serving catalog.
func (s *Server) Close() error {
	st := s.state.Load()
	if st.closer == nil {
		return nil
	}
	return st.closer.Close()
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/parse", s.handleParseQuery)
	mux.HandleFunc("POST /api/parse", s.handleParseBody)
	mux.HandleFunc("GET /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/codes", s.handleCodes)
	mux.HandleFunc("GET /api/books", s.handleBooks)
	mux.HandleFunc("GET /api/books/{ordinal}", s.handleBook)
	mux.HandleFunc("GET /api/pattern", s.handlePattern)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("/", handleNotFound)

	var handler http.Handler = server.SecurityHeadersWithCSP(server.APICSPConfig(), mux)
	if s.limiter != nil {
		handler = s.limiter.Middleware(handler)
	}
	handler = server.CORSMiddleware(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, handler)
	handler = server.TimingMiddleware(time.Second, handler)
	return logging.CombinedMiddleware(handler)
}

// Run listens on the configured port and serves until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewIO("listen on", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then shuts down gracefully within
// the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}
	if s.cfg.Watch {
		go func() {
			if err := s.Watch(ctx); err != nil {
				logging.Error("catalog watcher stopped", "path", s.cfg.CatalogPath, "error", err)
			}
		}()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	port := s.cfg.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	st := s.state.Load()
	logging.ServerStartup("rest_api", "http", port,
		"websocket_protocol", "ws",
		"catalog", st.source,
		"fingerprint", st.fingerprint,
		"watch", s.cfg.Watch,
		"rate_limit", s.cfg.RateLimit)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	logging.Info("server stopped", "port", port)
	return nil
}
