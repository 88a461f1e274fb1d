package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/FocuswithJustin/lectio/core/sqlite"
	"github.com/FocuswithJustin/lectio/internal/api"
	"github.com/FocuswithJustin/lectio/internal/logging"
)

// ServeCmd starts the HTTP and WebSocket API.
type ServeCmd struct {
	Port      int      `short:"p" help:"Port to listen on (default: server.port)"`
	Origins   []string `name:"allowed-origin" help:"Allowed CORS origin; repeatable (default: server.allowed_origins)"`
	Watch     bool     `help:"Reload the catalog file when it changes"`
	RateLimit int      `name:"rate-limit" help:"Requests per minute per client; 0 keeps server.rate_limit"`
}

func (c *ServeCmd) Run(e *env) error {
	cfg := api.ConfigFrom(e.cfg)
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if len(c.Origins) > 0 {
		cfg.AllowedOrigins = c.Origins
	}
	if c.Watch {
		cfg.Watch = true
	}
	if c.RateLimit > 0 {
		cfg.RateLimit = c.RateLimit
	}

	cat, source, closer, err := e.openCatalog()
	if err != nil {
		return err
	}
	if !cfg.Lazy {
		if err := cat.RequireVerseCounts(); err != nil {
			closer.Close()
			return err
		}
	}
	logging.CatalogLoaded(cat.Name(), source, cat.Len(), cat.Fingerprint())

	api.Version = Version
	srv, err := api.New(cfg, cat, source, closer)
	if err != nil {
		closer.Close()
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(e.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(e.stdout, "lectio version %s (sqlite: %s)\n", Version, info.Package)
	return nil
}
