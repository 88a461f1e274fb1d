// Command lectio parses scripture citations, converts book catalogs,
// exports lectionary readings and serves the citation API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/lectio/core/catalog"
	"github.com/FocuswithJustin/lectio/core/citation"
	"github.com/FocuswithJustin/lectio/internal/config"
	"github.com/FocuswithJustin/lectio/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// CLI defines the command-line interface.
type CLI struct {
	Config      string `short:"c" help:"Configuration file (default: ./lectio.yaml when present)" type:"path"`
	CatalogPath string `name:"catalog" help:"Catalog file (.xml, .xml.xz or SQLite); overrides the configuration" type:"path"`
	Lazy        bool   `help:"Load SQLite verse tables on first use"`
	LogLevel    string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat   string `name:"log-format" help:"Log format (text, json)"`

	Parse    ParseCmd    `cmd:"" help:"Parse citations into locations"`
	Validate ValidateCmd `cmd:"" help:"Check citation syntax"`
	Pattern  PatternCmd  `cmd:"" help:"Print the citation validation pattern"`
	Codes    CodesCmd    `cmd:"" help:"Print the verse codes a citation expands to"`
	Books    BooksCmd    `cmd:"" help:"List catalog books"`

	Catalog CatalogCmd `cmd:"" help:"Catalog file commands"`
	Export  ExportCmd  `cmd:"" help:"Export readings and calendar data"`

	Serve   ServeCmd   `cmd:"" help:"Start the HTTP and WebSocket API"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// CatalogCmd groups catalog file commands.
type CatalogCmd struct {
	Info   CatalogInfoCmd   `cmd:"" help:"Describe the active catalog"`
	Import CatalogImportCmd `cmd:"" help:"Convert a catalog file into .xml, .xml.xz or SQLite"`
}

// ExportCmd groups export commands.
type ExportCmd struct {
	CSV    ExportCSVCmd    `cmd:"" name:"csv" help:"Write parsed citations as CSV rows"`
	XML    ExportXMLCmd    `cmd:"" name:"xml" help:"Write a lectionary day entry as XML"`
	Info   ExportInfoCmd   `cmd:"" help:"Write the holiday flags of a year"`
	Feasts ExportFeastsCmd `cmd:"" help:"List the feasts of a year"`
}

// env is bound into every command's Run method.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// bundledCloser is the closer of the embedded catalog, which holds no
// resources.
type bundledCloser struct{}

func (bundledCloser) Close() error { return nil }

// openCatalog loads the configured catalog, or the bundled one when no path
// is set. The closer must be closed once the catalog is no longer used.
func (e *env) openCatalog() (*catalog.Catalog, string, io.Closer, error) {
	path := e.cfg.Catalog.Path
	if path == "" {
		cat, err := catalog.LoadDefault()
		return cat, "bundled", bundledCloser{}, err
	}
	cat, closer, err := catalog.LoadFile(e.ctx, path, catalog.FileOptions{Lazy: e.cfg.Catalog.Lazy})
	if err != nil {
		return nil, "", nil, err
	}
	logging.Debug("catalog loaded", "path", path, "books", cat.Len(), "lazy", e.cfg.Catalog.Lazy)
	return cat, path, closer, nil
}

// openParser loads the catalog and builds a parser over it.
func (e *env) openParser() (*citation.Parser, *catalog.Catalog, io.Closer, error) {
	cat, _, closer, err := e.openCatalog()
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := citation.NewParser(cat)
	if err != nil {
		closer.Close()
		return nil, nil, nil, err
	}
	return p, cat, closer, nil
}

// setup loads configuration, applies flag overrides and initializes
// logging.
func (c *CLI) setup() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.CatalogPath != "" {
		cfg.Catalog.Path = c.CatalogPath
	}
	if c.Lazy {
		cfg.Catalog.Lazy = true
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogging(w io.Writer, cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return err
	}
	logging.InitLoggerTo(w, level, format)
	return nil
}

// run parses args and executes the selected command. It returns the
// process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("lectio"),
		kong.Description("Scripture citation parser and lectionary toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "lectio: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help and usage errors exit through kong.Exit.
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "lectio: %v\n", err)
		return 2
	}

	cfg, err := cli.setup()
	if err != nil {
		fmt.Fprintf(stderr, "lectio: %v\n", err)
		return 1
	}
	if err := initLogging(stderr, cfg); err != nil {
		fmt.Fprintf(stderr, "lectio: %v\n", err)
		return 1
	}

	e := &env{ctx: ctx, cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}
	if err := kctx.Run(e); err != nil {
		fmt.Fprintf(stderr, "lectio: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
