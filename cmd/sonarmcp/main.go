// sonarmcp serves the Perplexity Sonar search and document analysis
// tools to MCP clients, over stdio by default or streamable HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/sonarmcp/callbacks"
	"github.com/effective-security/sonarmcp/config"
	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/server"
	"github.com/effective-security/xlog"
	"github.com/spf13/pflag"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/sonarmcp", "sonarmcp")

// Version is set at build time.
var Version = "dev"

var logLevels = map[string]xlog.LogLevel{
	"debug":   xlog.DEBUG,
	"info":    xlog.INFO,
	"warning": xlog.WARNING,
	"error":   xlog.ERROR,
}

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("sonarmcp", pflag.ContinueOnError)
	cfgFile := flags.String("config", "", "path to the YAML or JSON configuration file")
	logLevel := flags.String("log-level", "info", "log level: debug, info, warning or error")
	httpAddr := flags.String("http", "", "serve streamable HTTP on the address, for example :8080, instead of stdio")
	trace := flags.Bool("trace", false, "print every tool call and its output to stderr")
	version := flags.Bool("version", false, "print the version and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *version {
		fmt.Fprintln(os.Stderr, Version)
		return nil
	}

	level, ok := logLevels[strings.ToLower(*logLevel)]
	if !ok {
		return errors.Errorf("unsupported log level: %s", *logLevel)
	}
	// stdout is the protocol stream
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	xlog.SetGlobalLogLevel(level)

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		return err
	}
	if !cfg.HasAPIKey() {
		logger.KV(xlog.WARNING,
			"reason", "missing_api_key",
			"env", config.EnvAPIKey,
			"effect", "search tools fail with AUTH_ERROR",
		)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	client := sonar.New(cfg.APIKey,
		sonar.WithBaseURL(cfg.BaseURL),
		sonar.WithTimeout(timeout),
		sonar.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		sonar.WithUserAgent("sonarmcp/"+Version),
	)

	scratchpad := callbacks.NewStatsScratchpad()
	cb := callbacks.NewFanout(callbacks.NewPackageLogger(logger), scratchpad)
	if *trace {
		cb.Add(callbacks.NewPrinter(os.Stderr, callbacks.ModeVerbose))
	}

	srv, err := server.New(client,
		server.WithImplementation(cfg.ServerName, versionOr(cfg.ServerVersion)),
		server.WithDefaults(cfg.Defaults()),
		server.WithPrices(cfg.Prices()),
		server.WithCallback(cb),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		stats, _ := scratchpad.EndRun()
		logger.KV(xlog.INFO, "status", "stopped", "stats", stats.String())
	}()

	if *httpAddr != "" {
		return serveHTTP(ctx, *httpAddr, srv.HTTPHandler())
	}
	return srv.Run(ctx)
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.KV(xlog.INFO, "status", "serving", "transport", "http", "addr", addr)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}
	return nil
}

func versionOr(v string) string {
	if v != "" {
		return v
	}
	return Version
}
