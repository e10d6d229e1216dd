// Command noxdns is the filtering DNS proxy process entrypoint: it loads
// configuration, builds the blocklist, cache, responder, and optional
// query log and admin API, then runs the UDP dispatcher until a shutdown
// signal arrives.
//
// Grounded on the teacher's cmd/hydradns/main.go wiring shape (flags ->
// config -> logging -> build components -> signal.NotifyContext shutdown),
// trimmed of the cluster syncer and database-as-config-store wiring that
// has no SPEC_FULL analog: this proxy's blocklist and cache are built once
// from flat files, not synced from a primary node.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pinedrop/noxdns/internal/adminapi"
	"github.com/pinedrop/noxdns/internal/blocklist"
	"github.com/pinedrop/noxdns/internal/cache"
	"github.com/pinedrop/noxdns/internal/config"
	"github.com/pinedrop/noxdns/internal/forwarder"
	"github.com/pinedrop/noxdns/internal/logging"
	"github.com/pinedrop/noxdns/internal/querylog"
	"github.com/pinedrop/noxdns/internal/responder"
	"github.com/pinedrop/noxdns/internal/server"
	"github.com/pinedrop/noxdns/internal/wire"
)

// buildEventSink fans every responder event out to the admin API's
// counters and, if enabled, the query log. Either sink may be absent
// (counters never is; qlog is nil when disabled), so this is the single
// place that understands how to combine them into one EventFunc.
func buildEventSink(counters *adminapi.Counters, qlog *querylog.Log) responder.EventFunc {
	return func(event string, q wire.Question, peer string) {
		counters.Record(event, q, peer)
		qlog.Record(event, q, peer)
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func parseFlags() config.Overrides {
	var o config.Overrides
	flag.StringVar(&o.ConfigPath, "config", "", "Optional YAML config file")
	flag.StringVar(&o.Bind, "bind", "", "Listen address (default 0.0.0.0:53)")
	flag.StringVar(&o.Upstream, "upstream", "", "Upstream resolver address (default 8.8.8.8:53)")
	flag.StringVar(&o.File, "file", "", "Blocklist file path (default blocklist.txt)")
	flag.StringVar(&o.QueryLog, "query-log", "", "Enable the SQLite query log at the given path")
	flag.StringVar(&o.AdminBind, "admin", "", "Enable the admin HTTP API on the given address")
	flag.StringVar(&o.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&o.LogJSON, "log-json", false, "Emit JSON logs instead of text")
	flag.Parse()
	o.ConfigPath = config.ResolveConfigPath(o.ConfigPath)
	return o
}

func run() error {
	overrides := parseFlags()

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Configure(cfg.Logging)
	logger.Info("noxdns starting",
		"bind", cfg.Server.Bind,
		"upstream", cfg.Upstream.Address,
		"blocklist_file", cfg.Filtering.File,
	)

	bl, err := blocklist.LoadFile(cfg.Filtering.File, blocklist.FormatPlain)
	if err != nil {
		return fmt.Errorf("load blocklist: %w", err)
	}
	logger.Info("blocklist loaded", "entries", bl.Size())

	c := cache.New()
	fwd := forwarder.New(cfg.Upstream.Address)
	fwd.Timeout = cfg.Upstream.Timeout

	r := responder.New(bl, c, fwd)
	r.Logger = logger

	counters := &adminapi.Counters{}
	var qlog *querylog.Log
	if cfg.QueryLog.Enabled {
		qlog, err = querylog.Open(cfg.QueryLog.Path, logger)
		if err != nil {
			return fmt.Errorf("open query log: %w", err)
		}
		defer qlog.Close()
		logger.Info("query log enabled", "path", cfg.QueryLog.Path)
	}
	r.OnEvent = buildEventSink(counters, qlog)

	dispatcher := server.New(r)
	dispatcher.Logger = logger

	ready := make(chan struct{})
	var adminSrv *adminapi.Server
	if cfg.Admin.Enabled {
		adminSrv = adminapi.New(cfg.Admin.Bind, logger, bl, c, counters, func() bool {
			select {
			case <-ready:
				return true
			default:
				return false
			}
		})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := dispatcher.Bind(cfg.Server.Bind); err != nil {
		return fmt.Errorf("bind %s: %w", cfg.Server.Bind, err)
	}
	close(ready)
	logger.Info("dispatcher bound", "addr", dispatcher.Addr().String())

	if adminSrv != nil {
		go func() {
			logger.Info("admin API starting", "addr", adminSrv.Addr())
			if serveErr := adminSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("admin API error", "error", serveErr)
			}
		}()
	}

	serveErr := dispatcher.Serve(ctx)

	if adminSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = adminSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	logger.Info("noxdns stopped")
	return serveErr
}
