// Command iwaproxy is the mutating reverse proxy.
//
// Usage:
//
//	iwaproxy -config iwaproxy.yaml             # full config file
//	iwaproxy -origin http://localhost:3000     # quick start with defaults
//	iwaproxy -config iwaproxy.yaml -mcp        # also expose MCP tools on stdio
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/iwa/audit"
	"github.com/hazyhaar/iwa/internal/dbopen"
	"github.com/hazyhaar/iwa/mutate"
	"github.com/hazyhaar/iwa/palette"
	"github.com/hazyhaar/iwa/proxy"
)

func main() {
	configPath := flag.String("config", "", "path to iwaproxy.yaml config file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	origin := flag.String("origin", "", "origin base URL (overrides config)")
	projectID := flag.String("project", "", "project identifier (overrides config)")
	mcpStdio := flag.Bool("mcp", false, "expose mutation tools over MCP stdio alongside the proxy")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *listen, *origin, *projectID, *mcpStdio); err != nil {
		logger.Error("iwaproxy: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, listen, origin, projectID string, mcpStdio bool) error {
	var cfg *proxy.Config
	if configPath != "" {
		c, err := proxy.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	} else {
		cfg = &proxy.Config{}
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if origin != "" {
		cfg.Origin = origin
	}
	if projectID != "" {
		cfg.ProjectID = projectID
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	opts := []mutate.Option{mutate.WithLogger(logger)}

	if cfg.PaletteDir != "" {
		opts = append(opts, mutate.WithPaletteStore(palette.NewDirStore(cfg.PaletteDir)))
	}

	if cfg.AuditDir != "" {
		var sinkOpts []audit.FileSinkOption
		if cfg.AuditMarkdown {
			sinkOpts = append(sinkOpts, audit.WithMarkdown())
		}
		sinkOpts = append(sinkOpts, audit.WithFileLogger(logger))
		fileSink := audit.NewFileSink(cfg.AuditDir, sinkOpts...)
		sink := audit.Sink(fileSink)

		if cfg.AuditIndex != "" {
			db, err := dbopen.Open(cfg.AuditIndex, dbopen.WithMkdirAll())
			if err != nil {
				return fmt.Errorf("audit index: %w", err)
			}
			defer db.Close()
			idx := audit.NewSQLiteIndex(db, logger)
			if err := idx.Init(); err != nil {
				return fmt.Errorf("audit index init: %w", err)
			}
			defer idx.Close()
			sink = audit.MultiSink{fileSink, idx}
		}
		opts = append(opts, mutate.WithAuditSink(sink))
	}

	engine := mutate.New(cfg.ProjectID, cfg.Phases, opts...)

	svc, err := proxy.New(*cfg, engine, logger)
	if err != nil {
		return fmt.Errorf("proxy: %w", err)
	}

	if mcpStdio {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "iwa",
			Version: "1.0.0",
		}, nil)
		engine.RegisterMCP(mcpSrv)
		go func() {
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("iwaproxy: mcp stdio", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("iwaproxy: listening", "addr", cfg.Listen, "origin", cfg.Origin, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("iwaproxy: server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("iwaproxy: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("iwaproxy: shutdown", "error", err)
	}
	logger.Info("iwaproxy: stopped")
	return nil
}
