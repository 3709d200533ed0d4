package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/windrose-ai/windrose"
	"github.com/windrose-ai/windrose/internal/config"
	"github.com/windrose-ai/windrose/pkg/adapters/httpapi"
	"github.com/windrose-ai/windrose/pkg/adapters/mcptool"
	redisstore "github.com/windrose-ai/windrose/pkg/adapters/redis"
	"github.com/windrose-ai/windrose/pkg/observability"
	"github.com/windrose-ai/windrose/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the conversation HTTP server",
	Long: `Starts the engine behind a JSON API. Conversation state is persisted in
Redis; turns for the same conversation are serialized across replicas with a
Redis lock. Prometheus metrics are exposed on /metrics.

The binary carries no language-model client; running the server requires the
--demo-model flag, which answers with the built-in scripted model. Production
deployments should embed the library and wire a real model.`,
	RunE: runServe,
}

var serveDemoModel bool

func init() {
	serveCmd.Flags().BoolVar(&serveDemoModel, "demo-model", false,
		"serve with the built-in scripted model instead of a real language model")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logLevel, _ := cmd.Flags().GetString("log-level")
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger := newLogger(logLevel)

	// The binary ships no language-model client; embedders wire their own
	// through the library. Exposing the scripted demo model over the network
	// must be an explicit choice.
	if !serveDemoModel {
		return fmt.Errorf("no language model is configured; pass --demo-model to serve the scripted demo model (not for production)")
	}
	logger.Warn("serving with the scripted demo model; responses are canned and not suitable for production")

	store := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redisstore.WithTTL(cfg.SessionTTL.Std()),
	)
	defer store.Close()
	locker := redisstore.NewLocker(store.Client(), "windrose:lock:")

	var dispatcher ports.ToolDispatcher = demoDispatcher{}
	if cfg.MCP.Command != "" {
		mcpDispatcher, err := mcptool.New(ctx, cfg.MCP.Command, cfg.MCP.Args, mcptool.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("connecting to tool server: %w", err)
		}
		defer mcpDispatcher.Close()
		dispatcher = mcpDispatcher
	}

	metrics := observability.NewMetrics("windrose")
	metrics.MustRegister()

	orc, err := windrose.New(demoModel{}, dispatcher,
		windrose.WithStateStore(store),
		windrose.WithDistributedLocker(locker),
		windrose.WithLifecycleHooks(metrics.Hooks()),
		windrose.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	api := httpapi.NewServer(orc, logger)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", api.Handler())

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: r,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
