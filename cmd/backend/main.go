package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheimpl "github.com/foxseedlab/matome/external/cache"
	configloader "github.com/foxseedlab/matome/external/config"
	"github.com/foxseedlab/matome/external/httpapi"
	metricsimpl "github.com/foxseedlab/matome/external/metrics"
	openaiimpl "github.com/foxseedlab/matome/external/openai"
	webhookimpl "github.com/foxseedlab/matome/external/webhook"
	"github.com/foxseedlab/matome/internal/config"
	"github.com/foxseedlab/matome/internal/summary"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var envFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "matome",
		Short:         "Summarize video transcripts with an OpenAI-compatible model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	root.AddCommand(newServeCommand())
	root.AddCommand(newSummarizeCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Endpoints:
  POST /api/sumup   - Summarize a transcript (JSON or streamed text)
  GET  /api/health  - Health check
  GET  /metrics     - Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func bootstrap(logOutput io.Writer) (*config.Config, *do.RootScope) {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg, logOutput)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "cache_driver", cfg.CacheDriver)

	slog.Info("startup: building dependency graph")
	return cfg, setupDI(cfg)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load(envFile)
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config, w io.Writer) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	webhookimpl.RegisterDI(injector)
	cacheimpl.RegisterDI(injector)
	metricsimpl.RegisterDI(injector)
	openaiimpl.RegisterDI(injector)
	summary.RegisterDI(injector)
	httpapi.RegisterDI(injector)

	return injector
}

func shutdown(injector *do.RootScope) {
	slog.Info("releasing resources")
	injector.Shutdown()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, injector := bootstrap(os.Stdout)
	defer shutdown(injector)

	server, err := do.Invoke[*http.Server](injector)
	if err != nil {
		return fmt.Errorf("failed to resolve http server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("startup: http server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
