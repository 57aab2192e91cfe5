// Package main provides the entry point for gatewarden-server.
//
// gatewarden-server is the bearer-token authorization service: it issues
// opaque tokens, tracks their lifecycle, and answers validation queries
// against group membership requirements.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gatewarden/gatewarden-go/internal/core/service"
	"github.com/gatewarden/gatewarden-go/internal/infra/buildinfo"
	"github.com/gatewarden/gatewarden-go/internal/infra/confloader"
	"github.com/gatewarden/gatewarden-go/internal/infra/shutdown"
	"github.com/gatewarden/gatewarden-go/internal/server/config"
	"github.com/gatewarden/gatewarden-go/internal/server/httpserver"
	"github.com/gatewarden/gatewarden-go/internal/server/httpserver/handler"
	"github.com/gatewarden/gatewarden-go/internal/storage"
	"github.com/gatewarden/gatewarden-go/internal/storage/memory"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/logger"
	"github.com/gatewarden/gatewarden-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gatewarden-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogLogger := logger.Slog(log)

	log.Info("starting gatewarden-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile,
		"backend", cfg.Storage.Backend,
		"addr", cfg.Server.HTTP.Addr,
	)

	log.Debug("configuration loaded", "config", fmt.Sprintf("%+v", config.Sanitize(cfg)))

	metrics := metric.NewRegistry()
	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	// Storage. A backend that cannot be opened is fatal: the service never
	// starts degraded.
	var (
		repo      service.TokenRepository
		directory handler.DirectoryStore
	)
	switch cfg.Storage.Backend {
	case "memory":
		store := memory.New()
		repo, directory = store, store
	default:
		storageCfg := storage.DefaultConfig(cfg.Storage.DataDir)
		storageCfg.SyncWrites = cfg.Storage.SyncWrites
		if cfg.Storage.GCInterval != "" {
			storageCfg.GCInterval = cfg.Storage.GCInterval
		}
		if cfg.Security.EncryptionKey != "" {
			storageCfg.Passphrase = []byte(cfg.Security.EncryptionKey)
			storageCfg.Algorithm = cfg.Security.EncryptionAlgorithm
		}

		store, err := storage.NewBadgerStore(storageCfg, slogLogger)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		store.RegisterMetrics(metrics.Prometheus())
		repo, directory = store, store

		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("closing storage")
			return store.Close()
		})
	}

	// Services.
	membership := service.NewMembershipService(directory)
	tokens := service.NewTokenService(repo, membership, &service.TokenServiceConfig{
		TTL: cfg.Token.TTL,
	})

	// HTTP stack.
	apiHandler := handler.New(tokens, directory, metrics, log, handler.Config{
		AdminToken: cfg.Security.AdminToken,
	})
	httpHandler := httpserver.Chain(apiHandler,
		httpserver.Recover(slogLogger),
		httpserver.RequestID(),
		httpserver.RateLimit(cfg.Limits.RequestsPerSecond, cfg.Limits.Burst),
		httpserver.Metrics(metrics),
		httpserver.Audit(slogLogger),
	)
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, httpHandler)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	// Live log-level reload on config file changes.
	if *configFile != "" {
		watcher, err := watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)

		var err error
		if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads and validates configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// watchLogLevel reloads the log level when the config file changes. Other
// settings need a restart.
func watchLogLevel(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(log)))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		reloaded := config.Default()
		if err := confloader.NewLoader(confloader.WithConfigFile(configFile)).Load(reloaded); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if reloaded.Log.Level != logger.GetLevel() {
			logger.SetLevel(reloaded.Log.Level)
			log.Info("log level changed", "level", reloaded.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
