package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/jr3d/internal/animation"
	"github.com/heimdex/jr3d/internal/api"
	"github.com/heimdex/jr3d/internal/catalog"
	"github.com/heimdex/jr3d/internal/config"
	"github.com/heimdex/jr3d/internal/db"
	"github.com/heimdex/jr3d/internal/download"
	"github.com/heimdex/jr3d/internal/export"
	"github.com/heimdex/jr3d/internal/fetch"
	"github.com/heimdex/jr3d/internal/logging"
	"github.com/heimdex/jr3d/internal/modelload"
	"github.com/heimdex/jr3d/internal/restore"
	"github.com/heimdex/jr3d/internal/watcher"
	"github.com/heimdex/jr3d/internal/workspace"
)

const (
	configDeviceID = "device_id"
	shutdownGrace  = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local archive API and inbox watcher",
		Long: `Run the local HTTP API on 127.0.0.1.

Configuration comes from JR3D_* environment variables. When JR3D_INBOX_DIR
is set, .jr3d files dropped into that directory are restored into the
workspace one at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runServe(cmd.Context(), cfg, projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "project", "Untitled", "name of the initial workspace project")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, projectName string) error {
	startTime := time.Now()

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ArchivesDir(), 0755); err != nil {
		return fmt.Errorf("failed to create archives dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting jr3d agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := catalog.NewRepository(database.Conn())

	deviceID, err := ensureSecret(ctx, repo, configDeviceID, 16, "")
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}
	authToken, err := ensureSecret(ctx, repo, api.ConfigAuthToken, 32, cfg.AuthToken())
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║  %-57s║\n", "JR3D AGENT v"+config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	ws := workspace.New(projectName)

	fetcher := fetch.New(cfg.EffectsBaseURL(), logger)
	resolver := fetch.NewResolver(fetcher, cfg.FetchConcurrency(), cfg.FetchTimeout(), logger)
	exporter := export.NewExporter(resolver, cfg.CompressionLevel(), logging.WithComponent(logger, "export"))
	loader := restore.NewLoader(modelload.NewStubLoader(logger), animation.Extractor{}, logging.WithComponent(logger, "restore"))

	catalogSvc := catalog.NewService(repo, exporter, loader, ws, cfg.ArchivesDir(), config.Version, logger)
	runner := catalog.NewRunner(catalogSvc, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if dir := cfg.InboxDir(); dir != "" {
		w, err := watcher.NewFSWatcher(logger, watcher.DefaultSettle, catalog.IsArchiveFile)
		if err != nil {
			return fmt.Errorf("failed to create inbox watcher: %w", err)
		}
		w.OnChange(func(path string, event watcher.EventType) {
			if event == watcher.EventDelete {
				return
			}
			runner.Enqueue(path)
		})
		if err := w.Watch(ctx, dir); err != nil {
			return fmt.Errorf("failed to watch inbox: %w", err)
		}
		defer w.Stop()
		go runner.Start(ctx)
		logger.Info("inbox watcher enabled", "dir", logging.SanitizePath(dir))
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		CatalogService: catalogSvc,
		Downloads:      download.NewServer(logger),
		Repository:     repo,
		Workspace:      ws,
		Runner:         runner,
		Logger:         logger,
		StartTime:      startTime,
		DeviceID:       deviceID,
		Version:        config.Version,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("HTTP server error", "error", serveErr)
		}
	}

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return serveErr
}

// ensureSecret returns the stored value for key. A non-empty fixed value
// replaces whatever is stored; otherwise a random hex value of n bytes is
// generated once and persisted.
func ensureSecret(ctx context.Context, repo catalog.Repository, key string, n int, fixed string) (string, error) {
	if fixed != "" {
		if err := repo.SetConfig(ctx, key, fixed); err != nil {
			return "", err
		}
		return fixed, nil
	}

	existing, err := repo.GetConfig(ctx, key)
	if err == nil && existing != "" {
		return existing, nil
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	value := hex.EncodeToString(buf)

	if err := repo.SetConfig(ctx, key, value); err != nil {
		return "", err
	}
	return value, nil
}
