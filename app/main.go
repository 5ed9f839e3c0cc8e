package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/gesteves/kona/app/api"
	"github.com/gesteves/kona/app/cache"
	"github.com/gesteves/kona/app/cfg"
	"github.com/gesteves/kona/app/content"
	"github.com/gesteves/kona/app/fetch"
	"github.com/gesteves/kona/app/metrics"
	"github.com/gesteves/kona/app/profile"
	"github.com/gesteves/kona/app/sink"
	"github.com/gesteves/kona/app/source"
	"github.com/gesteves/kona/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Kona failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Kona", "version", appCfg.Version)

	prof, err := profile.Load(appCfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, appCfg)
	if err != nil {
		return err
	}
	gateway := cache.NewGateway(store, recorder)
	defer gateway.Close()

	fetcher := fetch.NewFetcher(newClient(appCfg, prof), prof.EnabledCollections(), fetch.Options{
		PageSize: appCfg.FetchPageSize,
		Delay:    appCfg.FetchDelay,
		Recorder: recorder,
	})
	builder := content.NewBuilder(content.Options{
		Strict:   prof.Strict,
		Location: appCfg.Location,
		Recorder: recorder,
	})

	feed := sink.NewFeedGenerator(prof.FeedSize, fmt.Sprintf("Kona/%s", appCfg.Version))
	writer, err := sink.New(sink.Options{
		Dir:       appCfg.OutputDir,
		Format:    appCfg.Format,
		Artifacts: prof.Artifacts,
		Feed:      feed,
		Recorder:  recorder,
	})
	if err != nil {
		return fmt.Errorf("failed to create sink: %w", err)
	}

	pipeline := tasks.NewPipeline(fetcher, builder, gateway, writer, tasks.PipelineOptions{
		Key:      cache.DefaultKey,
		TTL:      appCfg.CacheTTL,
		Recorder: recorder,
	})

	if !appCfg.Serve {
		_, err := pipeline.Run(ctx)
		return err
	}

	return serve(ctx, appCfg, prof, pipeline, feed, recorder)
}

func newClient(appCfg *cfg.Cfg, prof *profile.Profile) source.Client {
	if appCfg.SourceFile != "" {
		slog.Info("Reading content from file", "path", appCfg.SourceFile)
		return source.NewFileClient(appCfg.SourceFile)
	}
	return source.NewGraphQLClient(source.GraphQLOptions{
		Endpoint:    appCfg.ContentURL,
		AccessToken: appCfg.AccessToken,
		UserAgent:   appCfg.UserAgent,
		Preview:     prof.Preview,
		Fields:      prof.Fields(),
	})
}

func openStore(ctx context.Context, appCfg *cfg.Cfg) (cache.Store, error) {
	switch appCfg.CacheBackend {
	case "memory":
		return cache.NewMemoryStore(), nil
	case "sqlite":
		store, err := cache.NewSQLiteStore(appCfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		return store, nil
	case "redis":
		store, err := cache.NewRedisStore(ctx, appCfg.RedisAddr)
		if err != nil {
			slog.Warn("Redis unavailable, continuing without cache", "addr", appCfg.RedisAddr, "error", err)
			return cache.NopStore{}, nil
		}
		return store, nil
	default:
		return cache.NopStore{}, nil
	}
}

func serve(ctx context.Context, appCfg *cfg.Cfg, prof *profile.Profile, pipeline *tasks.Pipeline, feed *sink.FeedGenerator, recorder *metrics.PrometheusRecorder) error {
	scheduler := tasks.NewScheduler(pipeline, appCfg.RebuildInterval)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(api.HandlerOptions{
		Content:   pipeline,
		Runner:    pipeline,
		Scheduler: scheduler,
		Feed:      feed,
		Artifacts: prof.Artifacts,
		Metrics:   recorder.Handler(),
		Version:   appCfg.Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "rebuild_interval", appCfg.RebuildInterval)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case serverErr = <-serverErrChan:
		slog.Error("Server error", "error", serverErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serverErr
}
