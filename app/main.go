package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freebiewatch/app/api"
	"freebiewatch/app/cfg"
	"freebiewatch/app/database"
	"freebiewatch/app/freebie"
	"freebiewatch/app/notify"
	"freebiewatch/app/sources"
	"freebiewatch/app/state"
	"freebiewatch/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		// go-flags already printed the parse error (e.g. a missing
		// --webhook-url); a missing required setting is fatal before
		// any run starts.
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting freebiewatch", "version", appCfg.Version,
		"check_interval_hours", appCfg.CheckInterval, "locale", appCfg.Locale)

	sourcesCfg, err := sources.LoadConfig(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load sources configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open offer archive", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Offer archive ready", "schema_version", version, "dirty", dirty)

	httpClient := &http.Client{Timeout: time.Duration(appCfg.Timeout) * time.Second}

	var fetchers []sources.Fetcher
	if sourcesCfg.Epic.Enabled {
		fetchers = append(fetchers, sources.NewEpicFetcher(
			sourcesCfg.Epic, httpClient, appCfg.UserAgent, appCfg.Locale, appCfg.Country))
	}
	if sourcesCfg.Steam.Enabled {
		fetchers = append(fetchers, sources.NewSteamFetcher(
			sourcesCfg.Steam, httpClient, appCfg.UserAgent))
	}
	if len(fetchers) == 0 {
		slog.Error("All sources are disabled, nothing to watch")
		os.Exit(1)
	}
	slog.Info("Sources configured", "count", len(fetchers))

	store := state.NewStore(appCfg.StatePath)
	offerRepo := database.NewOfferRepository(db)

	client := notify.NewClient(appCfg.WebhookURL, appCfg.UserAgent,
		time.Duration(appCfg.Timeout)*time.Second)
	batcher := notify.NewBatcher(client)
	formatter := notify.NewFormatter(map[freebie.Source]int{
		freebie.SourceEpic:  sourcesCfg.Epic.Color,
		freebie.SourceSteam: sourcesCfg.Steam.Color,
	})

	status := tasks.NewStatus()
	newTask := func() *tasks.CheckTask {
		return tasks.NewCheckTask(fetchers, formatter, batcher, store, offerRepo, appCfg.MentionRoleID)
	}

	scheduler, err := tasks.NewScheduler(newTask, status, appCfg.CheckInterval)
	if err != nil {
		slog.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(store, offerRepo, status, appCfg.Version)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer and waits for an in-flight run
	slog.Info("Shutdown complete")
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
