package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-hub/app/api"
	"github.com/lysyi3m/news-hub/app/cfg"
	"github.com/lysyi3m/news-hub/app/database"
	"github.com/lysyi3m/news-hub/app/feed"
	"github.com/lysyi3m/news-hub/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg); err != nil {
		slog.Error("Command failed", "command", string(appCfg.Command), "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg *cfg.Cfg) error {
	switch appCfg.Command {
	case cfg.CommandIngest:
		summary, err := newIngestor(appCfg).Run(ctx)
		if err != nil {
			return err
		}
		return printJSON(summary)

	case cfg.CommandList:
		return listArticles(ctx, appCfg.DBPath)

	case cfg.CommandSeed:
		summary, err := tasks.Seed(ctx, appCfg.DBPath, time.Now())
		if err != nil {
			return err
		}
		return printJSON(summary)

	default:
		return serve(ctx, appCfg)
	}
}

func newIngestor(appCfg *cfg.Cfg) *tasks.Ingestor {
	fetcher := feed.NewFetcher(feed.NewHTTPClient(), feed.NewParser(), appCfg.UserAgent, appCfg.FetchTimeout)

	return tasks.NewIngestor(appCfg.DBPath, appCfg.FeedsFile, fetcher, appCfg.WorkerCount)
}

func listArticles(ctx context.Context, dbPath string) error {
	var articles []database.AggregatedArticle

	err := database.WithReadOnlyStore(ctx, dbPath, func(db *database.DB) error {
		var err error
		articles, err = database.NewArticleRepository(db).ListArticles(ctx)
		return err
	})
	if err != nil {
		return err
	}

	return printJSON(api.ToArticleResponses(articles))
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func serve(ctx context.Context, appCfg *cfg.Cfg) error {
	slog.Info("Starting News Hub server", "version", appCfg.Version)

	// Fail fast on a broken store or schema before accepting requests.
	if err := database.WithStore(ctx, appCfg.DBPath, func(db *database.DB) error { return nil }); err != nil {
		return err
	}

	ingestor := newIngestor(appCfg)

	if appCfg.IngestSchedule != "" {
		scheduler := tasks.NewScheduler(ingestor, appCfg.IngestSchedule)
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer scheduler.Stop()
	} else {
		slog.Info("Scheduled ingestion disabled (INGEST_SCHEDULE not set)")
	}

	handler := api.NewHandler(appCfg.DBPath, ingestor, appCfg.Version)
	router := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return nil
}
