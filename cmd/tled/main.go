package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/star/tlekit/internal/api"
	"github.com/star/tlekit/internal/auth"
	"github.com/star/tlekit/internal/metrics"
	"github.com/star/tlekit/internal/tle"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	apiCfg := loadAPIConfig(logger)

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	feedCfg := loadFeedConfig(logger)
	store := tle.NewStore()
	feedCache := tle.NewCache(feedCfg.CacheDir, feedCfg.MaxFiles)

	// Attempt to load a cached catalog snapshot on startup.
	data, ts, err := feedCache.LoadLatest()
	if err != nil {
		logger.Info("no catalog cache found, starting without catalog data", "error", err)
	} else {
		entries, err := tle.ParseCatalog(bytes.NewReader(data), logger)
		if err != nil {
			logger.Warn("failed to parse cached catalog data", "error", err)
		} else if len(entries) > 0 {
			store.Set(tle.NewDataset("cache", ts, entries))
			metrics.SetDatasetCount(len(entries))
			logger.Info("loaded catalog from cache", "count", len(entries), "cached_at", ts.Format(time.RFC3339))
		}
	}

	srv := api.NewServer(apiCfg, logger, authCfg, store)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if feedCfg.EnableFetch {
		fetcher := tle.NewFetcher(feedCfg.SourceURL, logger)
		go fetchLoop(ctx, fetcher, feedCache, store, feedCfg.RefreshInterval, logger)
	}

	if feedCfg.WatchFile != "" {
		watcher := tle.NewWatcher(feedCfg.WatchFile, feedCfg.WatchDebounce, store, logger)
		watcher.OnLoad = func(ds *tle.Dataset) {
			metrics.SetDatasetCount(len(ds.Satellites))
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("feed watcher stopped", "error", err)
			}
		}()
	}

	// Background goroutine to update the catalog age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				age := store.AgeSeconds()
				if age >= 0 {
					metrics.SetDatasetAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server", "addr", apiCfg.Addr, "auth_enabled", authCfg.Enabled, "fetch_enabled", feedCfg.EnableFetch, "watch_file", feedCfg.WatchFile)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// fetchLoop fetches the remote feed immediately and then on every interval
// tick, replacing the store snapshot and writing a cache file on success.
func fetchLoop(ctx context.Context, fetcher *tle.Fetcher, cache *tle.Cache, store *tle.Store, interval time.Duration, logger *slog.Logger) {
	refresh := func() {
		store.Lock()
		defer store.Unlock()

		data, err := fetcher.Fetch(ctx)
		if err != nil {
			logger.Warn("catalog fetch failed", "source", fetcher.SourceURL(), "error", err)
			return
		}
		entries, err := tle.ParseCatalog(bytes.NewReader(data), logger)
		if err != nil {
			logger.Warn("catalog parse failed", "source", fetcher.SourceURL(), "error", err)
			return
		}
		now := time.Now().UTC()
		store.Set(tle.NewDataset(fetcher.SourceURL(), now, entries))
		metrics.SetDatasetCount(len(entries))
		if err := cache.Write(data, now); err != nil {
			logger.Warn("catalog cache write failed", "error", err)
		}
		logger.Info("catalog refreshed", "source", fetcher.SourceURL(), "count", len(entries))
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}

func loadAPIConfig(logger *slog.Logger) api.Config {
	cfg := api.Config{
		Addr:               ":8080",
		MaxConcurrentPerIP: 10,
	}

	if v := os.Getenv("TLEKIT_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("TLEKIT_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid TLEKIT_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	if v := os.Getenv("TLEKIT_MAX_CONCURRENT_PER_IP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid TLEKIT_MAX_CONCURRENT_PER_IP value, using default", "value", v, "default", cfg.MaxConcurrentPerIP)
		} else {
			cfg.MaxConcurrentPerIP = n
		}
	}

	return cfg
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("TLEKIT_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("TLEKIT_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("TLEKIT_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("TLEKIT_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

type feedConfig struct {
	EnableFetch     bool
	SourceURL       string
	RefreshInterval time.Duration
	CacheDir        string
	MaxFiles        int
	WatchFile       string
	WatchDebounce   time.Duration
}

func loadFeedConfig(logger *slog.Logger) feedConfig {
	cfg := feedConfig{
		RefreshInterval: 24 * time.Hour,
		CacheDir:        "/tmp/tlekit/catalog",
		MaxFiles:        5,
	}

	if v := os.Getenv("TLEKIT_ENABLE_FETCH"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid TLEKIT_ENABLE_FETCH value, defaulting to false", "value", v)
		} else {
			cfg.EnableFetch = enabled
		}
	}

	if v := os.Getenv("TLEKIT_SOURCE_URL"); v != "" {
		cfg.SourceURL = v
	}

	if v := os.Getenv("TLEKIT_REFRESH_INTERVAL"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 1 {
			logger.Warn("invalid TLEKIT_REFRESH_INTERVAL value, defaulting to 86400", "value", v)
		} else {
			cfg.RefreshInterval = time.Duration(seconds) * time.Second
		}
	}

	if v := os.Getenv("TLEKIT_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	if v := os.Getenv("TLEKIT_WATCH_FILE"); v != "" {
		cfg.WatchFile = v
	}

	if v := os.Getenv("TLEKIT_WATCH_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 1 {
			logger.Warn("invalid TLEKIT_WATCH_DEBOUNCE_MS value, using default", "value", v)
		} else {
			cfg.WatchDebounce = time.Duration(ms) * time.Millisecond
		}
	}

	logger.Info("feed config",
		"fetch_enabled", cfg.EnableFetch,
		"source_url", cfg.SourceURL,
		"cache_dir", cfg.CacheDir,
		"watch_file", cfg.WatchFile,
	)

	return cfg
}
