package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/star/neocc/internal/api"
	"github.com/star/neocc/internal/auth"
	"github.com/star/neocc/internal/health"
	"github.com/star/neocc/internal/report"
	"github.com/star/neocc/internal/tabs"
)

type cacheConfig struct {
	Dir      string
	MaxFiles int
	MaxAge   time.Duration
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	fetchCfg := loadFetchConfig(logger)
	fetcher := report.NewFetcher(fetchCfg, logger)

	cacheCfg := loadCacheConfig(logger)
	if err := os.MkdirAll(cacheCfg.Dir, 0755); err != nil {
		logger.Error("cannot create cache directory", "dir", cacheCfg.Dir, "error", err)
		os.Exit(1)
	}
	source := report.NewCachedSource(fetcher, report.NewCache(cacheCfg.Dir, cacheCfg.MaxFiles), cacheCfg.MaxAge, logger)

	client := tabs.NewClient(source, loadURLs(logger), logger)
	ready := health.New(map[string]health.Check{
		"cache": health.DirWritable(cacheCfg.Dir),
	})

	srvCfg := loadServerConfig(logger)
	srvCfg.Auth = authCfg
	srv := api.NewServer(srvCfg, client, ready, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", srvCfg.Addr, "auth_enabled", authCfg.Enabled)
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

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("NEOCC_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("NEOCC_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("NEOCC_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("NEOCC_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadServerConfig(logger *slog.Logger) api.Config {
	cfg := api.Config{
		Addr:         ":8080",
		QueryTimeout: 3 * time.Minute,
		MaxPerIP:     4,
		MaxInFlight:  64,
	}

	if v := os.Getenv("NEOCC_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("NEOCC_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid NEOCC_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	if v := os.Getenv("NEOCC_QUERY_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid NEOCC_QUERY_TIMEOUT value, using default", "value", v, "default", 180)
		} else {
			cfg.QueryTimeout = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("NEOCC_MAX_QUERIES_PER_IP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid NEOCC_MAX_QUERIES_PER_IP value, using default", "value", v, "default", 4)
		} else {
			cfg.MaxPerIP = n
		}
	}

	if v := os.Getenv("NEOCC_MAX_QUERIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid NEOCC_MAX_QUERIES value, using default", "value", v, "default", 64)
		} else {
			cfg.MaxInFlight = n
		}
	}

	logger.Info("server config",
		"addr", cfg.Addr,
		"trust_proxy", cfg.TrustProxy,
		"query_timeout_seconds", cfg.QueryTimeout.Seconds(),
		"max_queries_per_ip", cfg.MaxPerIP,
		"max_queries", cfg.MaxInFlight,
	)

	return cfg
}

func loadFetchConfig(logger *slog.Logger) report.FetcherConfig {
	cfg := report.FetcherConfig{
		Timeout:    60 * time.Second,
		RetryDelay: 5 * time.Second,
		RateLimit:  2,
	}

	if v := os.Getenv("NEOCC_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid NEOCC_TIMEOUT value, using default", "value", v, "default", 60)
		} else {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("NEOCC_RETRY_DELAY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logger.Warn("invalid NEOCC_RETRY_DELAY value, using default", "value", v, "default", 5)
		} else {
			cfg.RetryDelay = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("NEOCC_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			logger.Warn("invalid NEOCC_RATE_LIMIT value, using default", "value", v, "default", 2)
		} else {
			cfg.RateLimit = f
		}
	}

	logger.Info("fetch config",
		"timeout_seconds", cfg.Timeout.Seconds(),
		"retry_delay_seconds", cfg.RetryDelay.Seconds(),
		"rate_limit", cfg.RateLimit,
	)

	return cfg
}

func loadCacheConfig(logger *slog.Logger) cacheConfig {
	cfg := cacheConfig{
		Dir:      "/tmp/neocc/reports",
		MaxFiles: 3,
		MaxAge:   time.Hour,
	}

	if v := os.Getenv("NEOCC_CACHE_DIR"); v != "" {
		cfg.Dir = v
	}

	if v := os.Getenv("NEOCC_CACHE_MAX_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid NEOCC_CACHE_MAX_FILES value, using default", "value", v, "default", 3)
		} else {
			cfg.MaxFiles = n
		}
	}

	// A zero max age keeps writing the cache but never serves from it.
	if v := os.Getenv("NEOCC_CACHE_MAX_AGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logger.Warn("invalid NEOCC_CACHE_MAX_AGE value, using default", "value", v, "default", 3600)
		} else {
			cfg.MaxAge = time.Duration(n) * time.Second
		}
	}

	logger.Info("cache config",
		"dir", cfg.Dir,
		"max_files", cfg.MaxFiles,
		"max_age_seconds", cfg.MaxAge.Seconds(),
	)

	return cfg
}

func loadURLs(logger *slog.Logger) tabs.URLs {
	urls := tabs.DefaultURLs()

	if v := os.Getenv("NEOCC_DOWNLOAD_URL"); v != "" {
		urls.Download = v
	}
	if v := os.Getenv("NEOCC_EPHEMERIDES_URL"); v != "" {
		urls.Ephemerides = v
	}
	if v := os.Getenv("NEOCC_SUMMARY_URL"); v != "" {
		urls.Summary = v
	}

	logger.Info("portal config",
		"download_url", urls.Download,
		"ephemerides_url", urls.Ephemerides,
		"summary_url", urls.Summary,
	)

	return urls
}
