// Package cli implements the neocc command-line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/neocc/internal/report"
	"github.com/star/neocc/internal/tabs"
)

// settings are the resolved global options of one invocation.
type settings struct {
	configPath  string
	output      string
	urls        tabs.URLs
	timeout     int // seconds
	rateLimit   float64
	cacheDir    string
	cacheMaxAge int // seconds
	concurrency int
	verbose     bool
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	def := tabs.DefaultURLs()
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:           "neocc",
		Short:         "Query the NEO Coordination Centre object tabs",
		Long:          "Command-line client that fetches NEOCC object reports and decodes them into tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadFileConfig(s.configPath)
			if err != nil {
				return err
			}
			if err := s.resolve(cmd, cfg); err != nil {
				return err
			}
			return validateOutputFormat(s.output)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&s.configPath, "config", ConfigPath(), "Config file")
	pf.StringVarP(&s.output, "output", "o", "table", "Output format (table, json, yaml)")
	pf.StringVar(&s.urls.Download, "download-url", def.Download, "Report download endpoint")
	pf.StringVar(&s.urls.Ephemerides, "ephemerides-url", def.Ephemerides, "Ephemerides endpoint")
	pf.StringVar(&s.urls.Summary, "summary-url", def.Summary, "Object summary page prefix")
	pf.IntVar(&s.timeout, "timeout", 60, "Per-request timeout in seconds")
	pf.Float64Var(&s.rateLimit, "rate-limit", 2, "Portal requests per second, 0 for unlimited")
	pf.StringVar(&s.cacheDir, "cache-dir", "", "Report cache directory, empty disables the cache")
	pf.IntVar(&s.cacheMaxAge, "cache-max-age", 3600, "Seconds a cached report stays fresh")
	pf.IntVar(&s.concurrency, "concurrency", 4, "Objects queried in parallel")
	pf.BoolVarP(&s.verbose, "verbose", "v", false, "Log requests to stderr")

	rootCmd.AddCommand(newQueryCmd(s))
	rootCmd.AddCommand(newDecodeCmd(s))
	rootCmd.AddCommand(newURLCmd(s))
	rootCmd.AddCommand(newTabsCmd(s))

	return rootCmd
}

// resolve applies precedence flag > env > config file > default.
func (s *settings) resolve(cmd *cobra.Command, cfg *FileConfig) error {
	flags := cmd.Flags()
	str := func(flag, env, file string, target *string) {
		if flags.Changed(flag) {
			return
		}
		if v := os.Getenv(env); v != "" {
			*target = v
		} else if file != "" {
			*target = file
		}
	}
	num := func(flag, env string, file int, target *int) error {
		if flags.Changed(flag) {
			return nil
		}
		if v := os.Getenv(env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer, got %q", env, v)
			}
			*target = n
		} else if file != 0 {
			*target = file
		}
		return nil
	}

	str("output", "NEOCC_OUTPUT", cfg.Output, &s.output)
	str("download-url", "NEOCC_DOWNLOAD_URL", cfg.DownloadURL, &s.urls.Download)
	str("ephemerides-url", "NEOCC_EPHEMERIDES_URL", cfg.EphemeridesURL, &s.urls.Ephemerides)
	str("summary-url", "NEOCC_SUMMARY_URL", cfg.SummaryURL, &s.urls.Summary)
	str("cache-dir", "NEOCC_CACHE_DIR", cfg.CacheDir, &s.cacheDir)

	if err := num("timeout", "NEOCC_TIMEOUT", cfg.Timeout, &s.timeout); err != nil {
		return err
	}
	if err := num("cache-max-age", "NEOCC_CACHE_MAX_AGE", cfg.CacheMaxAge, &s.cacheMaxAge); err != nil {
		return err
	}
	if err := num("concurrency", "NEOCC_CONCURRENCY", cfg.Concurrency, &s.concurrency); err != nil {
		return err
	}

	if !flags.Changed("rate-limit") {
		if v := os.Getenv("NEOCC_RATE_LIMIT"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("NEOCC_RATE_LIMIT must be a number, got %q", v)
			}
			s.rateLimit = f
		} else if cfg.RateLimit != 0 {
			s.rateLimit = cfg.RateLimit
		}
	}

	if s.concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.concurrency)
	}
	return nil
}

func (s *settings) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if s.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// client builds the portal client, with a disk cache when a cache
// directory is configured.
func (s *settings) client(logger *slog.Logger) (*tabs.Client, error) {
	var source report.Source = report.NewFetcher(report.FetcherConfig{
		Timeout:    time.Duration(s.timeout) * time.Second,
		RetryDelay: 5 * time.Second,
		RateLimit:  s.rateLimit,
	}, logger)

	if s.cacheDir != "" {
		if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		cache := report.NewCache(s.cacheDir, 3)
		source = report.NewCachedSource(source, cache, time.Duration(s.cacheMaxAge)*time.Second, logger)
	}
	return tabs.NewClient(source, s.urls, logger), nil
}
