package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/star/neocc/internal/metrics"
)

// maxBodyBytes caps a single report body.
const maxBodyBytes = 50 << 20

// Request identifies one raw report to fetch.
type Request struct {
	Kind   string // tab or request family, used as metric label
	Object string
	URL    string
}

// Key returns a filesystem-safe cache key for the request.
func (r Request) Key() string {
	return safeName(r.Kind) + "_" + safeName(r.Object) + "_" + urlDigest(r.URL)
}

// Source returns the raw body of a report.
type Source interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// FetcherConfig holds HTTP fetch settings.
type FetcherConfig struct {
	Timeout    time.Duration // per-request timeout (default 60s)
	RetryDelay time.Duration // wait before the single retry (default 5s)
	RateLimit  float64       // requests per second, <= 0 disables limiting
}

// Fetcher retrieves raw reports over HTTP.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher with the given settings.
func NewFetcher(cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 2)
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    limiter,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Fetch performs an HTTP GET for req. A connection failure is retried
// once after the configured delay; HTTP status errors are not retried.
func (f *Fetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()
	body, err := f.get(ctx, req)

	var connErr *ConnectionError
	if errors.As(err, &connErr) && ctx.Err() == nil {
		f.logger.Warn("report fetch failed, retrying once",
			"kind", req.Kind,
			"object", req.Object,
			"retry_in", f.retryDelay.String(),
			"error", err,
		)
		if waitErr := sleep(ctx, f.retryDelay); waitErr != nil {
			metrics.RecordFetch(req.Kind, "canceled", time.Since(start))
			return nil, waitErr
		}
		body, err = f.get(ctx, req)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordFetch(req.Kind, outcome, time.Since(start))
	if err != nil {
		return nil, err
	}

	f.logger.Debug("report fetched",
		"kind", req.Kind,
		"object", req.Object,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, req Request) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ConnectionError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, req.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response from %s exceeds %d byte limit", req.URL, maxBodyBytes)
	}

	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
