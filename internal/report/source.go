package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"
)

// CachedSource serves reports from a disk Cache while they are younger
// than MaxAge and fetches through Upstream otherwise.
type CachedSource struct {
	Upstream Source
	Cache    *Cache
	MaxAge   time.Duration
	Logger   *slog.Logger

	now func() time.Time
}

// NewCachedSource wraps upstream with a disk cache.
func NewCachedSource(upstream Source, cache *Cache, maxAge time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		Upstream: upstream,
		Cache:    cache,
		MaxAge:   maxAge,
		Logger:   logger,
		now:      time.Now,
	}
}

// Fetch implements Source. Cache read and write failures are logged and
// never fail the fetch.
func (s *CachedSource) Fetch(ctx context.Context, req Request) ([]byte, error) {
	key := req.Key()
	data, ts, err := s.Cache.LoadLatest(key)
	if err == nil && s.now().Sub(ts) < s.MaxAge {
		s.Logger.Debug("report served from cache",
			"kind", req.Kind,
			"object", req.Object,
			"cached_at", ts.UTC().Format(time.RFC3339),
		)
		return data, nil
	}

	data, err = s.Upstream.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if werr := s.Cache.Write(key, data, s.now()); werr != nil {
		s.Logger.Warn("failed to write report cache", "key", key, "error", werr)
	}
	return data, nil
}

func urlDigest(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:6])
}

func safeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
