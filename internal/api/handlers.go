package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/star/neocc/internal/httputil"
	"github.com/star/neocc/internal/metrics"
	"github.com/star/neocc/internal/report"
	"github.com/star/neocc/internal/table"
	"github.com/star/neocc/internal/tabs"
)

// objectResponse is the body of a successful object tab query.
type objectResponse struct {
	Object   string          `json:"object" yaml:"object"`
	Tab      string          `json:"tab" yaml:"tab"`
	Sections []table.Section `json:"sections" yaml:"sections"`
}

func tabsHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tabs": tabs.Tabs()})
}

func paramsFromQuery(r *http.Request) tabs.Params {
	q := r.URL.Query()
	return tabs.Params{
		OrbitalElements: q.Get(tabs.ParamOrbitalElements),
		OrbitEpoch:      q.Get(tabs.ParamOrbitEpoch),
		Observatory:     q.Get(tabs.ParamObservatory),
		Start:           q.Get(tabs.ParamStart),
		Stop:            q.Get(tabs.ParamStop),
		Step:            q.Get(tabs.ParamStep),
		StepUnit:        q.Get(tabs.ParamStepUnit),
	}
}

func objectTabHandler(logger *slog.Logger, querier Querier, limiter *queryLimiter, cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		object := r.PathValue("object")
		tab := r.PathValue("tab")

		format := r.URL.Query().Get("format")
		switch format {
		case "", "json", "yaml", "text":
		default:
			httputil.WriteError(w, http.StatusBadRequest, "invalid format", map[string]any{
				"allowed": []string{"json", "yaml", "text"},
			})
			return
		}

		ip := httputil.ClientIP(r, cfg.TrustProxy)
		if !limiter.acquire(ip) {
			metrics.IncQueriesRejected()
			logger.Warn("query limit reached", "remote_ip", ip, "in_flight", limiter.count(ip))
			w.Header().Set("Retry-After", "5")
			httputil.WriteError(w, http.StatusTooManyRequests, "too many concurrent queries", nil)
			return
		}
		defer limiter.release(ip)

		ctx, cancel := context.WithTimeout(r.Context(), cfg.QueryTimeout)
		defer cancel()

		sections, err := querier.Query(ctx, object, tab, paramsFromQuery(r))
		if err != nil {
			writeQueryError(w, logger, object, tab, err)
			return
		}

		resp := objectResponse{Object: object, Tab: tab, Sections: sections}
		switch format {
		case "yaml":
			out, err := yaml.Marshal(resp)
			if err != nil {
				logger.Error("yaml encoding failed", "object", object, "tab", tab, "error", err)
				httputil.WriteError(w, http.StatusInternalServerError, "encoding failed", nil)
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			w.WriteHeader(http.StatusOK)
			w.Write(out)
		case "text":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			for _, s := range sections {
				if err := table.WriteText(w, s, 0); err != nil {
					logger.Warn("text response truncated", "object", object, "tab", tab, "error", err)
					return
				}
			}
		default:
			httputil.WriteJSON(w, http.StatusOK, resp)
		}
	}
}

// writeQueryError maps the query error taxonomy to HTTP statuses.
func writeQueryError(w http.ResponseWriter, logger *slog.Logger, object, tab string, err error) {
	var (
		missing   *tabs.MissingParameterError
		invalid   *tabs.InvalidParameterError
		notFound  *tabs.ObjectNotFoundError
		empty     *tabs.EmptyReportError
		malformed *tabs.MalformedSectionError
		connErr   *report.ConnectionError
	)
	switch {
	case errors.As(err, &missing):
		httputil.WriteError(w, http.StatusBadRequest, err.Error(), map[string]any{
			"required": missing.Required,
			"missing":  missing.Missing,
		})
	case errors.As(err, &invalid):
		httputil.WriteError(w, http.StatusBadRequest, err.Error(), map[string]any{
			"allowed": invalid.Allowed,
		})
	case errors.As(err, &notFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &empty):
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.As(err, &malformed):
		logger.Error("upstream report malformed", "object", object, "tab", tab, "error", err)
		httputil.WriteError(w, http.StatusBadGateway, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		// A fetch cut by the query deadline also arrives as a ConnectionError.
		httputil.WriteError(w, http.StatusGatewayTimeout, "upstream timed out", nil)
	case errors.As(err, &connErr):
		httputil.WriteError(w, http.StatusBadGateway, "upstream unavailable", nil)
	default:
		logger.Error("object query failed", "object", object, "tab", tab, "error", err)
		httputil.WriteError(w, http.StatusBadGateway, "upstream error", nil)
	}
}
