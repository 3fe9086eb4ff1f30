package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/meterflow/meterflow/core"
	"github.com/meterflow/meterflow/internal/contract"
	"github.com/meterflow/meterflow/schema"
)

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := core.ChartData(r.Context(), s.store, cfg)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, result)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := core.WindowUsage(r.Context(), s.store, cfg)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	payload := struct {
		DeviceID string `json:"device_id"`
		schema.UsageResult
	}{DeviceID: cfg.DeviceID, UsageResult: result}
	writeResult(w, payload)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := core.DailyUsage(r.Context(), s.store, cfg)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, result)
}

func (s *Server) handleArea(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg.Locality = r.PathValue("locality")
	cfg.Bucket = valueOr(r, "bucket", contract.DefaultAreaBucket)
	results, err := core.AreaUsageReport(r.Context(), s.store, cfg)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, results)
}

func (s *Server) handleHousehold(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg.HouseholdID = r.PathValue("householdId")
	report, err := core.HouseholdReportData(r.Context(), s.store, cfg)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, report)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg.Bucket = valueOr(r, "bucket", contract.DefaultForecastBucket)
	points, err := core.ForecastUsage(r.Context(), s.store, cfg)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeResult(w, points)
}

// requestConfig copies the base configuration and layers the request's query
// parameters on top. Parse failures surface as 400s.
func (s *Server) requestConfig(r *http.Request) (*contract.Config, error) {
	cfg := *s.cfg
	q := r.URL.Query()

	if v := q.Get("device"); v != "" {
		cfg.DeviceID = v
	}
	if v := q.Get("bucket"); v != "" {
		cfg.Bucket = v
	}
	if v := q.Get("start"); v != "" {
		t, err := contract.ParseQueryTime(v)
		if err != nil {
			return nil, fmt.Errorf("invalid start: %w", err)
		}
		cfg.StartTime = t
	}
	if v := q.Get("end"); v != "" {
		t, err := contract.ParseQueryTime(v)
		if err != nil {
			return nil, fmt.Errorf("invalid end: %w", err)
		}
		cfg.EndTime = t
	}
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return nil, fmt.Errorf("%w: start is after end", schema.ErrInvalidRange)
	}

	if v := q.Get("granularity"); v != "" {
		g := schema.Granularity(strings.ToLower(v))
		if _, ok := schema.ValidGranularities[g]; !ok {
			return nil, fmt.Errorf("%w: %q", schema.ErrUnsupportedGranularity, v)
		}
		cfg.Granularity = g
	}
	if v := q.Get("sort"); v != "" {
		order := schema.SortOrder(strings.ToLower(v))
		if _, ok := schema.ValidSortOrders[order]; !ok {
			return nil, fmt.Errorf("invalid sort order %q", v)
		}
		cfg.SortOrder = order
	}
	if v := q.Get("dedup"); v != "" {
		policy := schema.DedupPolicy(strings.ToLower(v))
		if _, ok := schema.ValidDedupPolicies[policy]; !ok {
			return nil, fmt.Errorf("invalid dedup policy %q", v)
		}
		cfg.DedupPolicy = policy
	}
	if v := q.Get("multiplier"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier %q", v)
		}
		cfg.Multiplier = m
	}
	if v := q.Get("date"); v != "" {
		cfg.TargetDate = v
	}
	if v := q.Get("group-by"); v != "" {
		g := schema.BucketGranularity(strings.ToLower(v))
		if _, ok := schema.ValidBucketGranularities[g]; !ok {
			return nil, fmt.Errorf("invalid group-by %q", v)
		}
		cfg.BucketGranularity = g
	}
	if v := q.Get("latest-only"); v != "" {
		cfg.LatestOnly = v == "true" || v == "1"
	}
	if v := q.Get("forecast-key"); v != "" {
		cfg.ForecastKey = v
	}

	return &cfg, nil
}

// writeQueryError maps engine failures onto status codes: unreachable store is
// a 503, a missing object is a 404, bad request parameters are 400s and
// everything else is a 500.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schema.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err)
	case contract.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, schema.ErrMissingParams),
		errors.Is(err, schema.ErrInvalidRange),
		errors.Is(err, schema.ErrUnsupportedGranularity):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeResult(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// valueOr returns the query parameter or a fallback.
func valueOr(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}
