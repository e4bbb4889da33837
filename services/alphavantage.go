package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-viewer/models"
	"stock-viewer/observability"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const (
	// DefaultAlphaVantageBaseURL is the production API host
	DefaultAlphaVantageBaseURL = "https://www.alphavantage.co"

	// TimeSeriesDailyKey is the response member holding the bars
	TimeSeriesDailyKey = "Time Series (Daily)"

	opTimeSeriesDaily = "time_series_daily"
)

// AlphaVantageService handles communication with Alpha Vantage API
type AlphaVantageService struct {
	apiKey   string
	client   *resty.Client
	breakers *CircuitBreakerRegistry
}

// NewAlphaVantageService creates a new AlphaVantageService instance.
// An empty baseURL selects the production host.
func NewAlphaVantageService(apiKey, baseURL string, timeout time.Duration) *AlphaVantageService {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &AlphaVantageService{
		apiKey:   apiKey,
		client:   client,
		breakers: GetGlobalRegistry(),
	}
}

// Breakers returns the registry this client reports through
func (s *AlphaVantageService) Breakers() *CircuitBreakerRegistry {
	return s.breakers
}

// SetBreakerRegistry replaces the circuit breaker registry (used by tests)
func (s *AlphaVantageService) SetBreakerRegistry(r *CircuitBreakerRegistry) {
	s.breakers = r
}

// DailyTimeSeriesResponse is the TIME_SERIES_DAILY payload. The provider reports
// problems in-band with HTTP 200 using one of the message members.
type DailyTimeSeriesResponse struct {
	MetaData     map[string]string          `json:"Meta Data"`
	TimeSeries   map[string]DailyBarPayload `json:"Time Series (Daily)"`
	ErrorMessage string                     `json:"Error Message"`
	Note         string                     `json:"Note"`
	Information  string                     `json:"Information"`
}

// DailyBarPayload holds string-encoded prices for one date
type DailyBarPayload struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// GetDailyTimeSeries issues one TIME_SERIES_DAILY request. It does not retry.
func (s *AlphaVantageService) GetDailyTimeSeries(ctx context.Context, symbol string) (models.TimeSeries, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlphaVantage, opTimeSeriesDaily)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerAlphaVantage, opTimeSeriesDaily)

	result, err := s.breakers.Execute(ctx, BreakerAlphaVantage, func() (any, error) {
		return s.fetchDaily(ctx, symbol)
	})
	if err != nil {
		fetchErr := classify(ctx, symbol, err)
		metrics.RecordExternalAPIError(BreakerAlphaVantage, opTimeSeriesDaily, string(fetchErr.Cause))
		observability.WithSymbol(symbol).Debug("alpha vantage request failed",
			"cause", fetchErr.Cause, "duration_ms", timer.Duration().Milliseconds())
		return nil, fetchErr
	}

	return result.(models.TimeSeries), nil
}

func (s *AlphaVantageService) fetchDaily(ctx context.Context, symbol string) (models.TimeSeries, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "TIME_SERIES_DAILY",
			"symbol":   symbol,
			"apikey":   s.apiKey,
		}).
		Get("/query")
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextFailure(ctx, symbol)
		}
		return nil, models.NewFetchError(models.CauseNetwork, symbol, fmt.Errorf("failed to fetch daily time series: %w", err))
	}

	if !resp.IsSuccess() {
		return nil, models.NewFetchError(models.CauseHTTPStatus, symbol,
			fmt.Errorf("alpha vantage returned HTTP %s", resp.Status()))
	}

	return ParseDailyTimeSeries(symbol, resp.Body())
}

// ParseDailyTimeSeries decodes a TIME_SERIES_DAILY body into bars keyed by date
func ParseDailyTimeSeries(symbol string, body []byte) (models.TimeSeries, error) {
	var payload DailyTimeSeriesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, models.NewFetchError(models.CauseDecode, symbol, fmt.Errorf("failed to decode daily time series: %w", err))
	}

	if payload.TimeSeries == nil {
		if payload.ErrorMessage != "" {
			return nil, models.NewFetchError(models.CauseSymbolNotFound, symbol, errors.New(payload.ErrorMessage))
		}
		msg := fmt.Sprintf("response has no %q", TimeSeriesDailyKey)
		if note := firstNonEmpty(payload.Note, payload.Information); note != "" {
			msg += ": " + note
		}
		return nil, models.NewFetchError(models.CauseMissingField, symbol, errors.New(msg))
	}

	ts := make(models.TimeSeries, len(payload.TimeSeries))
	for date, raw := range payload.TimeSeries {
		bar, err := raw.toDailyBar(date)
		if err != nil {
			return nil, models.NewFetchError(models.CauseConversion, symbol, err)
		}
		ts[date] = bar
	}

	return ts, nil
}

func (p DailyBarPayload) toDailyBar(date string) (models.DailyBar, error) {
	bar := models.DailyBar{Date: date}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"1. open", p.Open, &bar.Open},
		{"2. high", p.High, &bar.High},
		{"3. low", p.Low, &bar.Low},
		{"4. close", p.Close, &bar.Close},
	}

	for _, f := range fields {
		d, err := decimal.NewFromString(strings.TrimSpace(f.raw))
		if err != nil {
			return models.DailyBar{}, fmt.Errorf("invalid %q value %q on %s: %w", f.name, f.raw, date, err)
		}
		*f.dst = d.InexactFloat64()
	}

	return bar, nil
}

// classify maps anything returned through the breaker onto a FetchError
func classify(ctx context.Context, symbol string, err error) *models.FetchError {
	var fe *models.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return models.NewFetchError(models.CauseUnavailable, symbol, err)
	}
	if ctx.Err() != nil {
		return contextFailure(ctx, symbol)
	}
	return models.NewFetchError(models.CauseNetwork, symbol, err)
}

// contextFailure separates a caller giving up from a provider that never answered.
// An expired deadline is a network failure and counts against the breaker.
func contextFailure(ctx context.Context, symbol string) *models.FetchError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.NewFetchError(models.CauseNetwork, symbol,
			fmt.Errorf("alpha vantage did not respond in time: %w", ctx.Err()))
	}
	return models.NewFetchError(models.CauseCanceled, symbol, ctx.Err())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
