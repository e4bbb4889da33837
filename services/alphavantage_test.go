package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"stock-viewer/models"
	"stock-viewer/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyFixture = `{
	"Meta Data": {
		"1. Information": "Daily Prices (open, high, low, close) and Volumes",
		"2. Symbol": "IBM",
		"3. Last Refreshed": "2024-01-05",
		"4. Output Size": "Compact",
		"5. Time Zone": "US/Eastern"
	},
	"Time Series (Daily)": {
		"2024-01-05": {"1. open": "160.9000", "2. high": "161.1600", "3. low": "159.8300", "4. close": "160.8600", "5. volume": "3999003"},
		"2024-01-04": {"1. open": "160.1100", "2. high": "161.2100", "3. low": "159.6000", "4. close": "160.1100", "5. volume": "4135432"},
		"2024-01-03": {"1. open": "161.0000", "2. high": "161.7300", "3. low": "160.0800", "4. close": "160.1000", "5. volume": "4086133"}
	}
}`

// newTestService points a service at a fake provider with an isolated breaker registry
func newTestService(t *testing.T, handler http.HandlerFunc) (*AlphaVantageService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewAlphaVantageService("test-key", server.URL, 5*time.Second)
	svc.SetBreakerRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
	return svc, server
}

func requireCause(t *testing.T, err error, want models.FetchCause) *models.FetchError {
	t.Helper()
	var fe *models.FetchError
	require.True(t, errors.As(err, &fe), "expected FetchError, got %T: %v", err, err)
	assert.Equal(t, want, fe.Cause)
	return fe
}

func TestNewAlphaVantageService(t *testing.T) {
	service := NewAlphaVantageService("test-api-key", "", 30*time.Second)
	require.NotNil(t, service)
	assert.Equal(t, "test-api-key", service.apiKey)
	assert.Equal(t, "https://www.alphavantage.co", service.client.BaseURL)
	assert.Equal(t, GetGlobalRegistry(), service.breakers)
}

func TestGetDailyTimeSeries_Success(t *testing.T) {
	var captured url.Values
	var path string
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, dailyFixture)
	})

	ts, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, "/query", path)
	assert.Equal(t, "TIME_SERIES_DAILY", captured.Get("function"))
	assert.Equal(t, "IBM", captured.Get("symbol"))
	assert.Equal(t, "test-key", captured.Get("apikey"))

	require.Len(t, ts, 3)
	bar := ts["2024-01-05"]
	assert.Equal(t, "2024-01-05", bar.Date)
	assert.Equal(t, 160.9, bar.Open)
	assert.Equal(t, 161.16, bar.High)
	assert.Equal(t, 159.83, bar.Low)
	assert.Equal(t, 160.86, bar.Close)
}

func TestGetDailyTimeSeries_MissingKey(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Information": "Thank you for using Alpha Vantage! Please visit premium."}`)
	})

	_, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
	fe := requireCause(t, err, models.CauseMissingField)
	assert.Contains(t, fe.Error(), `"Time Series (Daily)"`)
	assert.Contains(t, fe.Error(), "Thank you for using Alpha Vantage")
}

func TestGetDailyTimeSeries_SymbolNotFound(t *testing.T) {
	const msg = "Invalid API call. Please retry or visit the documentation for TIME_SERIES_DAILY."
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Error Message": %q}`, msg)
	})

	_, err := svc.GetDailyTimeSeries(context.Background(), "NOPE")
	fe := requireCause(t, err, models.CauseSymbolNotFound)
	assert.Equal(t, msg, fe.Error())
	assert.Equal(t, "NOPE", fe.Symbol)
}

func TestGetDailyTimeSeries_DecodeError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>maintenance</html>`)
	})

	_, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
	requireCause(t, err, models.CauseDecode)
}

func TestGetDailyTimeSeries_ConversionError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Time Series (Daily)": {"2024-01-05": {"1. open": "1", "2. high": "2", "3. low": "0.5", "4. close": "n/a"}}}`)
	})

	_, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
	fe := requireCause(t, err, models.CauseConversion)
	assert.Contains(t, fe.Error(), "4. close")
	assert.Contains(t, fe.Error(), "2024-01-05")
}

func TestGetDailyTimeSeries_HTTPStatus(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})

	var buf bytes.Buffer
	previous := observability.Logger
	observability.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	defer func() { observability.Logger = previous }()

	_, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
	fe := requireCause(t, err, models.CauseHTTPStatus)
	assert.Contains(t, fe.Error(), "503")
	assert.Contains(t, buf.String(), "symbol=IBM")
	assert.Contains(t, buf.String(), "cause=http_status")
}

func TestGetDailyTimeSeries_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	svc := NewAlphaVantageService("test-key", baseURL, 2*time.Second)
	svc.SetBreakerRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	_, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
	requireCause(t, err, models.CauseNetwork)
}

func TestGetDailyTimeSeries_Canceled(t *testing.T) {
	release := make(chan struct{})
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := svc.GetDailyTimeSeries(ctx, "IBM")
	requireCause(t, err, models.CauseCanceled)
}

func TestGetDailyTimeSeries_StalledProviderTripsBreaker(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	registry := NewCircuitBreakerRegistry(CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		MinRequests: 2,
	})
	svc.SetBreakerRegistry(registry)

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := svc.GetDailyTimeSeries(ctx, "IBM")
		cancel()

		fe := requireCause(t, err, models.CauseNetwork)
		assert.True(t, errors.Is(fe, context.DeadlineExceeded))
	}

	status := registry.Status()[BreakerAlphaVantage]
	assert.Equal(t, "open", status.State)

	_, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
	requireCause(t, err, models.CauseUnavailable)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the provider")
}

func TestGetDailyTimeSeries_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc.SetBreakerRegistry(NewCircuitBreakerRegistry(CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		MinRequests: 2,
	}))

	for i := 0; i < 2; i++ {
		_, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
		requireCause(t, err, models.CauseHTTPStatus)
	}

	_, err := svc.GetDailyTimeSeries(context.Background(), "IBM")
	fe := requireCause(t, err, models.CauseUnavailable)
	assert.True(t, strings.Contains(fe.Error(), "circuit breaker open"))
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the provider")
}

func TestGetDailyTimeSeries_ProviderMessagesDoNotTripBreaker(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message": "Invalid API call."}`)
	})
	svc.SetBreakerRegistry(NewCircuitBreakerRegistry(CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		MinRequests: 1,
	}))

	for i := 0; i < 3; i++ {
		_, err := svc.GetDailyTimeSeries(context.Background(), "NOPE")
		requireCause(t, err, models.CauseSymbolNotFound)
	}
}

func TestParseDailyTimeSeries_EmptyObject(t *testing.T) {
	ts, err := ParseDailyTimeSeries("IBM", []byte(`{"Time Series (Daily)": {}}`))
	require.NoError(t, err)
	assert.Empty(t, ts)
}
