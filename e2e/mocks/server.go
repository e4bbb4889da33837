// Package mocks provides an HTTP mock of the Alpha Vantage API used in E2E tests.
package mocks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHistory is the number of days generated for symbols without a fixture.
const DefaultHistory = 100

// referenceDate is the newest bar of generated series.
var referenceDate = time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)

// MockServer serves configurable TIME_SERIES_DAILY responses.
type MockServer struct {
	mu     sync.RWMutex
	server *httptest.Server

	// Response configurations, keyed by upper-case symbol
	series   map[string][]Bar
	failures map[string]Failure
	delay    time.Duration

	// Request tracking for assertions
	requestLog []RequestLog
}

// RequestLog records incoming requests for test assertions.
type RequestLog struct {
	Method   string
	Path     string
	Function string
	Symbol   string
	APIKey   string
}

// NewMockServer creates a new mock server with default responses.
func NewMockServer() *MockServer {
	m := &MockServer{
		series:     make(map[string][]Bar),
		failures:   make(map[string]Failure),
		requestLog: make([]RequestLog, 0),
	}
	m.server = httptest.NewServer(m)
	return m
}

// URL returns the mock server's base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	m.server.Close()
}

// ServeHTTP implements http.Handler for the provider's /query endpoint.
func (m *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entry := RequestLog{
		Method:   r.Method,
		Path:     r.URL.Path,
		Function: q.Get("function"),
		Symbol:   q.Get("symbol"),
		APIKey:   q.Get("apikey"),
	}

	m.mu.Lock()
	m.requestLog = append(m.requestLog, entry)
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if r.URL.Path != "/query" || entry.Function != "TIME_SERIES_DAILY" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	m.handleDaily(w, strings.ToUpper(entry.Symbol))
}

func (m *MockServer) handleDaily(w http.ResponseWriter, symbol string) {
	m.mu.RLock()
	failure, failing := m.failures[symbol]
	bars, ok := m.series[symbol]
	m.mu.RUnlock()

	if failing {
		writeFailure(w, failure)
		return
	}
	if !ok {
		bars = GenerateBars(DefaultHistory, seedPrice(symbol))
	}

	payload := dailyPayload{
		MetaData: map[string]string{
			"1. Information":    "Daily Prices (open, high, low, close) and Volumes",
			"2. Symbol":         symbol,
			"3. Last Refreshed": latestDate(bars),
			"4. Output Size":    "Compact",
			"5. Time Zone":      "US/Eastern",
		},
		TimeSeries: make(map[string]barPayload, len(bars)),
	}
	for _, b := range bars {
		payload.TimeSeries[b.Date] = barPayload{
			Open:   price(b.Open),
			High:   price(b.High),
			Low:    price(b.Low),
			Close:  price(b.Close),
			Volume: strconv.FormatInt(b.Volume, 10),
		}
	}

	writeJSON(w, payload)
}

func writeFailure(w http.ResponseWriter, f Failure) {
	switch {
	case f.Status != 0:
		w.WriteHeader(f.Status)
	case f.RawBody != "":
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, f.RawBody)
	case f.ErrorMessage != "":
		writeJSON(w, map[string]string{"Error Message": f.ErrorMessage})
	default:
		writeJSON(w, map[string]string{"Note": f.Note})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// GetRequestLog returns all logged requests for assertions.
func (m *MockServer) GetRequestLog() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog{}, m.requestLog...)
}

// ClearRequestLog clears the request log.
func (m *MockServer) ClearRequestLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLog = make([]RequestLog, 0)
}

// SetSeries configures the bars returned for symbol.
func (m *MockServer) SetSeries(symbol string, bars []Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[strings.ToUpper(symbol)] = bars
	delete(m.failures, strings.ToUpper(symbol))
}

// SetFailure makes every request for symbol fail as described.
func (m *MockServer) SetFailure(symbol string, f Failure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[strings.ToUpper(symbol)] = f
}

// SetDelay holds every response for d, or until the client gives up.
func (m *MockServer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Reset restores default responses and clears the request log.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = make(map[string][]Bar)
	m.failures = make(map[string]Failure)
	m.delay = 0
	m.requestLog = make([]RequestLog, 0)
}

// GenerateBars builds n consecutive calendar days ending at the reference date.
// Closes rise by one cent per day from start so ordering is easy to assert.
func GenerateBars(n int, start float64) []Bar {
	bars := make([]Bar, n)
	for i := 0; i < n; i++ {
		c := start + float64(i)*0.01
		bars[i] = Bar{
			Date:   referenceDate.AddDate(0, 0, i-n+1).Format("2006-01-02"),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: int64(1_000_000 + i*1000),
		}
	}
	return bars
}

// seedPrice derives a stable starting price from the symbol.
func seedPrice(symbol string) float64 {
	sum := 0
	for _, r := range symbol {
		sum += int(r)
	}
	return float64(50 + sum%400)
}

func latestDate(bars []Bar) string {
	latest := ""
	for _, b := range bars {
		if b.Date > latest {
			latest = b.Date
		}
	}
	return latest
}

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}
