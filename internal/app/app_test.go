package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stock-viewer/config"
	"stock-viewer/models"
)

// fakeProvider stands in for the Alpha Vantage client
type fakeProvider struct {
	calls   atomic.Int32
	fetchFn func(ctx context.Context, symbol string) (models.TimeSeries, error)
}

func (f *fakeProvider) GetDailyTimeSeries(ctx context.Context, symbol string) (models.TimeSeries, error) {
	f.calls.Add(1)
	return f.fetchFn(ctx, symbol)
}

// dailySeries builds n consecutive days ending 2024-03-29 with close = 100+i
func dailySeries(n int) models.TimeSeries {
	end := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
	ts := make(models.TimeSeries, n)
	for i := 0; i < n; i++ {
		date := end.AddDate(0, 0, i-n+1).Format("2006-01-02")
		c := 100 + float64(i)
		ts[date] = models.DailyBar{Date: date, Open: c - 1, High: c + 1, Low: c - 2, Close: c}
	}
	return ts
}

func seriesProvider(ts models.TimeSeries) *fakeProvider {
	return &fakeProvider{fetchFn: func(ctx context.Context, symbol string) (models.TimeSeries, error) {
		return ts, nil
	}}
}

// testApp creates an App with test config for testing
func testApp(p *fakeProvider) *App {
	a := New(config.NewTestConfig(), p)
	a.Startup(context.Background())
	return a
}

func TestNormalizeRequest(t *testing.T) {
	tests := []struct {
		symbol, label string
		want          FetchRequest
	}{
		{"aapl", "", FetchRequest{Symbol: "AAPL", RangeLabel: "30 days"}},
		{"  msft ", "1 year", FetchRequest{Symbol: "MSFT", RangeLabel: "1 year"}},
		{"   ", "5 years", FetchRequest{Symbol: "", RangeLabel: "5 years"}},
		{"ibm", "forever", FetchRequest{Symbol: "IBM", RangeLabel: "forever"}},
	}

	for _, tt := range tests {
		if got := NormalizeRequest(tt.symbol, tt.label); got != tt.want {
			t.Errorf("NormalizeRequest(%q, %q) = %+v, want %+v", tt.symbol, tt.label, got, tt.want)
		}
	}
}

func TestNew_StartsIdle(t *testing.T) {
	a := testApp(seriesProvider(dailySeries(5)))

	if state := a.State(); state.Kind != models.ViewIdle || !state.Valid() {
		t.Errorf("expected valid idle state, got %+v", state)
	}
	if n := len(a.TimeRanges()); n != 6 {
		t.Errorf("expected 6 time ranges, got %d", n)
	}
}

func TestFetchStock_EmptySymbol(t *testing.T) {
	p := seriesProvider(dailySeries(5))
	a := testApp(p)

	for _, symbol := range []string{"", "   ", "\t"} {
		state := a.FetchStock(symbol, "1 week")

		if state.Kind != models.ViewError || state.Error.Kind != models.ErrorValidation {
			t.Fatalf("FetchStock(%q): expected validation error, got %+v", symbol, state)
		}
		if state.Error.Message != "Please enter a stock symbol" {
			t.Errorf("unexpected message %q", state.Error.Message)
		}
	}

	if p.calls.Load() != 0 {
		t.Errorf("validation failure must not reach the provider, got %d calls", p.calls.Load())
	}
}

func TestFetchStock_Loaded(t *testing.T) {
	var gotSymbol string
	p := &fakeProvider{fetchFn: func(ctx context.Context, symbol string) (models.TimeSeries, error) {
		gotSymbol = symbol
		return dailySeries(35), nil
	}}
	a := testApp(p)

	state := a.FetchStock(" ibm ", "")

	if gotSymbol != "IBM" {
		t.Errorf("provider got %q, want IBM", gotSymbol)
	}
	if state.Kind != models.ViewLoaded || !state.Valid() {
		t.Fatalf("expected loaded state, got %+v", state)
	}
	view := state.Loaded
	if view.RangeLabel != "30 days" {
		t.Errorf("expected default range label, got %q", view.RangeLabel)
	}
	if view.Series.Len() != 30 {
		t.Errorf("expected 30 points, got %d", view.Series.Len())
	}
	if view.Quote.Date != "2024-03-29" || view.Quote.Close != 134 {
		t.Errorf("unexpected latest quote %+v", view.Quote)
	}
	if view.Chart.Title != "Closing Price - 30 days" {
		t.Errorf("unexpected chart title %q", view.Chart.Title)
	}
	if state.FetchID == "" {
		t.Error("expected a fetch ID")
	}
	if a.State().FetchID != state.FetchID {
		t.Error("returned state should be the current state")
	}
}

func TestFetchStock_ProviderError(t *testing.T) {
	p := &fakeProvider{fetchFn: func(ctx context.Context, symbol string) (models.TimeSeries, error) {
		return nil, models.NewFetchError(models.CauseMissingField, symbol,
			errors.New(`response has no "Time Series (Daily)"`))
	}}
	a := testApp(p)

	state := a.FetchStock("XXXX", "90 days")

	if state.Kind != models.ViewError || !state.Valid() {
		t.Fatalf("expected error state, got %+v", state)
	}
	if state.Error.Kind != models.ErrorFetch || state.Error.Cause != models.CauseMissingField {
		t.Errorf("unexpected error payload %+v", state.Error)
	}
	if state.Error.Title != "Error Fetching Data" {
		t.Errorf("unexpected title %q", state.Error.Title)
	}
	if state.Error.Message != `response has no "Time Series (Daily)"` {
		t.Errorf("expected raw message, got %q", state.Error.Message)
	}
}

func TestFetchStock_EmptySeries(t *testing.T) {
	a := testApp(seriesProvider(models.TimeSeries{}))

	state := a.FetchStock("IBM", "1 week")

	if state.Kind != models.ViewError || state.Error.Cause != models.CauseEmptySeries {
		t.Fatalf("expected empty_series error, got %+v", state)
	}
}

func TestFetchStock_LoadedThenError(t *testing.T) {
	fail := false
	p := &fakeProvider{fetchFn: func(ctx context.Context, symbol string) (models.TimeSeries, error) {
		if fail {
			return nil, models.NewFetchError(models.CauseNetwork, symbol, errors.New("connection refused"))
		}
		return dailySeries(10), nil
	}}
	a := testApp(p)

	if state := a.FetchStock("IBM", "1 week"); state.Kind != models.ViewLoaded {
		t.Fatalf("expected loaded, got %s", state.Kind)
	}

	fail = true
	state := a.FetchStock("IBM", "1 week")

	if state.Loaded != nil {
		t.Error("error state must not carry the previous loaded view")
	}
	if p := state.Panels(); p.Summary || p.Chart || !p.Error {
		t.Errorf("expected only the error panel, got %+v", p)
	}
}

func TestFetchStock_ListenerSeesLoadingFirst(t *testing.T) {
	a := testApp(seriesProvider(dailySeries(10)))

	var kinds []models.ViewKind
	a.SetStateListener(func(s models.ViewState) {
		kinds = append(kinds, s.Kind)
	})

	a.FetchStock("IBM", "2 weeks")

	if len(kinds) != 2 || kinds[0] != models.ViewLoading || kinds[1] != models.ViewLoaded {
		t.Errorf("expected [loading loaded], got %v", kinds)
	}
}

func TestFetchStock_ValidationSkipsLoading(t *testing.T) {
	a := testApp(seriesProvider(dailySeries(10)))

	var kinds []models.ViewKind
	a.SetStateListener(func(s models.ViewState) {
		kinds = append(kinds, s.Kind)
	})

	a.FetchStock("", "2 weeks")

	if len(kinds) != 1 || kinds[0] != models.ViewError {
		t.Errorf("expected [error], got %v", kinds)
	}
}

// slowProvider blocks SLOW until its context ends and answers anything else at once
func slowProvider(started chan<- struct{}) *fakeProvider {
	return &fakeProvider{fetchFn: func(ctx context.Context, symbol string) (models.TimeSeries, error) {
		if symbol != "SLOW" {
			return dailySeries(10), nil
		}
		close(started)
		<-ctx.Done()
		return nil, models.NewFetchError(models.CauseCanceled, symbol, ctx.Err())
	}}
}

func TestFetchStock_SupersededDoesNotOverwrite(t *testing.T) {
	started := make(chan struct{})
	a := testApp(slowProvider(started))

	var wg sync.WaitGroup
	var slowResult models.ViewState
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowResult = a.FetchStock("SLOW", "1 week")
	}()

	<-started
	fast := a.FetchStock("FAST", "1 week")
	wg.Wait()

	if fast.Kind != models.ViewLoaded || fast.Loaded.Symbol != "FAST" {
		t.Fatalf("expected FAST loaded, got %+v", fast)
	}
	if current := a.State(); current.FetchID != fast.FetchID {
		t.Errorf("superseded fetch overwrote state: %+v", current)
	}
	if slowResult.FetchID != fast.FetchID {
		t.Errorf("superseded call should report the newer state, got %+v", slowResult)
	}
}

func TestApp_Shutdown(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels in-flight fetch", func(t *testing.T) {
		started := make(chan struct{})
		a := testApp(slowProvider(started))

		result := make(chan models.ViewState, 1)
		go func() { result <- a.FetchStock("SLOW", "1 week") }()

		<-started
		a.Shutdown(ctx)

		select {
		case state := <-result:
			if state.Kind != models.ViewError || state.Error.Cause != models.CauseCanceled {
				t.Errorf("expected canceled error, got %+v", state)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("fetch was not cancelled by Shutdown")
		}
	})

	t.Run("idle", func(t *testing.T) {
		a := testApp(seriesProvider(dailySeries(1)))
		a.Shutdown(ctx) // Should not panic
	})
}

func TestFetchStock_NilProvider(t *testing.T) {
	a := New(config.NewTestConfig(), nil)

	state := a.FetchStock("IBM", "1 week")

	if state.Kind != models.ViewError || state.Error.Cause != models.CauseUnavailable {
		t.Errorf("expected unavailable error, got %+v", state)
	}
}
