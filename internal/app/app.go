package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"stock-viewer/config"
	"stock-viewer/models"
	"stock-viewer/observability"
	"stock-viewer/series"
	"stock-viewer/services"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FetchRequest is one submission of the search form after normalization
type FetchRequest struct {
	Symbol     string `json:"symbol" validate:"required"`
	RangeLabel string `json:"range"`
}

// NormalizeRequest trims and upper-cases the symbol and defaults the range label
func NormalizeRequest(symbol, rangeLabel string) FetchRequest {
	return FetchRequest{
		Symbol:     strings.ToUpper(strings.TrimSpace(symbol)),
		RangeLabel: models.ResolveLabel(strings.TrimSpace(rangeLabel)),
	}
}

// App struct holds application dependencies and the current view state.
// Its exported methods are bound to the desktop frontend.
type App struct {
	ctx      context.Context
	cfg      *config.Config
	provider services.DailySeriesProvider
	validate *validator.Validate

	// emitMu orders state changes with their listener notifications
	emitMu sync.Mutex

	mu         sync.Mutex
	state      models.ViewState
	generation uint64
	cancel     context.CancelFunc
	listener   func(models.ViewState)
}

// New creates a new App application struct
func New(cfg *config.Config, provider services.DailySeriesProvider) *App {
	return &App{
		ctx:      context.Background(),
		cfg:      cfg,
		provider: provider,
		validate: validator.New(),
		state:    models.IdleState(),
	}
}

// Startup is called when the app starts
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
}

// Shutdown cancels any fetch still in flight
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// SetStateListener registers fn to receive every applied state. The listener
// must not call back into App.
func (a *App) SetStateListener(fn func(models.ViewState)) {
	a.mu.Lock()
	a.listener = fn
	a.mu.Unlock()
}

// State returns the current view state
func (a *App) State() models.ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// TimeRanges returns the selectable ranges in display order
func (a *App) TimeRanges() []models.TimeRange {
	return models.TimeRanges()
}

// FetchStock validates the input, fetches the daily series and returns the
// resulting state. A newer call cancels this one; a superseded call leaves the
// newer state in place and returns it.
func (a *App) FetchStock(symbol, rangeLabel string) models.ViewState {
	req := NormalizeRequest(symbol, rangeLabel)
	fetchID := uuid.NewString()
	logger := observability.WithFetch(fetchID, req.Symbol, req.RangeLabel)
	metrics := observability.GetMetrics()

	ctx, gen, done := a.begin()
	defer done()

	if err := a.validate.Struct(req); err != nil {
		logger.Debug("rejected empty symbol")
		metrics.RecordFetchError(string(models.ErrorValidation))
		return a.finish(gen, models.ValidationErrorState(fetchID))
	}

	metrics.RecordFetchRequest(req.RangeLabel)
	timer := metrics.NewTimer()
	a.apply(gen, models.LoadingState(fetchID, req.Symbol, req.RangeLabel))
	logger.Info("fetching daily time series")

	state := a.load(ctx, fetchID, req)

	if state.Kind == models.ViewError {
		logger.Warn("fetch failed",
			"cause", state.Error.Cause,
			"error", state.Error.Message,
			"duration_ms", timer.Duration().Milliseconds())
		metrics.RecordFetchError(string(state.Error.Cause))
	} else {
		logger.Info("fetch complete",
			"points", state.Loaded.Series.Len(),
			"close", state.Loaded.Quote.Close,
			"duration_ms", timer.Duration().Milliseconds())
		metrics.RecordSeriesPoints(state.Loaded.Series.Len())
	}
	timer.ObserveFetch(string(state.Kind))

	return a.finish(gen, state)
}

func (a *App) load(ctx context.Context, fetchID string, req FetchRequest) models.ViewState {
	if a.provider == nil {
		return models.FetchErrorState(fetchID,
			models.NewFetchError(models.CauseUnavailable, req.Symbol, nil))
	}

	ts, err := a.provider.GetDailyTimeSeries(ctx, req.Symbol)
	if err != nil {
		return models.FetchErrorState(fetchID, err)
	}

	view, err := series.Build(req.Symbol, req.RangeLabel, ts)
	if err != nil {
		return models.FetchErrorState(fetchID, err)
	}
	return models.LoadedState(fetchID, view)
}

// begin cancels the in-flight fetch and starts a new generation
func (a *App) begin() (context.Context, uint64, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation

	ctx, cancel := context.WithTimeout(a.ctx, a.fetchTimeout())
	a.cancel = cancel

	return ctx, gen, func() {
		cancel()
		a.mu.Lock()
		if a.generation == gen {
			a.cancel = nil
		}
		a.mu.Unlock()
	}
}

// finish applies a terminal state, or reports the newer state when superseded
func (a *App) finish(gen uint64, state models.ViewState) models.ViewState {
	if a.apply(gen, state) {
		return state
	}
	observability.GetMetrics().RecordFetchSuperseded()
	observability.Debug("discarding superseded fetch", "fetch_id", state.FetchID)
	return a.State()
}

// apply stores state if gen is still current and notifies the listener
func (a *App) apply(gen uint64, state models.ViewState) bool {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		return false
	}
	a.state = state
	listener := a.listener
	a.mu.Unlock()

	if listener != nil {
		listener(state)
	}
	return true
}

func (a *App) fetchTimeout() time.Duration {
	if a.cfg == nil || a.cfg.Fetch.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.cfg.Fetch.TimeoutSeconds) * time.Second
}
