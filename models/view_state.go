package models

import "errors"

// ValidationMessage is shown when the symbol field is empty
const ValidationMessage = "Please enter a stock symbol"

// FetchErrorTitle heads the banner for provider and transform failures
const FetchErrorTitle = "Error Fetching Data"

// ViewKind discriminates ViewState
type ViewKind string

const (
	ViewIdle    ViewKind = "idle"
	ViewLoading ViewKind = "loading"
	ViewError   ViewKind = "error"
	ViewLoaded  ViewKind = "loaded"
)

// ErrorKind separates local validation failures from fetch failures
type ErrorKind string

const (
	ErrorValidation ErrorKind = "validation"
	ErrorFetch      ErrorKind = "fetch"
)

// ViewState is the single source of truth for what the screen shows.
// Exactly one payload matching Kind is set; use the constructors.
type ViewState struct {
	Kind    ViewKind     `json:"kind"`
	FetchID string       `json:"fetch_id,omitempty"`
	Loading *LoadingView `json:"loading,omitempty"`
	Error   *ErrorView   `json:"error,omitempty"`
	Loaded  *LoadedView  `json:"loaded,omitempty"`
}

// LoadingView describes an in-flight fetch
type LoadingView struct {
	Symbol     string `json:"symbol"`
	RangeLabel string `json:"range_label"`
}

// ErrorView is the error banner content
type ErrorView struct {
	Kind    ErrorKind  `json:"kind"`
	Cause   FetchCause `json:"cause,omitempty"`
	Title   string     `json:"title,omitempty"`
	Message string     `json:"message"`
}

// LoadedView is everything the summary and chart panels render
type LoadedView struct {
	Symbol     string       `json:"symbol"`
	RangeLabel string       `json:"range_label"`
	Quote      DailyBar     `json:"quote"`
	Delta      PriceDelta   `json:"delta"`
	Series     SeriesWindow `json:"series"`
	Chart      ChartSpec    `json:"chart"`
}

// Panels is the visibility of the four screen regions
type Panels struct {
	Error   bool `json:"error"`
	Summary bool `json:"summary"`
	Chart   bool `json:"chart"`
	Legacy  bool `json:"legacy"`
}

// IdleState is the initial screen
func IdleState() ViewState {
	return ViewState{Kind: ViewIdle}
}

// LoadingState marks a fetch in flight
func LoadingState(fetchID, symbol, rangeLabel string) ViewState {
	return ViewState{
		Kind:    ViewLoading,
		FetchID: fetchID,
		Loading: &LoadingView{Symbol: symbol, RangeLabel: rangeLabel},
	}
}

// ValidationErrorState is shown for an empty symbol
func ValidationErrorState(fetchID string) ViewState {
	return ViewState{
		Kind:    ViewError,
		FetchID: fetchID,
		Error:   &ErrorView{Kind: ErrorValidation, Message: ValidationMessage},
	}
}

// FetchErrorState carries the raw failure description and its cause
func FetchErrorState(fetchID string, err error) ViewState {
	cause := CauseNetwork
	var fe *FetchError
	if errors.As(err, &fe) {
		cause = fe.Cause
	}
	return ViewState{
		Kind:    ViewError,
		FetchID: fetchID,
		Error: &ErrorView{
			Kind:    ErrorFetch,
			Cause:   cause,
			Title:   FetchErrorTitle,
			Message: err.Error(),
		},
	}
}

// LoadedState renders the summary and chart
func LoadedState(fetchID string, view LoadedView) ViewState {
	return ViewState{Kind: ViewLoaded, FetchID: fetchID, Loaded: &view}
}

// Panels derives panel visibility from Kind. The loading indicator lives in the
// chart region, so Loading shows the chart panel only.
func (s ViewState) Panels() Panels {
	switch s.Kind {
	case ViewLoading:
		return Panels{Chart: true}
	case ViewError:
		return Panels{Error: true}
	case ViewLoaded:
		return Panels{Summary: true, Chart: true}
	default:
		return Panels{}
	}
}

// Valid reports whether the payloads match Kind
func (s ViewState) Valid() bool {
	switch s.Kind {
	case ViewIdle:
		return s.Loading == nil && s.Error == nil && s.Loaded == nil
	case ViewLoading:
		return s.Loading != nil && s.Error == nil && s.Loaded == nil
	case ViewError:
		return s.Error != nil && s.Loading == nil && s.Loaded == nil
	case ViewLoaded:
		return s.Loaded != nil && s.Loading == nil && s.Error == nil
	default:
		return false
	}
}
