package models

import "fmt"

// FetchCause classifies why a fetch failed
type FetchCause string

const (
	CauseNetwork        FetchCause = "network"
	CauseHTTPStatus     FetchCause = "http_status"
	CauseDecode         FetchCause = "decode"
	CauseMissingField   FetchCause = "missing_field"
	CauseSymbolNotFound FetchCause = "symbol_not_found"
	CauseConversion     FetchCause = "conversion"
	CauseEmptySeries    FetchCause = "empty_series"
	CauseUnavailable    FetchCause = "unavailable"
	CauseCanceled       FetchCause = "canceled"
)

// FetchError is a failure anywhere between the network call and the transform
type FetchError struct {
	Cause  FetchCause
	Symbol string
	Err    error
}

// NewFetchError wraps err with a cause
func NewFetchError(cause FetchCause, symbol string, err error) *FetchError {
	return &FetchError{Cause: cause, Symbol: symbol, Err: err}
}

// Error returns the raw description of the underlying failure
func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s failed: %s", e.Symbol, e.Cause)
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
