package services

import (
	"context"

	"stock-viewer/models"
)

// DailySeriesProvider fetches the full daily OHLC history for a symbol
type DailySeriesProvider interface {
	GetDailyTimeSeries(ctx context.Context, symbol string) (models.TimeSeries, error)
}

// Compile-time interface verification
var _ DailySeriesProvider = (*AlphaVantageService)(nil)
