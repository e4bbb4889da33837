// Package series turns a provider time series into the windowed sequences,
// latest quote, price delta and chart geometry the screen renders.
package series

import (
	"errors"
	"sort"

	"stock-viewer/models"
)

// ErrNoData is wrapped when the provider returned no bars at all
var ErrNoData = errors.New("no price data returned for symbol")

// sortedDatesDesc returns the series keys newest first
func sortedDatesDesc(ts models.TimeSeries) []string {
	dates := make([]string, 0, len(ts))
	for date := range ts {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// BuildWindow keeps the newest `days` bars and returns them oldest first.
// The window is shorter than days when the provider has less history.
func BuildWindow(ts models.TimeSeries, days int) models.SeriesWindow {
	dates := sortedDatesDesc(ts)
	if days < 0 {
		days = 0
	}
	if len(dates) > days {
		dates = dates[:days]
	}

	n := len(dates)
	w := models.SeriesWindow{
		Dates:  make([]string, 0, n),
		Opens:  make([]float64, 0, n),
		Highs:  make([]float64, 0, n),
		Lows:   make([]float64, 0, n),
		Closes: make([]float64, 0, n),
	}
	for i := n - 1; i >= 0; i-- {
		bar := ts[dates[i]]
		w.Dates = append(w.Dates, dates[i])
		w.Opens = append(w.Opens, bar.Open)
		w.Highs = append(w.Highs, bar.High)
		w.Lows = append(w.Lows, bar.Low)
		w.Closes = append(w.Closes, bar.Close)
	}
	return w
}

// Latest returns the bar with the greatest date key
func Latest(ts models.TimeSeries) (models.DailyBar, error) {
	dates := sortedDatesDesc(ts)
	if len(dates) == 0 {
		return models.DailyBar{}, ErrNoData
	}
	bar := ts[dates[0]]
	bar.Date = dates[0]
	return bar, nil
}
