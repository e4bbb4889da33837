package models

// DailyBar is one calendar day's OHLC prices
type DailyBar struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// TimeSeries maps an ISO date (YYYY-MM-DD) to its bar. Iteration order is undefined.
type TimeSeries map[string]DailyBar

// SeriesWindow holds index-aligned OHLC sequences in ascending date order
type SeriesWindow struct {
	Dates  []string  `json:"dates"`
	Opens  []float64 `json:"opens"`
	Highs  []float64 `json:"highs"`
	Lows   []float64 `json:"lows"`
	Closes []float64 `json:"closes"`
}

// Len returns the number of points in the window
func (w SeriesWindow) Len() int {
	return len(w.Closes)
}

// PriceDelta is the day-over-day change of the closing price
type PriceDelta struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   float64 `json:"change"`
	Percent  float64 `json:"percent"`
	Positive bool    `json:"positive"`
}

// AbsChange returns the displayed magnitude of the change
func (d PriceDelta) AbsChange() float64 {
	if d.Change < 0 {
		return -d.Change
	}
	return d.Change
}

// AbsPercent returns the displayed magnitude of the percent change
func (d PriceDelta) AbsPercent() float64 {
	if d.Percent < 0 {
		return -d.Percent
	}
	return d.Percent
}

// ChartPoint is one plotted point: X is the index into the closes sequence
type ChartPoint struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// ChartSpec describes the closing-price line chart
type ChartSpec struct {
	Title         string       `json:"title"`
	Points        []ChartPoint `json:"points"`
	MinX          int          `json:"min_x"`
	MaxX          int          `json:"max_x"`
	MinY          float64      `json:"min_y"`
	MaxY          float64      `json:"max_y"`
	LabelInterval int          `json:"label_interval"`
}
