package series

import "stock-viewer/models"

// ComputeDelta compares current against the second-to-last close.
// With fewer than two closes the previous close is current itself, so the change is 0.
func ComputeDelta(current float64, closes []float64) models.PriceDelta {
	previous := current
	if len(closes) > 1 {
		previous = closes[len(closes)-2]
	}

	change := current - previous
	var percent float64
	if previous != 0 {
		percent = change / previous * 100
	}

	return models.PriceDelta{
		Current:  current,
		Previous: previous,
		Change:   change,
		Percent:  percent,
		Positive: change >= 0,
	}
}
