package series

import (
	"errors"
	"fmt"

	"stock-viewer/models"
)

var errEmptyCloses = errors.New("cannot chart an empty closing-price series")

// ChartTitle is the heading shown above the chart
func ChartTitle(rangeLabel string) string {
	return fmt.Sprintf("Closing Price - %s", rangeLabel)
}

// BuildChart plots closes[i] at x=i with 5% headroom above and below
func BuildChart(closes []float64, rangeLabel string) (models.ChartSpec, error) {
	if len(closes) == 0 {
		return models.ChartSpec{}, errEmptyCloses
	}

	points := make([]models.ChartPoint, len(closes))
	lo, hi := closes[0], closes[0]
	for i, c := range closes {
		points[i] = models.ChartPoint{X: i, Y: c}
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}

	return models.ChartSpec{
		Title:         ChartTitle(rangeLabel),
		Points:        points,
		MinX:          0,
		MaxX:          len(closes) - 1,
		MinY:          lo * 0.95,
		MaxY:          hi * 1.05,
		LabelInterval: max(1, len(closes)/10),
	}, nil
}
