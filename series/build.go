package series

import "stock-viewer/models"

// Build derives everything the loaded screen needs from one provider response.
// Any failure is reported as an empty_series FetchError; nothing partial is returned.
func Build(symbol, rangeLabel string, ts models.TimeSeries) (models.LoadedView, error) {
	latest, err := Latest(ts)
	if err != nil {
		return models.LoadedView{}, models.NewFetchError(models.CauseEmptySeries, symbol, err)
	}

	window := BuildWindow(ts, models.ResolveDays(rangeLabel))

	chart, err := BuildChart(window.Closes, rangeLabel)
	if err != nil {
		return models.LoadedView{}, models.NewFetchError(models.CauseEmptySeries, symbol, err)
	}

	return models.LoadedView{
		Symbol:     symbol,
		RangeLabel: rangeLabel,
		Quote:      latest,
		Delta:      ComputeDelta(latest.Close, window.Closes),
		Series:     window,
		Chart:      chart,
	}, nil
}
