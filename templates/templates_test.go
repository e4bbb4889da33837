package templates

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stock-viewer/models"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func loadedView(change float64) models.LoadedView {
	closes := []float64{100, 100 + change}
	return models.LoadedView{
		Symbol:     "IBM",
		RangeLabel: "1 week",
		Quote:      models.DailyBar{Date: "2024-01-05", Open: 99.5, High: 101.25, Low: 98, Close: closes[1]},
		Delta: models.PriceDelta{
			Current:  closes[1],
			Previous: closes[0],
			Change:   change,
			Percent:  change,
			Positive: change >= 0,
		},
		Series: models.SeriesWindow{
			Dates:  []string{"2024-01-04", "2024-01-05"},
			Closes: closes,
		},
		Chart: models.ChartSpec{
			Title:         "Closing Price - 1 week",
			Points:        []models.ChartPoint{{X: 0, Y: closes[0]}, {X: 1, Y: closes[1]}},
			MinX:          0,
			MaxX:          1,
			MinY:          95,
			MaxY:          110,
			LabelInterval: 1,
		},
	}
}

// sectionHidden reports whether the section with id carries the hidden attribute
func sectionHidden(t *testing.T, html, id string) bool {
	t.Helper()
	start := strings.Index(html, `id="`+id+`"`)
	require.GreaterOrEqual(t, start, 0, "section %s not rendered", id)
	end := strings.Index(html[start:], ">")
	return strings.Contains(html[start:start+end], " hidden")
}

func TestMoneyAndPercent(t *testing.T) {
	assert.Equal(t, "$160.86", Money(160.86))
	assert.Equal(t, "$2.00", Money(2))
	assert.Equal(t, "$0.10", Money(0.1))
	assert.Equal(t, "1.25%", Percent(1.25))
	assert.Equal(t, "0.00%", Percent(0))
}

func TestPanels_Visibility(t *testing.T) {
	tests := []struct {
		name    string
		state   models.ViewState
		visible map[string]bool
	}{
		{"idle", models.IdleState(), map[string]bool{}},
		{"loading", models.LoadingState("id", "IBM", "1 week"), map[string]bool{"chart-panel": true}},
		{"validation", models.ValidationErrorState("id"), map[string]bool{"error-panel": true}},
		{"loaded", models.LoadedState("id", loadedView(2)), map[string]bool{"summary-panel": true, "chart-panel": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, Panels(tt.state))
			for _, id := range []string{"error-panel", "summary-panel", "chart-panel", "legacy-panel"} {
				assert.Equal(t, !tt.visible[id], sectionHidden(t, html, id), "panel %s", id)
			}
		})
	}
}

func TestPanels_ValidationMessage(t *testing.T) {
	html := render(t, Panels(models.ValidationErrorState("id")))

	assert.Contains(t, html, "Please enter a stock symbol")
	assert.NotContains(t, html, "Error Fetching Data")
}

func TestPanels_FetchErrorEscapesMessage(t *testing.T) {
	err := models.NewFetchError(models.CauseSymbolNotFound, "X", errors.New(`bad <symbol> & "quote"`))
	html := render(t, Panels(models.FetchErrorState("id", err)))

	assert.Contains(t, html, "Error Fetching Data")
	assert.Contains(t, html, "bad &lt;symbol&gt; &amp; &#34;quote&#34;")
	assert.NotContains(t, html, "<symbol>")
}

func TestPanels_LoadedThenErrorLeavesNoResidue(t *testing.T) {
	loaded := render(t, Panels(models.LoadedState("a", loadedView(2))))
	require.Contains(t, loaded, "As of 2024-01-05")

	failed := render(t, Panels(models.FetchErrorState("b",
		models.NewFetchError(models.CauseNetwork, "IBM", errors.New("connection refused")))))

	assert.NotContains(t, failed, "As of")
	assert.NotContains(t, failed, "<svg")
	assert.True(t, sectionHidden(t, failed, "summary-panel"))
	assert.True(t, sectionHidden(t, failed, "chart-panel"))
	assert.False(t, sectionHidden(t, failed, "error-panel"))
}

func TestPanels_Idempotent(t *testing.T) {
	state := models.LoadedState("a", loadedView(-3))
	assert.Equal(t, render(t, Panels(state)), render(t, Panels(state)))
}

func TestSummaryPanel(t *testing.T) {
	t.Run("positive change", func(t *testing.T) {
		view := loadedView(2)
		html := render(t, SummaryPanel(&view, true))

		assert.Contains(t, html, "IBM")
		assert.Contains(t, html, "As of 2024-01-05")
		assert.Contains(t, html, "$102.00")
		assert.Contains(t, html, `class="change up"`)
		assert.Contains(t, html, "$2.00 (2.00%)")
		for _, label := range []string{"Open", "High", "Low", "Close"} {
			assert.Contains(t, html, label)
		}
		assert.Contains(t, html, "$99.50")
		assert.Contains(t, html, "$101.25")
		assert.Contains(t, html, "$98.00")
	})

	t.Run("negative change shows magnitude", func(t *testing.T) {
		view := loadedView(-3)
		html := render(t, SummaryPanel(&view, true))

		assert.Contains(t, html, `class="change down"`)
		assert.Contains(t, html, "$3.00 (3.00%)")
		assert.NotContains(t, html, "$-3.00")
	})

	t.Run("hidden renders no content", func(t *testing.T) {
		view := loadedView(2)
		html := render(t, SummaryPanel(&view, false))
		assert.NotContains(t, html, "IBM")
	})
}

func TestChartPanel(t *testing.T) {
	t.Run("loading shows indicator", func(t *testing.T) {
		html := render(t, ChartPanel(models.LoadingState("id", "IBM", "1 week"), true))
		assert.Contains(t, html, "Loading Stock Data...")
		assert.NotContains(t, html, "<svg")
	})

	t.Run("loaded shows chart with title", func(t *testing.T) {
		html := render(t, ChartPanel(models.LoadedState("id", loadedView(2)), true))
		assert.Contains(t, html, "Closing Price - 1 week")
		assert.Contains(t, html, "<polyline")
		assert.NotContains(t, html, "Loading Stock Data")
	})
}

func TestLineChart_Labels(t *testing.T) {
	points := make([]models.ChartPoint, 25)
	dates := make([]string, 25)
	for i := range points {
		points[i] = models.ChartPoint{X: i, Y: float64(100 + i)}
		dates[i] = "d" + string(rune('A'+i))
	}
	spec := models.ChartSpec{Title: "t", Points: points, MinX: 0, MaxX: 24, MinY: 95, MaxY: 130, LabelInterval: 2}

	html := render(t, LineChart(spec, dates))

	assert.Equal(t, 13, strings.Count(html, `class="x-label"`))
	assert.Equal(t, 25, strings.Count(html, `class="point"`))
	assert.Contains(t, html, ">dA<")
	assert.Contains(t, html, ">dY<")
	assert.NotContains(t, html, ">dB<")
}

func TestLineChart_SinglePoint(t *testing.T) {
	spec := models.ChartSpec{Title: "t", Points: []models.ChartPoint{{X: 0, Y: 50}}, MaxX: 0, MinY: 47.5, MaxY: 52.5, LabelInterval: 1}

	html := render(t, LineChart(spec, []string{"2024-01-05"}))

	assert.Contains(t, html, "<polyline")
	assert.Equal(t, 1, strings.Count(html, `class="x-label"`))
}

func TestIndex(t *testing.T) {
	html := render(t, Index(models.IdleState(), models.TimeRanges()))

	assert.Contains(t, html, "<title>Stock Viewer</title>")
	assert.Contains(t, html, `placeholder="AAPL, GOOGL, MSFT"`)
	assert.Contains(t, html, "Get Stock Data")
	assert.Contains(t, html, `hx-post="/api/fetch"`)
	assert.Contains(t, html, `hx-sync="this:replace"`)
	assert.Equal(t, 6, strings.Count(html, "<option "))
	assert.Contains(t, html, `<option value="30 days" selected>`)
	assert.Contains(t, html, `"view:state"`)
}

func TestIndex_LoadingTemplate(t *testing.T) {
	html := render(t, Index(models.LoadedState("id", loadedView(1)), models.TimeRanges()))

	open := `<template id="` + LoadingTemplateID + `">`
	start := strings.Index(html, open)
	require.GreaterOrEqual(t, start, 0, "loading template missing")
	end := strings.Index(html[start:], "</template>")
	require.Greater(t, end, 0)
	loading := html[start+len(open) : start+end]

	assert.Contains(t, loading, `data-kind="loading"`)
	assert.Contains(t, loading, "Loading Stock Data...")
	assert.False(t, sectionHidden(t, loading, "chart-panel"))
	assert.True(t, sectionHidden(t, loading, "summary-panel"))
	assert.True(t, sectionHidden(t, loading, "error-panel"))
	assert.NotContains(t, loading, "<svg")

	// the live panels come first so the swap target is the rendered state
	assert.Less(t, strings.Index(html, `data-kind="loaded"`), start)
	assert.Contains(t, html, "htmx:beforeRequest")
	assert.Contains(t, html, `getElementById("`+LoadingTemplateID+`")`)
}

func TestIndex_KeepsSelectedRange(t *testing.T) {
	html := render(t, Index(models.LoadedState("id", loadedView(1)), models.TimeRanges()))

	assert.Contains(t, html, `<option value="1 week" selected>`)
	assert.NotContains(t, html, `<option value="30 days" selected>`)
}
