package templates

import (
	"strconv"
	"strings"

	"stock-viewer/models"
)

// chart canvas in SVG user units
const (
	chartWidth    = 800.0
	chartHeight   = 320.0
	chartPadLeft  = 64.0
	chartPadBot   = 36.0
	chartPadTop   = 12.0
	chartPadRight = 16.0
	yTicks        = 5
)

type plotArea struct {
	spec models.ChartSpec
}

func (a plotArea) x(v int) float64 {
	w := chartWidth - chartPadLeft - chartPadRight
	if a.spec.MaxX <= a.spec.MinX {
		return chartPadLeft + w/2
	}
	return chartPadLeft + float64(v-a.spec.MinX)/float64(a.spec.MaxX-a.spec.MinX)*w
}

func (a plotArea) y(v float64) float64 {
	h := chartHeight - chartPadTop - chartPadBot
	if a.spec.MaxY <= a.spec.MinY {
		return chartPadTop + h/2
	}
	return chartPadTop + (a.spec.MaxY-v)/(a.spec.MaxY-a.spec.MinY)*h
}

func (a plotArea) bottom() float64 {
	return chartHeight - chartPadBot
}

type chartSegment struct {
	X1, Y1, X2, Y2 string
}

// chartMark is a positioned label or data point with its text
type chartMark struct {
	X, Y, Text string
}

// chartView is a ChartSpec projected onto the SVG canvas, formatted for markup
type chartView struct {
	ViewBox string
	Axes    []chartSegment
	YLabels []chartMark
	Area    string
	Line    string
	XLabels []chartMark
	Dots    []chartMark
}

func (c chartView) HasPoints() bool {
	return len(c.Dots) > 0
}

func newChartView(spec models.ChartSpec, dates []string) chartView {
	area := plotArea{spec: spec}
	bottom := coord(area.bottom())
	c := chartView{
		ViewBox: "0 0 " + coord(chartWidth) + " " + coord(chartHeight),
		Axes: []chartSegment{
			{X1: coord(chartPadLeft), Y1: coord(chartPadTop), X2: coord(chartPadLeft), Y2: bottom},
			{X1: coord(chartPadLeft), Y1: bottom, X2: coord(chartWidth - chartPadRight), Y2: bottom},
		},
	}

	for i := 0; i <= yTicks; i++ {
		v := spec.MinY + (spec.MaxY-spec.MinY)*float64(i)/yTicks
		c.YLabels = append(c.YLabels, chartMark{X: coord(chartPadLeft - 6), Y: coord(area.y(v) + 4), Text: Money(v)})
	}

	if len(spec.Points) == 0 {
		return c
	}

	line := make([]string, 0, len(spec.Points))
	for _, pt := range spec.Points {
		line = append(line, coord(area.x(pt.X))+","+coord(area.y(pt.Y)))
	}
	first, last := spec.Points[0], spec.Points[len(spec.Points)-1]
	fill := append([]string{coord(area.x(first.X)) + "," + bottom}, line...)
	fill = append(fill, coord(area.x(last.X))+","+bottom)
	c.Line = strings.Join(line, " ")
	c.Area = strings.Join(fill, " ")

	interval := spec.LabelInterval
	if interval < 1 {
		interval = 1
	}
	for i := 0; i < len(spec.Points); i += interval {
		label := strconv.Itoa(spec.Points[i].X)
		if i < len(dates) {
			label = dates[i]
		}
		c.XLabels = append(c.XLabels, chartMark{X: coord(area.x(spec.Points[i].X)), Y: coord(area.bottom() + 20), Text: label})
	}

	for i, pt := range spec.Points {
		title := Money(pt.Y)
		if i < len(dates) {
			title = dates[i] + " " + title
		}
		c.Dots = append(c.Dots, chartMark{X: coord(area.x(pt.X)), Y: coord(area.y(pt.Y)), Text: title})
	}
	return c
}
