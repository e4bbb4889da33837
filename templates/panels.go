package templates

import "stock-viewer/models"

// PanelsID is the element swapped by fetch responses and state refreshes
const PanelsID = "panels"

func asOf(date string) string {
	return "As of " + date
}

// changeText is the unsigned change and percent; direction is carried by the arrow
func changeText(d models.PriceDelta) string {
	return Money(d.AbsChange()) + " (" + Percent(d.AbsPercent()) + ")"
}
