package models

// DefaultRangeLabel is the range selected when none is given
const DefaultRangeLabel = "30 days"

// DefaultRangeDays is the lookback used for unknown labels
const DefaultRangeDays = 30

// TimeRange is a user-facing lookback window
type TimeRange struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// timeRanges is ordered as presented in the range selector
var timeRanges = []TimeRange{
	{Label: "1 week", Days: 7},
	{Label: "2 weeks", Days: 14},
	{Label: "30 days", Days: 30},
	{Label: "90 days", Days: 90},
	{Label: "1 year", Days: 365},
	{Label: "5 years", Days: 1825},
}

// TimeRanges returns the selectable ranges in display order
func TimeRanges() []TimeRange {
	out := make([]TimeRange, len(timeRanges))
	copy(out, timeRanges)
	return out
}

// ResolveDays maps a range label to its day count. Unknown labels fall back to 30.
func ResolveDays(label string) int {
	for _, r := range timeRanges {
		if r.Label == label {
			return r.Days
		}
	}
	return DefaultRangeDays
}

// ResolveLabel returns the label to display for a selection, defaulting an empty one
func ResolveLabel(label string) string {
	if label == "" {
		return DefaultRangeLabel
	}
	return label
}
