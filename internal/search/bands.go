package search

// PriceBand is one of the preset nightly price ranges offered by the filter panel.
type PriceBand struct {
	Label string
	Min   *float64
	Max   *float64
}

func f64(v float64) *float64 { return &v }

var PriceBands = []PriceBand{
	{Label: "any"},
	{Label: "<500", Max: f64(500)},
	{Label: "500-1000", Min: f64(500), Max: f64(1000)},
	{Label: "1000-2000", Min: f64(1000), Max: f64(2000)},
	{Label: ">2000", Min: f64(2000)},
}

// BandByLabel returns the preset with the given label.
func BandByLabel(label string) (PriceBand, bool) {
	for _, b := range PriceBands {
		if b.Label == label {
			return b, true
		}
	}
	return PriceBand{}, false
}
