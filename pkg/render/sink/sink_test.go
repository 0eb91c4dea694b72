package sink

import (
	"testing"

	"github.com/matzehuels/stackbar/pkg/chart"
)

func testLayout(t *testing.T) *chart.Layout {
	t.Helper()
	records := []chart.Record{
		{
			Name: "Alice", Value: 5, ID: chart.NumericID(1),
			Series: []chart.Entry{
				{Name: "Email", Value: 3, ID: chart.NumericID(11)},
				{Name: "Phone", Value: 2, ID: chart.NumericID(12)},
			},
		},
		{
			Name: "Bartholomew Jones", Value: 1, ID: chart.StringID("b"),
			Series: []chart.Entry{
				{Name: "phone", Value: 1, ID: chart.NumericID(12)},
			},
		},
	}
	l, err := chart.Build(records, chart.Viewport{Width: 960}, chart.Options{Theme: "light"})
	if err != nil {
		t.Fatalf("chart.Build() error: %v", err)
	}
	return l
}
