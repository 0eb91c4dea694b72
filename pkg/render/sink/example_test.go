package sink_test

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/render/sink"
)

func ExampleRenderSVG() {
	records := []chart.Record{{
		Name: "A", Value: 2, ID: chart.NumericID(1),
		Series: []chart.Entry{{Name: "X", Value: 2, ID: chart.NumericID(7)}},
	}}
	l, err := chart.Build(records, chart.Viewport{Width: 400}, chart.Options{})
	if err != nil {
		panic(err)
	}

	svg := sink.RenderSVG(l, sink.WithStatic())
	fmt.Println(bytes.HasPrefix(svg, []byte("<svg")))
	fmt.Println(bytes.Count(svg, []byte(`class="bar"`)))
	// Output:
	// true
	// 1
}
