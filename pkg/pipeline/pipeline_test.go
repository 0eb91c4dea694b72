package pipeline

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stackbar/pkg/cache"
	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
	"github.com/matzehuels/stackbar/pkg/fonts"
	"github.com/matzehuels/stackbar/pkg/render/sink"
)

func testRecords() []chart.Record {
	return []chart.Record{
		{Name: "A", Value: 5, ID: chart.NumericID(1), Series: []chart.Entry{
			{Name: "X", Value: 3, ID: chart.NumericID(11)},
			{Name: "Y", Value: 2, ID: chart.NumericID(12)},
		}},
		{Name: "B", Value: 1, ID: chart.NumericID(2), Series: []chart.Entry{
			{Name: "y", Value: 1, ID: chart.NumericID(12)},
		}},
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %f, got %f", DefaultWidth, opts.Width)
	}
	if opts.BarHeight != chart.DefaultBarHeight {
		t.Errorf("BarHeight should be %d, got %f", chart.DefaultBarHeight, opts.BarHeight)
	}
	if opts.Padding != chart.DefaultPadding {
		t.Errorf("Padding should be %f, got %f", chart.DefaultPadding, opts.Padding)
	}
	if opts.Margins == nil || *opts.Margins != chart.DefaultMargins {
		t.Errorf("Margins should be %+v, got %+v", chart.DefaultMargins, opts.Margins)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
	if opts.Measurer != fonts.Default() {
		t.Errorf("Measurer = %T, want the shared font measurer", opts.Measurer)
	}
}

func TestComputeLayoutMeasuresLabelsWithFont(t *testing.T) {
	// Narrow glyphs fit in 80px with real metrics but not with the
	// average-advance estimate.
	const label = "illlllillllillll"
	if w := chart.ApproxMeasurer.MeasureString(label, chart.DefaultLabelFontSize); w <= chart.DefaultLabelMaxWidth {
		t.Fatalf("estimate %.1fpx already fits; pick a narrower label", w)
	}

	records := testRecords()
	records[0].Name = label
	opts := Options{}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}
	l, err := ComputeLayout(context.Background(), records, opts)
	if err != nil {
		t.Fatalf("ComputeLayout() error: %v", err)
	}
	for _, row := range l.Rows {
		if row.Name == label && (row.Truncated || row.Label != label) {
			t.Errorf("row label = %q (truncated %v), want %q intact", row.Label, row.Truncated, label)
		}
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Overlap == nil || *opts.Overlap != sink.DefaultOverlap {
		t.Errorf("Overlap should be %v, got %v", sink.DefaultOverlap, opts.Overlap)
	}
	if opts.Scale != sink.DefaultScale {
		t.Errorf("Scale should be %v, got %v", sink.DefaultScale, opts.Scale)
	}

	zero := 0.0
	opts = Options{Overlap: &zero}
	opts.SetRenderDefaults()
	if *opts.Overlap != 0 {
		t.Errorf("explicit zero overlap replaced with %v", *opts.Overlap)
	}
}

func TestValidateForLayout(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"defaults", Options{}, ""},
		{"negative width", Options{Width: -5}, errors.ErrCodeInvalidViewport},
		{"infinite width", Options{Width: math.Inf(1)}, errors.ErrCodeInvalidViewport},
		{"padding one", Options{Padding: 1}, errors.ErrCodeInvalidViewport},
		{"bad palette", Options{Palette: []string{"#fff", "nope"}}, errors.ErrCodeInvalidPalette},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("ValidateForLayout() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidateForRender(t *testing.T) {
	neg := -1.0
	opts := Options{Overlap: &neg}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative overlap error = %v, want INVALID_INPUT", err)
	}

	opts = Options{Formats: []string{"svg", "gif"}}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif error = %v, want INVALID_FORMAT", err)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Static: true, Title: "t"}
	opts.SetRenderDefaults()

	svg := opts.ArtifactKeyOpts(FormatSVG)
	png := opts.ArtifactKeyOpts(FormatPNG)
	if svg.Scale != 0 {
		t.Errorf("svg key Scale = %v, want 0", svg.Scale)
	}
	if png.Scale != sink.DefaultScale {
		t.Errorf("png key Scale = %v, want %v", png.Scale, sink.DefaultScale)
	}
	if !svg.Static || svg.Title != "t" || svg.Overlap != sink.DefaultOverlap {
		t.Errorf("svg key = %+v", svg)
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(cache.NewMemoryCache(), nil, quietLogger())
	defer runner.Close()

	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	first, err := runner.Execute(ctx, testRecords(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want no hits", first.CacheInfo)
	}
	if first.Stats.Rows != 2 || first.Stats.Categories != 2 || first.Stats.Records != 2 {
		t.Errorf("Stats = %+v, want 2 rows, 2 categories, 2 records", first.Stats)
	}
	if len(first.Artifacts) != 2 {
		t.Fatalf("Artifacts = %d, want 2", len(first.Artifacts))
	}
	if first.LayoutHash == "" {
		t.Error("LayoutHash is empty")
	}

	second, err := runner.Execute(ctx, testRecords(), opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want both hits", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Artifacts, second.Artifacts); diff != "" {
		t.Errorf("cached artifacts differ (-first +second):\n%s", diff)
	}
	if first.LayoutHash != second.LayoutHash {
		t.Error("cached layout hashes differently")
	}
}

func TestRunnerWidthChangesKey(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(cache.NewMemoryCache(), nil, quietLogger())

	if _, _, err := runner.LayoutWithCacheInfo(ctx, testRecords(), Options{Width: 960}); err != nil {
		t.Fatalf("LayoutWithCacheInfo() error: %v", err)
	}
	l, hit, err := runner.LayoutWithCacheInfo(ctx, testRecords(), Options{Width: 480})
	if err != nil {
		t.Fatalf("LayoutWithCacheInfo() error: %v", err)
	}
	if hit {
		t.Error("different width served from cache")
	}
	if l.Width != 480 {
		t.Errorf("Width = %v, want 480", l.Width)
	}
}

func TestRunnerRefresh(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(cache.NewMemoryCache(), nil, quietLogger())

	if _, err := runner.Execute(ctx, testRecords(), Options{}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	res, err := runner.Execute(ctx, testRecords(), Options{Refresh: true})
	if err != nil {
		t.Fatalf("Execute(refresh) error: %v", err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh CacheInfo = %+v, want no hits", res.CacheInfo)
	}
}

func TestRunnerCachedLayoutKeepsNonFiniteValues(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(cache.NewMemoryCache(), nil, quietLogger())
	records := testRecords()
	records[0].Value = chart.NaN()
	records[1].Value = chart.Value(math.Inf(1))

	fresh, hit, err := runner.LayoutWithCacheInfo(ctx, records, Options{})
	if err != nil || hit {
		t.Fatalf("first LayoutWithCacheInfo() = hit %v, err %v", hit, err)
	}
	cached, hit, err := runner.LayoutWithCacheInfo(ctx, records, Options{})
	if err != nil || !hit {
		t.Fatalf("second LayoutWithCacheInfo() = hit %v, err %v", hit, err)
	}
	for i := range fresh.Rows {
		want, got := fresh.Rows[i].Value.String(), cached.Rows[i].Value.String()
		if got != want {
			t.Errorf("row %d (%s) value = %s from cache, want %s", i, fresh.Rows[i].Name, got, want)
		}
	}
}

func TestDecodeCachedLayoutRejectsBareLayout(t *testing.T) {
	if _, err := decodeCachedLayout([]byte(`{"width":960,"rows":[]}`)); err == nil {
		t.Error("decodeCachedLayout() accepted a layout without the cache wrapper")
	}
}

func TestRunnerInvalidSeries(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	records := testRecords()
	records[1].Series = nil

	_, err := runner.Execute(context.Background(), records, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidSeries) {
		t.Errorf("Execute() error = %v, want INVALID_SERIES", err)
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	l, err := chart.Build(testRecords(), chart.Viewport{Width: 960}, chart.Options{})
	if err != nil {
		t.Fatalf("chart.Build() error: %v", err)
	}
	_, err = Render(context.Background(), l, Options{Formats: []string{"bmp"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(bmp) error = %v, want INVALID_FORMAT", err)
	}
}

func TestDatasetHash(t *testing.T) {
	a := testRecords()
	b := testRecords()
	if DatasetHash(a) != DatasetHash(b) {
		t.Error("equal records hash differently")
	}

	b[0].Value = chart.NaN()
	c := testRecords()
	c[0].Value = chart.Value(math.Inf(1))
	if DatasetHash(b) == DatasetHash(c) {
		t.Error("NaN and +Inf values hash the same")
	}
	if DatasetHash(a) == DatasetHash(b) {
		t.Error("changed value did not change the hash")
	}
}
