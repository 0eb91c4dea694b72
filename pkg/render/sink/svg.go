package sink

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/fonts"
)

// DefaultOverlap is how far non-empty bars extend past their end so adjacent
// segments do not show hairline seams.
const DefaultOverlap = 2.0

const (
	tickSize    = 6
	tickPadding = 3
)

const barInteractionCSS = `
    .bar { cursor: pointer; }
    .bar:hover, .row-label:hover { opacity: %s; }
    .row-label { cursor: pointer; }
    #tooltip { pointer-events: none; }
    #tooltip rect { fill: white; stroke: #333; stroke-width: 2; }`

const barInteractionJS = `
    (function () {
      var svg = (document.currentScript && document.currentScript.ownerSVGElement) || document.querySelector('svg');
      var tip = svg.getElementById('tooltip');
      var title = tip.querySelector('.tooltip-title');
      var body = tip.querySelector('.tooltip-body');
      var box = tip.querySelector('rect');
      function point(evt) {
        var p = svg.createSVGPoint();
        p.x = evt.clientX; p.y = evt.clientY;
        return p.matrixTransform(svg.getScreenCTM().inverse());
      }
      function show(el, evt) {
        if (!el.dataset.title) return;
        title.textContent = el.dataset.title;
        body.textContent = el.dataset.label + ': ' + el.dataset.value;
        var w = Math.max(title.getComputedTextLength(), body.getComputedTextLength()) + 10;
        box.setAttribute('width', w);
        move(evt);
        tip.setAttribute('visibility', 'visible');
      }
      function move(evt) {
        var p = point(evt);
        tip.setAttribute('transform', 'translate(' + (p.x + %d) + ',' + (p.y + %d) + ')');
      }
      function hide() { tip.setAttribute('visibility', 'hidden'); }
      function select(el) {
        if (!el.dataset.selection) return;
        var detail = JSON.parse(el.dataset.selection);
        svg.dispatchEvent(new CustomEvent('barSegmentClick', { detail: detail, bubbles: true }));
        if (window.parent && window.parent !== window) {
          window.parent.postMessage({ type: 'barSegmentClick', detail: detail }, '*');
        }
      }
      svg.querySelectorAll('.bar, .row-label').forEach(function (el) {
        el.addEventListener('mouseover', function (evt) { show(el, evt); });
        el.addEventListener('mousemove', move);
        el.addEventListener('mouseout', hide);
        el.addEventListener('click', function () { select(el); });
      });
    })();`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	static     bool
	overlap    float64
	title      string
	fontFamily string
}

// WithStatic drops the grow transition and the interaction script. Use it
// for output that is rasterised or printed.
func WithStatic() SVGOption { return func(r *svgRenderer) { r.static = true } }

// WithOverlap sets the seam overlap in pixels. Negative values are ignored.
func WithOverlap(px float64) SVGOption {
	return func(r *svgRenderer) {
		if px >= 0 {
			r.overlap = px
		}
	}
}

// WithTitle sets the document title.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

func WithFontFamily(f string) SVGOption { return func(r *svgRenderer) { r.fontFamily = f } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{overlap: DefaultOverlap, fontFamily: fonts.FontFamily}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws l as a standalone SVG document.
func RenderSVG(l *chart.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" font-family="%s" overflow="visible">`+"\n",
		num(l.Width), num(l.Height), num(l.Width), num(l.Height), escapeXML(r.fontFamily))
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	if l.Theme != "" {
		fmt.Fprintf(&buf, "  <desc>theme:%s</desc>\n", escapeXML(l.Theme))
	}
	if !r.static {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", fmt.Sprintf(barInteractionCSS, num(chart.HoverOpacity)))
	}

	fmt.Fprintf(&buf, `  <g class="chart" transform="translate(%s,%s)">`+"\n", num(l.OffsetX), num(l.Margins.Top))
	renderXAxis(&buf, l)
	renderBars(&buf, l, &r)
	renderYAxis(&buf, l)
	buf.WriteString("  </g>\n")

	if !r.static {
		renderTooltip(&buf, l)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n",
			fmt.Sprintf(barInteractionJS, chart.TooltipOffsetX, chart.TooltipOffsetY))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderXAxis draws the top axis: ticks above the line and no outer ticks.
func renderXAxis(buf *bytes.Buffer, l *chart.Layout) {
	buf.WriteString(`    <g class="x-axis" fill="none" font-size="10" text-anchor="middle">` + "\n")
	fmt.Fprintf(buf, `      <path class="domain" stroke="currentColor" d="M%s,0H%s"/>`+"\n", num(l.Range[0]), num(l.Range[1]))
	for _, t := range l.Ticks {
		fmt.Fprintf(buf, `      <g class="tick" transform="translate(%s,0)"><line stroke="currentColor" y2="-%d"/><text fill="currentColor" y="-%d">%s</text></g>`+"\n",
			num(t.X), tickSize, tickSize+tickPadding, escapeXML(t.Label))
	}
	buf.WriteString("    </g>\n")
}

func renderBars(buf *bytes.Buffer, l *chart.Layout, r *svgRenderer) {
	buf.WriteString(`    <g class="bars">` + "\n")
	for _, s := range l.Series {
		fmt.Fprintf(buf, `      <g class="series" fill="%s" name="%s">`+"\n", escapeXML(s.Color), escapeXML(s.Key))
		for _, b := range l.Bars {
			if b.Series != s.Index {
				continue
			}
			renderBar(buf, b, r)
		}
		buf.WriteString("      </g>\n")
	}
	buf.WriteString("    </g>\n")
}

func renderBar(buf *bytes.Buffer, b chart.Bar, r *svgRenderer) {
	w := b.DrawWidth(r.overlap)
	width := w
	if !r.static {
		width = 0
	}

	fmt.Fprintf(buf, `        <rect class="bar" x="%s" y="%s" width="%s" height="%s" data-row="%d" data-key="%s"`,
		num(b.X), num(b.Y), num(width), num(b.Height), b.Row, escapeXML(b.Key))
	if b.Tooltip != nil {
		fmt.Fprintf(buf, ` data-title="%s" data-label="%s" data-value="%s"`,
			escapeXML(b.Tooltip.Title), escapeXML(b.Tooltip.Label), escapeXML(b.Tooltip.Value))
	}
	if b.Selection != nil {
		fmt.Fprintf(buf, ` data-selection="%s"`, escapeXML(selectionJSON(*b.Selection)))
	}

	if r.static && b.Tooltip == nil {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteString(">")
	if b.Tooltip != nil {
		fmt.Fprintf(buf, "<title>%s</title>", escapeXML(b.Tooltip.Text()))
	}
	if !r.static && w > 0 {
		sp := chart.EaseSpline
		fmt.Fprintf(buf, `<animate attributeName="width" from="0" to="%s" dur="%dms" fill="freeze" calcMode="spline" keyTimes="0;1" keySplines="%s %s %s %s"/>`,
			num(w), chart.TransitionDuration.Milliseconds(), num(sp[0]), num(sp[1]), num(sp[2]), num(sp[3]))
	}
	buf.WriteString("</rect>\n")
}

// renderYAxis draws the row labels at the left margin.
func renderYAxis(buf *bytes.Buffer, l *chart.Layout) {
	fmt.Fprintf(buf, `    <g class="y-axis" transform="translate(%s,0)" fill="none" font-size="%s" text-anchor="end">`+"\n",
		num(l.Margins.Left), num(l.Label.FontSize))
	bottom := l.Height - l.Margins.Top
	fmt.Fprintf(buf, `      <path class="domain" stroke="currentColor" d="M-%d,%sH0V0H-%d"/>`+"\n", tickSize, num(bottom), tickSize)
	for _, row := range l.Rows {
		fmt.Fprintf(buf, `      <g class="tick row-label" transform="translate(0,%s)" data-row="%d" data-title="%s" data-label="%s" data-value="%s" data-selection="%s">`,
			num(row.Center), row.Index,
			escapeXML(row.Tooltip.Title), escapeXML(row.Tooltip.Label), escapeXML(row.Tooltip.Value),
			escapeXML(selectionJSON(row.Selection)))
		fmt.Fprintf(buf, `<line stroke="currentColor" x2="-%d"/><text fill="currentColor" x="-%d" dy="0.32em">%s`,
			tickSize, tickSize+tickPadding, escapeXML(row.Label))
		if row.Truncated {
			fmt.Fprintf(buf, "<title>%s</title>", escapeXML(row.Name))
		}
		buf.WriteString("</text></g>\n")
	}
	buf.WriteString("    </g>\n")
}

func renderTooltip(buf *bytes.Buffer, l *chart.Layout) {
	fmt.Fprintf(buf, `  <g id="tooltip" visibility="hidden" font-size="%s">`+"\n", num(l.Label.FontSize))
	buf.WriteString(`    <rect x="0" y="0" width="120" height="42" rx="5" ry="5"/>` + "\n")
	buf.WriteString(`    <text class="tooltip-title" x="5" y="17" font-weight="bold"></text>` + "\n")
	buf.WriteString(`    <text class="tooltip-body" x="5" y="35"></text>` + "\n")
	buf.WriteString("  </g>\n")
}

func selectionJSON(s chart.Selection) string {
	b, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// num formats f with at most two decimals.
func num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	r := math.Round(f*100) / 100
	if r == 0 {
		r = 0 // -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
