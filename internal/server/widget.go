package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
	"github.com/matzehuels/stackbar/pkg/fonts"
)

//go:embed assets/widget.html
var assets embed.FS

var widgetTemplate = template.Must(template.ParseFS(assets, "assets/widget.html"))

// widgetPage is the data of the widget template.
type widgetPage struct {
	ChartID       string
	LayoutURL     string
	SelectionsURL string
	FontFamily    string
	Settings      widgetSettings
}

// widgetSettings is handed to the page script as JSON.
type widgetSettings struct {
	SettleMS     int64      `json:"settleMs"`
	DebounceMS   int64      `json:"debounceMs"`
	TransitionMS int64      `json:"transitionMs"`
	Ease         [4]float64 `json:"ease"`
	TooltipX     int        `json:"tooltipX"`
	TooltipY     int        `json:"tooltipY"`
	HoverOpacity float64    `json:"hoverOpacity"`
	EventType    string     `json:"eventType"`
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page := widgetPage{
		ChartID:       c.ID,
		LayoutURL:     "/api/v1/charts/" + c.ID + "/layout",
		SelectionsURL: "/api/v1/charts/" + c.ID + "/selections",
		FontFamily:    fonts.FontFamily,
		Settings: widgetSettings{
			SettleMS:     chart.SettleDelay.Milliseconds(),
			DebounceMS:   chart.ResizeDebounce.Milliseconds(),
			TransitionMS: chart.TransitionDuration.Milliseconds(),
			Ease:         chart.EaseSpline,
			TooltipX:     chart.TooltipOffsetX,
			TooltipY:     chart.TooltipOffsetY,
			HoverOpacity: chart.HoverOpacity,
			EventType:    EventType,
		},
	}

	var buf bytes.Buffer
	if err := widgetTemplate.Execute(&buf, page); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render widget page"))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeRaw(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
