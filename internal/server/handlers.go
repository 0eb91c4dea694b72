package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackbar/pkg/buildinfo"
	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/dataset"
	"github.com/matzehuels/stackbar/pkg/errors"
	"github.com/matzehuels/stackbar/pkg/observability"
	"github.com/matzehuels/stackbar/pkg/pipeline"
	"github.com/matzehuels/stackbar/pkg/render/sink"
	"github.com/matzehuels/stackbar/pkg/session"
	"github.com/matzehuels/stackbar/pkg/widget"
)

// chartRequest is the body of the layout and create-chart endpoints.
type chartRequest struct {
	Records json.RawMessage  `json:"records"`
	Theme   string           `json:"theme,omitempty"`
	Options pipeline.Options `json:"options"`
}

// ChartResponse describes a created chart handle.
type ChartResponse struct {
	ID        string    `json:"id"`
	WidgetURL string    `json:"widget_url"`
	LayoutURL string    `json:"layout_url"`
	EventsURL string    `json:"events_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SelectionResponse acknowledges a reported selection.
type SelectionResponse struct {
	Kind        string `json:"kind"`
	Subscribers int    `json:"subscribers"`
}

func errNoRoute(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// handleLayout computes a layout for records posted in the body, without
// creating a handle.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	records, opts, err := s.decodeChartRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Width, err = parseWidth(r.URL.Query(), opts.Width); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeLayout(w, r, records, opts, "api")
}

func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	records, opts, err := s.decodeChartRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.store.Create(r.Context(), records, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("chart created", "chart", c.ID, "records", len(c.Records), "expires", c.ExpiresAt)
	writeJSON(w, http.StatusCreated, s.chartResponse(r, c))
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleChartLayout answers the widget's layout request for its measured
// width.
func (s *Server) handleChartLayout(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := c.Options
	if opts.Width, err = parseWidth(r.URL.Query(), opts.Width); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeLayout(w, r, c.Records, opts, c.ID)
}

func (s *Server) writeLayout(w http.ResponseWriter, r *http.Request, records []chart.Record, opts pipeline.Options, source string) {
	opts.Logger = s.logger
	l, err := s.runner.Layout(r.Context(), records, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	overlap := sink.DefaultOverlap
	if opts.Overlap != nil {
		overlap = *opts.Overlap
	}
	data, err := sink.RenderJSON(l, sink.WithJSONCompact(), sink.WithJSONSource(source), sink.WithJSONOverlap(overlap))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeRaw(w, http.StatusOK, "application/json", data)
}

// handleSelection validates a selection reported by a widget against the
// chart's records and relays it to the chart's subscribers.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var sel chart.Selection
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&sel); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode selection"))
		return
	}
	kind, err := ResolveSelection(c.Records, sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	observability.Events().OnSelection(r.Context(), c.ID, kind)
	s.hub.Publish(SelectionEvent{
		Type:      EventType,
		ChartID:   c.ID,
		Kind:      kind,
		Selection: sel,
		At:        time.Now().UTC(),
	})
	writeJSON(w, http.StatusAccepted, SelectionResponse{Kind: kind, Subscribers: s.hub.Subscribers(c.ID)})
}

// ResolveSelection checks that sel names one record and at most one of its
// series entries, and returns the selection kind.
func ResolveSelection(records []chart.Record, sel chart.Selection) (string, error) {
	if len(sel.CallTypeIDs) != 1 {
		return "", errors.New(errors.ErrCodeInvalidInput, "selection must name exactly one record, got %d", len(sel.CallTypeIDs))
	}
	if len(sel.AgentIDs) > 1 {
		return "", errors.New(errors.ErrCodeInvalidInput, "selection names %d series entries, want at most one", len(sel.AgentIDs))
	}

	recID := sel.CallTypeIDs[0]
	for _, rec := range records {
		if rec.ID != recID {
			continue
		}
		if len(sel.AgentIDs) == 0 {
			return widget.KindRow, nil
		}
		for _, e := range rec.Series {
			if e.ID == sel.AgentIDs[0] {
				return widget.KindSegment, nil
			}
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "selection does not match any bar of the chart")
}

// handleEvents upgrades to a websocket that streams the chart's selection
// events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		s.logger.Debug("websocket upgrade failed", "chart", c.ID, "err", err)
		return
	}

	client := newClient(s.hub, conn, c.ID, s.logger)
	if !s.hub.join(client) {
		_ = conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

// checkOrigin applies the CORS origin list to websocket upgrades.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.cfg.CORS.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	s.logger.Warn("websocket origin rejected", "origin", origin)
	return false
}

func (s *Server) decodeChartRequest(w http.ResponseWriter, r *http.Request) ([]chart.Record, pipeline.Options, error) {
	var req chartRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read body")
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode body")
	}
	if len(req.Records) == 0 {
		return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidDataset, `body has no "records" field`)
	}

	ds, err := dataset.ReadJSON(bytes.NewReader(req.Records))
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	if err := ds.Validate(); err != nil {
		return nil, pipeline.Options{}, err
	}
	if req.Options.Theme == "" {
		req.Options.Theme = req.Theme
	}
	return ds.Records, req.Options, nil
}

// parseWidth reads the width query parameter, falling back to def.
func parseWidth(q url.Values, def float64) (float64, error) {
	raw := q.Get("width")
	if raw == "" {
		return def, nil
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidViewport, "width %q is not a number", raw)
	}
	if err := errors.ValidateViewport(w, chart.DefaultBarHeight, chart.DefaultPadding); err != nil {
		return 0, err
	}
	return w, nil
}

func (s *Server) chartResponse(r *http.Request, c *session.Chart) ChartResponse {
	base := s.cfg.Server.PublicURL
	wsBase := base
	if base == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
		wsBase = base
	}
	wsBase = strings.Replace(strings.Replace(wsBase, "https://", "wss://", 1), "http://", "ws://", 1)

	return ChartResponse{
		ID:        c.ID,
		WidgetURL: base + "/widget/" + c.ID,
		LayoutURL: base + "/api/v1/charts/" + c.ID + "/layout",
		EventsURL: wsBase + "/api/v1/charts/" + c.ID + "/events",
		ExpiresAt: c.ExpiresAt,
	}
}
