package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/observability"
)

// SelectionEvent is what hosts receive on a chart's event stream.
type SelectionEvent struct {
	Type      string          `json:"type"`
	ChartID   string          `json:"chart_id"`
	Kind      string          `json:"kind"`
	Selection chart.Selection `json:"detail"`
	At        time.Time       `json:"at"`
}

// EventType is the type of every selection event.
const EventType = "barSegmentClick"

// Hub fans selection events out to the subscribers of each chart. Run owns
// the subscriber map; everything else talks to it through channels.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan SelectionEvent
	counts     chan countRequest
	done       chan struct{}
	logger     *log.Logger
}

type countRequest struct {
	chartID string
	reply   chan int
}

// NewHub returns a hub; call Run to start it.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan SelectionEvent, 256),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
		logger:     logger.WithPrefix("hub"),
	}
}

// Run serves subscriptions until ctx is done, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	rooms := make(map[string]map[*Client]struct{})

	drop := func(c *Client) {
		room, ok := rooms[c.chartID]
		if !ok {
			return
		}
		if _, ok := room[c]; !ok {
			return
		}
		delete(room, c)
		close(c.send)
		if len(room) == 0 {
			delete(rooms, c.chartID)
		}
		h.logger.Debug("subscriber left", "chart", c.chartID, "subscribers", len(room))
		observability.Events().OnSubscribers(ctx, c.chartID, len(room))
	}

	for {
		select {
		case <-ctx.Done():
			for _, room := range rooms {
				for c := range room {
					close(c.send)
				}
			}
			return

		case c := <-h.register:
			room := rooms[c.chartID]
			if room == nil {
				room = make(map[*Client]struct{})
				rooms[c.chartID] = room
			}
			room[c] = struct{}{}
			h.logger.Debug("subscriber joined", "chart", c.chartID, "subscribers", len(room))
			observability.Events().OnSubscribers(ctx, c.chartID, len(room))

		case c := <-h.unregister:
			drop(c)

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("encode selection event", "err", err)
				continue
			}
			for c := range rooms[ev.ChartID] {
				select {
				case c.send <- data:
				default:
					h.logger.Warn("subscriber too slow, disconnecting", "chart", c.chartID)
					drop(c)
				}
			}

		case req := <-h.counts:
			req.reply <- len(rooms[req.chartID])
		}
	}
}

// Publish queues ev for delivery. It reports false when the hub is stopped
// or its queue is full.
func (h *Hub) Publish(ev SelectionEvent) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- ev:
		return true
	case <-h.done:
		return false
	default:
		h.logger.Warn("broadcast queue full, dropping event", "chart", ev.ChartID)
		return false
	}
}

// Subscribers returns the number of clients listening to chartID.
func (h *Hub) Subscribers(chartID string) int {
	req := countRequest{chartID: chartID, reply: make(chan int, 1)}
	select {
	case h.counts <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
