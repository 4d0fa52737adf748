package stream

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/satindergrewal/cadence/internal/player"
)

// View projects a snapshot into the payload a client receives. It runs at
// send time, so it can read state that changes between snapshots.
// A nil View sends the snapshot unchanged.
type View func(player.Snapshot) any

func (v View) encode(s player.Snapshot) ([]byte, error) {
	if v == nil {
		return json.Marshal(s)
	}
	return json.Marshal(v(s))
}

// EventsHandler serves player snapshots as a Server-Sent Events feed.
type EventsHandler struct {
	broadcaster *Broadcaster
	view        View
	log         *zap.Logger
}

// NewEventsHandler creates an SSE handler.
func NewEventsHandler(b *Broadcaster, view View, log *zap.Logger) *EventsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventsHandler{broadcaster: b, view: view, log: log}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	h.log.Info("event listener connected", zap.Int("total", h.broadcaster.ListenerCount()))
	defer h.log.Info("event listener disconnected")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.done:
			return
		case snap := <-listener.C:
			data, err := h.view.encode(snap)
			if err != nil {
				h.log.Error("encode snapshot", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: player\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
