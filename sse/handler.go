package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID string            `json:"client_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ServeSSE streams events to one client until the request ends or the hub
// stops.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, opts ...ClientOption) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived stream; the server's WriteTimeout must not apply.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		hub.log.Debug("could not disable write deadline", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID, opts...)
	if !hub.Register(client) {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	connected, _ := json.Marshal(ConnectedEvent{ClientID: clientID, Metadata: client.Metadata()})
	writeEvent(w, Event{Name: EventConnected, Data: connected})
	flusher.Flush()

	keepAlive := time.NewTicker(hub.KeepAlive())
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) {
	if ev.Name != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", ev.Name)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", ev.Data)
}
