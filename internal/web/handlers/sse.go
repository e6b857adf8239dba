package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/analysis"
)

// isTerminalEvent returns true for events after which the batch produces no
// further progress.
func isTerminalEvent(eventType string) bool {
	return eventType == "completed" || eventType == "failed"
}

// sendSSEEvent writes one server-sent event and flushes it.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
	flusher.Flush()
}

// streamAnalysisEvents streams orchestrator events until the batch reaches a
// terminal state or the client disconnects. An initial status event carries
// the current progress snapshot so late subscribers catch up immediately.
func streamAnalysisEvents(w http.ResponseWriter, r *http.Request, o *analysis.Orchestrator) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventCh := o.Events.AddListener()
	defer o.Events.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, "status", o.Progress())

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
			if isTerminalEvent(event.Type) {
				return
			}
		}
	}
}
