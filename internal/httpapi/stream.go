package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcoskids/marcos/internal/logging"
	"github.com/marcoskids/marcos/internal/notify"
)

const streamHeartbeat = 15 * time.Second

// StreamHandler pushes live notifications over server-sent events.
// Clients that reconnect catch up through the notifications endpoint.
type StreamHandler struct {
	bus    *notify.Bus
	buffer int
	log    *logging.Logger
}

func NewStreamHandler(bus *notify.Bus, buffer int, log *logging.Logger) *StreamHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &StreamHandler{bus: bus, buffer: buffer, log: log}
}

// GET /v1/children/:childID/notifications/stream
func (h *StreamHandler) Stream(c *gin.Context) {
	childID := c.Param("childID")
	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "streaming_unsupported", fmt.Errorf("streaming unsupported"))
		return
	}

	events, cancel := h.bus.Subscribe(h.buffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.ChildID != childID {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("marshal notification", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Seq, ev.Kind, data)
			flusher.Flush()
		}
	}
}
