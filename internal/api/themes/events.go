package themes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/events"
	"github.com/codr1/Sitecraft/internal/request"
)

const eventBufferSize = 16

// /api/v1/themes/events?project_id=
//
// Streams hub events as server-sent events. With project_id set, project
// scoped events for other projects are skipped. Slow clients drop events
// rather than stall publishers.
func HandleThemeEvents(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if hub == nil {
		logger.Error().Msg("Event hub not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	projectID, err := request.ProjectIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stream := make(chan events.Event, eventBufferSize)
	unsubscribe := hub.Subscribe(func(event events.Event) {
		if !wantsEvent(projectID, event) {
			return
		}
		select {
		case stream <- event:
		default:
			logger.Warn().Str("event_type", string(event.Type)).Msg("Dropping event for slow stream client")
		}
	})
	defer unsubscribe()

	// The server write timeout would otherwise cut the stream.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug().Err(err).Msg("Could not clear write deadline for event stream")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	logger.Debug().Msg("Theme event stream opened")
	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Msg("Theme event stream closed")
			return
		case event := <-stream:
			if err := writeEvent(w, event); err != nil {
				logger.Warn().Err(err).Msg("Failed to write theme event")
				return
			}
			flusher.Flush()
		}
	}
}

func wantsEvent(projectID *int64, event events.Event) bool {
	if projectID == nil || event.ProjectID == nil {
		return true
	}
	return *event.ProjectID == *projectID
}

func writeEvent(w http.ResponseWriter, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, payload)
	return err
}
