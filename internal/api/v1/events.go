package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vmunix/heroimport/internal/events"
)

const maxPageLimit = 1000

// EventResponse is one persisted event.
type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt string          `json:"occurred_at"`
}

type listEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// streamMessage is the frame pushed to stream clients.
type streamMessage struct {
	Action  string       `json:"action"`
	Payload events.Event `json:"payload"`
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	if limit < 0 || offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit and offset must be non-negative")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	ctx := r.Context()
	var (
		raw   []events.RawEvent
		total int
		err   error
	)
	if since := queryString(r, "since"); since != nil {
		t, perr := time.Parse(time.RFC3339, *since)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be an RFC 3339 timestamp")
			return
		}
		raw, err = s.deps.EventLog.Since(ctx, t)
		total = len(raw)
		raw = raw[min(offset, len(raw)):min(offset+limit, len(raw))]
	} else {
		raw, err = s.deps.EventLog.Recent(ctx, limit, offset)
		if err == nil {
			total, err = s.deps.EventLog.Count(ctx)
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, listEventsResponse{
		Items:  toEventResponses(raw),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// importEvents returns the persisted timeline of one import, oldest first.
func (s *Server) importEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	raw, err := s.deps.EventLog.ForEntity(r.Context(), events.EntityImport, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, listEventsResponse{
		Items: toEventResponses(raw),
		Total: len(raw),
		Limit: len(raw),
	})
}

func toEventResponses(raw []events.RawEvent) []EventResponse {
	out := make([]EventResponse, len(raw))
	for i, e := range raw {
		out[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Payload:    json.RawMessage(e.Payload),
			OccurredAt: e.OccurredAt.Format(time.RFC3339),
		}
	}
	return out
}

// streamEvents pushes bus events to the client as server-sent events until
// the client goes away or the bus closes. With ?import=ID only that import's
// events are sent. Slow clients miss events.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "streaming not supported")
		return
	}

	var ch <-chan events.Event
	if v := queryString(r, "import"); v != nil {
		id, err := strconv.ParseInt(*v, 10, 64)
		if err != nil || id < 1 {
			writeError(w, http.StatusBadRequest, "INVALID_ID", fmt.Sprintf("invalid import id %q", *v))
			return
		}
		ch = s.deps.Bus.SubscribeEntity(events.EntityImport, id, s.cfg.StreamBuffer)
	} else {
		ch = s.deps.Bus.SubscribeAll(s.cfg.StreamBuffer)
	}
	defer s.deps.Bus.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(s.cfg.StreamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(streamMessage{Action: e.EventType(), Payload: e})
			if err != nil {
				s.logger.Warn("failed to encode stream event", "event_type", e.EventType(), "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.EventType(), data)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
