package pos

import (
	"net/http"
	"strconv"

	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_events"
)

// listEvents handles GET /api/v1/events. Bad limits fall back to the query
// default.
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &list_events.Request{
		EventType:   query.Get("event_type"),
		AggregateID: query.Get("aggregate_id"),
		Status:      query.Get("status"),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			req.Limit = limit
		}
	}

	events, err := h.query.ListEvents.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp := listEventsResponse{
		Success:    true,
		Events:     make([]eventResponse, 0, len(events)),
		TotalCount: len(events),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}
