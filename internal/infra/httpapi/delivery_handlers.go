// internal/infra/httpapi/delivery_handlers.go
package httpapi

import (
	"net/http"
	"strconv"

	"parish_lms/internal/app"
)

type DeliveryHandlers struct {
	service *app.DeliveryService
}

func NewDeliveryHandlers(service *app.DeliveryService) *DeliveryHandlers {
	return &DeliveryHandlers{service: service}
}

// RunPending triggers one delivery processing run. Reached only through
// TriggerAuthMiddleware; an optional ?limit=N caps the batch.
func (h *DeliveryHandlers) RunPending(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	result, err := h.service.ProcessPending(r.Context(), limit)
	if err != nil {
		// Infrastructure fault (job store unreachable), not a business failure.
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
