// internal/infra/httpapi/report_handlers.go
package httpapi

import (
	"net/http"

	"parish_lms/internal/app"
	"parish_lms/internal/domain/engagement"
)

type ReportHandlers struct {
	service *app.ReportService
}

func NewReportHandlers(service *app.ReportService) *ReportHandlers {
	return &ReportHandlers{service: service}
}

// EngagementReport serves the filtered engagement report. Bad filters are a
// client error; store failures surface as 502 with no partial data.
func (h *ReportHandlers) EngagementReport(w http.ResponseWriter, r *http.Request) {
	filters, err := engagement.ParseFilters(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Report(r.Context(), filters)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	rows := report.Rows
	if rows == nil {
		rows = []engagement.Row{}
	}
	// Trend inclusion is decided by filter shape, not by whether the series
	// happens to be empty.
	resp := map[string]interface{}{"rows": rows}
	if filters.HasDateFilters() {
		resp["trends"] = report.Trends
	}
	writeJSON(w, http.StatusOK, resp)
}

// EngagementSummary serves the unfiltered merged summary rows.
func (h *ReportHandlers) EngagementSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if rows == nil {
		rows = []engagement.Row{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}
