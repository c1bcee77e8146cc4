// internal/infra/httpapi/server.go
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the HTTP surface: learner routes behind the identity proxy
// header, report routes, and the token-guarded internal delivery trigger.
func NewRouter(
	quiz *QuizHandlers,
	reports *ReportHandlers,
	deliveries *DeliveryHandlers,
	triggerSecret string,
	logger *logrus.Logger,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))

	learner := r.PathPrefix("/api/lessons").Subrouter()
	learner.Use(IdentityMiddleware)
	learner.HandleFunc("/{lessonID}/quiz", quiz.SubmitQuiz).Methods(http.MethodPost)
	learner.HandleFunc("/{lessonID}/video-complete", quiz.MarkVideoCompleted).Methods(http.MethodPost)
	learner.HandleFunc("/{lessonID}/completion", quiz.Completion).Methods(http.MethodGet)

	r.HandleFunc("/api/reports/engagement", reports.EngagementReport).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/engagement/summary", reports.EngagementSummary).Methods(http.MethodGet)

	internal := r.PathPrefix("/internal").Subrouter()
	internal.Use(TriggerAuthMiddleware(triggerSecret))
	internal.HandleFunc("/delivery/run", deliveries.RunPending).Methods(http.MethodPost)

	return r
}
