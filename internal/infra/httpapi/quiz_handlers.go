// internal/infra/httpapi/quiz_handlers.go
package httpapi

import (
	"encoding/json"
	"net/http"

	"parish_lms/internal/app"

	"github.com/gorilla/mux"
)

type QuizHandlers struct {
	service *app.QuizService
}

func NewQuizHandlers(service *app.QuizService) *QuizHandlers {
	return &QuizHandlers{service: service}
}

type submitQuizRequest struct {
	ParishID string `json:"parishId"`
	Answers  []int  `json:"answers"`
}

// SubmitQuiz grades a quiz submission and returns the fresh grade plus the
// recomputed completion status.
func (h *QuizHandlers) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	lessonID := mux.Vars(r)["lessonID"]

	var req submitQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), lessonID, req.ParishID, UserID(r.Context()), req.Answers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MarkVideoCompleted records that the learner finished the lesson video.
func (h *QuizHandlers) MarkVideoCompleted(w http.ResponseWriter, r *http.Request) {
	lessonID := mux.Vars(r)["lessonID"]

	if err := h.service.MarkVideoCompleted(r.Context(), lessonID, UserID(r.Context())); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Completion returns the derived lesson-completion view for the learner.
func (h *QuizHandlers) Completion(w http.ResponseWriter, r *http.Request) {
	lessonID := mux.Vars(r)["lessonID"]

	status, err := h.service.Completion(r.Context(), lessonID, UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
