package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edushelf/campusd/internal/auth"
	"github.com/edushelf/campusd/internal/quiz"
)

// CreateQuiz creates a quiz plus its question list in one request. Questions
// arrive as a typed list, not indexed form fields.
func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	courseID := chi.URLParam(r, "courseID")

	if _, err := h.ownedCourse(r.Context(), courseID, id.ProfileID); err != nil {
		h.writeError(w, r, err)
		return
	}

	var req struct {
		Title        string               `json:"title"`
		Description  string               `json:"description"`
		TimeLimitMin int                  `json:"time_limit_min"`
		DueDate      int64                `json:"due_date"`
		Questions    []quiz.QuestionInput `json:"questions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	q, err := h.quizzes.CreateQuiz(r.Context(), quiz.Quiz{
		CourseID:     courseID,
		Title:        req.Title,
		Description:  req.Description,
		TimeLimitMin: req.TimeLimitMin,
		DueDate:      req.DueDate,
	}, req.Questions)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}
