package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edushelf/campusd/internal/auth"
	"github.com/edushelf/campusd/internal/quiz"
)

// StartAttempt starts or resumes the caller's attempt and returns it together
// with the question list. Correct answers are stripped before encoding.
func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	quizID := chi.URLParam(r, "quizID")

	a, err := h.quizzes.StartAttempt(r.Context(), quizID, id.ProfileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	questions, err := h.quizzes.Questions(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sanitized := make([]quiz.Question, len(questions))
	for i, qq := range questions {
		sanitized[i] = qq.Sanitized()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quiz":      q,
		"attempt":   a,
		"questions": sanitized,
	})
}

// SubmitAttempt grades the submitted answers and finalizes the attempt.
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	attemptID := chi.URLParam(r, "attemptID")

	var req struct {
		Answers []quiz.AnswerInput `json:"answers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.quizzes.Submit(r.Context(), attemptID, id.ProfileID, req.Answers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
