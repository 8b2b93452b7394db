package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edushelf/campusd/internal/apperr"
	"github.com/edushelf/campusd/internal/auth"
	"github.com/edushelf/campusd/internal/storage"
)

type Assignment struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     int64  `json:"due_date"`
	TotalMarks  int    `json:"total_marks"`
	CreatedAt   int64  `json:"created_at"`
}

type AssignmentSubmission struct {
	ID           string  `json:"id"`
	AssignmentID string  `json:"assignment_id"`
	StudentID    string  `json:"student_id"`
	FilePath     string  `json:"file_path"`
	SubmittedAt  int64   `json:"submitted_at"`
	Grade        *string `json:"grade,omitempty"`
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	courseID := chi.URLParam(r, "courseID")

	if _, err := h.ownedCourse(r.Context(), courseID, id.ProfileID); err != nil {
		h.writeError(w, r, err)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     int64  `json:"due_date"`
		TotalMarks  int    `json:"total_marks"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.writeError(w, r, apperr.Validation("title", "required"))
		return
	}
	if req.TotalMarks <= 0 {
		h.writeError(w, r, apperr.Validation("total_marks", "must be positive"))
		return
	}

	a := Assignment{
		ID:          uuid.New().String(),
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		TotalMarks:  req.TotalMarks,
		CreatedAt:   time.Now().Unix(),
	}
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO assignments (id, course_id, title, description, due_date, total_marks, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.CourseID, a.Title, a.Description, a.DueDate, a.TotalMarks, a.CreatedAt)
	if err != nil {
		h.writeError(w, r, apperr.Persistence("insert assignment", err))
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// SubmitAssignment stores the uploaded file and records the submission. One
// submission per (assignment, student).
func (h *Handler) SubmitAssignment(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	assignmentID := chi.URLParam(r, "assignmentID")

	var courseID string
	err := h.db.QueryRowContext(r.Context(),
		`SELECT course_id FROM assignments WHERE id=$1`, assignmentID).Scan(&courseID)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, r, apperr.NotFound("assignment not found or access denied"))
		return
	}
	if err != nil {
		h.writeError(w, r, apperr.Persistence("fetch assignment", err))
		return
	}
	if _, err := h.enrolledCourse(r.Context(), courseID, id.ProfileID); err != nil {
		h.writeError(w, r, apperr.NotFound("assignment not found or access denied"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, r, apperr.Validation("body", "multipart form required"))
		return
	}
	f, fh, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, apperr.Validation("file", "required"))
		return
	}
	defer f.Close()

	key := storage.CourseKey(courseID, fh.Filename)
	stored, err := h.blobs.Put(key, f)
	if err != nil {
		h.writeError(w, r, apperr.Persistence("store file", err))
		return
	}

	sub := AssignmentSubmission{
		ID:           uuid.New().String(),
		AssignmentID: assignmentID,
		StudentID:    id.ProfileID,
		FilePath:     stored,
		SubmittedAt:  time.Now().Unix(),
	}
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO assignment_submissions (id, assignment_id, student_id, file_path, submitted_at)
		VALUES ($1,$2,$3,$4,$5)`,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.FilePath, sub.SubmittedAt)
	if err != nil {
		h.writeError(w, r, apperr.FromUnique(err, "assignment already submitted", "insert submission"))
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) listAssignments(ctx context.Context, courseID string) ([]Assignment, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, course_id, title, description, due_date, total_marks, created_at
		  FROM assignments WHERE course_id=$1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, apperr.Persistence("list assignments", err)
	}
	defer rows.Close()

	out := []Assignment{}
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate, &a.TotalMarks, &a.CreatedAt); err != nil {
			return nil, apperr.Persistence("scan assignment", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// listOwnSubmissions maps assignment id -> the student's submission for the
// course detail view.
func (h *Handler) listOwnSubmissions(ctx context.Context, courseID, studentID string) (map[string]AssignmentSubmission, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT sub.id, sub.assignment_id, sub.student_id, sub.file_path, sub.submitted_at, sub.grade
		  FROM assignment_submissions sub
		  JOIN assignments a ON sub.assignment_id = a.id
		 WHERE a.course_id=$1 AND sub.student_id=$2`, courseID, studentID)
	if err != nil {
		return nil, apperr.Persistence("list submissions", err)
	}
	defer rows.Close()

	out := map[string]AssignmentSubmission{}
	for rows.Next() {
		var s AssignmentSubmission
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FilePath, &s.SubmittedAt, &s.Grade); err != nil {
			return nil, apperr.Persistence("scan submission", err)
		}
		out[s.AssignmentID] = s
	}
	return out, rows.Err()
}
