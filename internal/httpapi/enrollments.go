package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/edushelf/campusd/internal/apperr"
	"github.com/edushelf/campusd/internal/auth"
)

type Enrollment struct {
	ID             string `json:"id"`
	StudentID      string `json:"student_id"`
	CourseID       string `json:"course_id"`
	EnrollmentDate int64  `json:"enrollment_date"`
	Status         string `json:"status"`
}

// EnrollStudent enrolls a student into one of the acting teacher's courses.
// At most one enrollment per (student, course); the table's unique constraint
// backs up the existence check.
func (h *Handler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req struct {
		StudentID string `json:"student_id"`
		CourseID  string `json:"course_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.StudentID == "" || req.CourseID == "" {
		h.writeError(w, r, apperr.Validation("enrollment", "student_id and course_id required"))
		return
	}

	if _, err := h.ownedCourse(r.Context(), req.CourseID, id.ProfileID); err != nil {
		h.writeError(w, r, err)
		return
	}

	var exists bool
	err := h.db.QueryRowContext(r.Context(),
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id=$1 AND course_id=$2)`,
		req.StudentID, req.CourseID).Scan(&exists)
	if err != nil {
		h.writeError(w, r, apperr.Persistence("check enrollment", err))
		return
	}
	if exists {
		h.writeError(w, r, apperr.Conflict("student is already enrolled in this course"))
		return
	}

	e := Enrollment{
		ID:             uuid.New().String(),
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		EnrollmentDate: time.Now().Unix(),
		Status:         "active",
	}
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO enrollments (id, student_id, course_id, enrollment_date, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.StudentID, e.CourseID, e.EnrollmentDate, e.Status, time.Now().Unix())
	if err != nil {
		h.writeError(w, r, apperr.FromUnique(err, "student is already enrolled in this course", "insert enrollment"))
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.accounts.ListStudents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}
