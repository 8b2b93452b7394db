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
	"github.com/edushelf/campusd/internal/quiz"
)

type Course struct {
	ID           string `json:"id"`
	CourseCode   string `json:"course_code"`
	CourseName   string `json:"course_name"`
	Credits      int    `json:"credits"`
	Department   string `json:"department"`
	InstructorID string `json:"instructor_id"`
	Description  string `json:"description"`
	CreatedAt    int64  `json:"created_at"`

	// student view only
	Grade  *string `json:"grade,omitempty"`
	Status string  `json:"status,omitempty"`
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req struct {
		CourseCode  string `json:"course_code"`
		CourseName  string `json:"course_name"`
		Credits     int    `json:"credits"`
		Department  string `json:"department"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.CourseCode) == "" {
		h.writeError(w, r, apperr.Validation("course_code", "required"))
		return
	}
	if strings.TrimSpace(req.CourseName) == "" {
		h.writeError(w, r, apperr.Validation("course_name", "required"))
		return
	}
	if req.Credits <= 0 {
		h.writeError(w, r, apperr.Validation("credits", "must be positive"))
		return
	}

	c := Course{
		ID:           uuid.New().String(),
		CourseCode:   req.CourseCode,
		CourseName:   req.CourseName,
		Credits:      req.Credits,
		Department:   req.Department,
		InstructorID: id.ProfileID,
		Description:  req.Description,
		CreatedAt:    time.Now().Unix(),
	}
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO courses (id, course_code, course_name, credits, department, instructor_id, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.CourseCode, c.CourseName, c.Credits, c.Department, c.InstructorID, c.Description, c.CreatedAt)
	if err != nil {
		h.writeError(w, r, apperr.Persistence("insert course", err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var (
		rows *sql.Rows
		err  error
	)
	if id.Role == "teacher" {
		rows, err = h.db.QueryContext(r.Context(), `
			SELECT id, course_code, course_name, credits, department, instructor_id, description, created_at
			  FROM courses WHERE instructor_id=$1 ORDER BY created_at DESC`, id.ProfileID)
	} else {
		rows, err = h.db.QueryContext(r.Context(), `
			SELECT c.id, c.course_code, c.course_name, c.credits, c.department, c.instructor_id, c.description, c.created_at,
			       e.grade, e.status
			  FROM courses c
			  JOIN enrollments e ON c.id = e.course_id
			 WHERE e.student_id=$1 ORDER BY c.created_at DESC`, id.ProfileID)
	}
	if err != nil {
		h.writeError(w, r, apperr.Persistence("list courses", err))
		return
	}
	defer rows.Close()

	out := []Course{}
	for rows.Next() {
		var c Course
		if id.Role == "teacher" {
			err = rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Credits, &c.Department, &c.InstructorID, &c.Description, &c.CreatedAt)
		} else {
			err = rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Credits, &c.Department, &c.InstructorID, &c.Description, &c.CreatedAt,
				&c.Grade, &c.Status)
		}
		if err != nil {
			h.writeError(w, r, apperr.Persistence("scan course", err))
			return
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CourseDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	courseID := chi.URLParam(r, "courseID")

	var (
		course Course
		err    error
	)
	if id.Role == "teacher" {
		course, err = h.ownedCourse(r.Context(), courseID, id.ProfileID)
	} else {
		course, err = h.enrolledCourse(r.Context(), courseID, id.ProfileID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	content, err := h.listContent(r.Context(), courseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quizzes, err := h.listQuizzes(r.Context(), courseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	assignments, err := h.listAssignments(r.Context(), courseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := map[string]interface{}{
		"course":      course,
		"content":     content,
		"quizzes":     quizzes,
		"assignments": assignments,
	}

	if id.Role == "teacher" {
		students, err := h.listEnrolledStudents(r.Context(), courseID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp["students"] = students
	} else {
		// latest attempt per quiz so the student sees what is open vs done
		attempts := map[string]*quiz.Attempt{}
		for _, q := range quizzes {
			a, err := h.quizzes.LatestAttempt(r.Context(), q.ID, id.ProfileID)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			attempts[q.ID] = a
		}
		resp["attempts"] = attempts

		subs, err := h.listOwnSubmissions(r.Context(), courseID, id.ProfileID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp["submissions"] = subs
	}

	writeJSON(w, http.StatusOK, resp)
}

// ownedCourse fetches a course only when the teacher owns it; missing and
// not-owned are indistinguishable.
func (h *Handler) ownedCourse(ctx context.Context, courseID, teacherID string) (Course, error) {
	var c Course
	err := h.db.QueryRowContext(ctx, `
		SELECT id, course_code, course_name, credits, department, instructor_id, description, created_at
		  FROM courses WHERE id=$1 AND instructor_id=$2`, courseID, teacherID).
		Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Credits, &c.Department, &c.InstructorID, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, apperr.NotFound("course not found or access denied")
	}
	if err != nil {
		return Course{}, apperr.Persistence("fetch course", err)
	}
	return c, nil
}

func (h *Handler) enrolledCourse(ctx context.Context, courseID, studentID string) (Course, error) {
	var c Course
	err := h.db.QueryRowContext(ctx, `
		SELECT c.id, c.course_code, c.course_name, c.credits, c.department, c.instructor_id, c.description, c.created_at,
		       e.grade, e.status
		  FROM courses c
		  JOIN enrollments e ON c.id = e.course_id
		 WHERE c.id=$1 AND e.student_id=$2`, courseID, studentID).
		Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Credits, &c.Department, &c.InstructorID, &c.Description, &c.CreatedAt,
			&c.Grade, &c.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, apperr.NotFound("course not found or access denied")
	}
	if err != nil {
		return Course{}, apperr.Persistence("fetch course", err)
	}
	return c, nil
}

type enrolledStudent struct {
	ID        string  `json:"id"`
	StudentNo string  `json:"student_no"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Grade     *string `json:"grade,omitempty"`
	Status    string  `json:"status"`
}

func (h *Handler) listEnrolledStudents(ctx context.Context, courseID string) ([]enrolledStudent, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT s.id, s.student_no, s.first_name, s.last_name, e.grade, e.status
		  FROM students s
		  JOIN enrollments e ON s.id = e.student_id
		 WHERE e.course_id=$1
		 ORDER BY s.last_name, s.first_name`, courseID)
	if err != nil {
		return nil, apperr.Persistence("list enrolled students", err)
	}
	defer rows.Close()

	out := []enrolledStudent{}
	for rows.Next() {
		var st enrolledStudent
		if err := rows.Scan(&st.ID, &st.StudentNo, &st.FirstName, &st.LastName, &st.Grade, &st.Status); err != nil {
			return nil, apperr.Persistence("scan enrolled student", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (h *Handler) listQuizzes(ctx context.Context, courseID string) ([]quiz.Quiz, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, course_id, title, description, time_limit_min, total_marks, due_date, created_at
		  FROM quizzes WHERE course_id=$1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, apperr.Persistence("list quizzes", err)
	}
	defer rows.Close()

	out := []quiz.Quiz{}
	for rows.Next() {
		var q quiz.Quiz
		if err := rows.Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.TimeLimitMin, &q.TotalMarks, &q.DueDate, &q.CreatedAt); err != nil {
			return nil, apperr.Persistence("scan quiz", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
