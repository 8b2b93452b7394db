package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/edushelf/campusd/internal/apperr"
	"github.com/edushelf/campusd/internal/auth"
	"github.com/edushelf/campusd/internal/quiz"
)

type teacherCourse struct {
	Course
	StudentCount int `json:"student_count"`
}

type recentEnrollment struct {
	StudentName    string `json:"student_name"`
	CourseCode     string `json:"course_code"`
	EnrollmentDate int64  `json:"enrollment_date"`
}

type upcomingItem struct {
	ID         string `json:"id"`
	CourseCode string `json:"course_code"`
	Title      string `json:"title"`
	DueDate    int64  `json:"due_date"`
}

// Dashboard returns a role-shaped landing payload: teachers see their
// courses with headcounts and recent enrollments, students see enrolled
// courses plus upcoming work and finished quiz attempts.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	if id.Role == "teacher" {
		h.teacherDashboard(w, r, id)
		return
	}
	h.studentDashboard(w, r, id)
}

func (h *Handler) teacherDashboard(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()

	rows, err := h.db.QueryContext(ctx, `
		SELECT c.id, c.course_code, c.course_name, c.credits, c.department, c.instructor_id,
		       c.description, c.created_at,
		       (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS student_count
		  FROM courses c
		 WHERE c.instructor_id=$1
		 ORDER BY c.created_at DESC`, id.ProfileID)
	if err != nil {
		h.writeError(w, r, apperr.Persistence("list courses", err))
		return
	}
	defer rows.Close()

	courses := []teacherCourse{}
	for rows.Next() {
		var c teacherCourse
		if err := rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Credits, &c.Department,
			&c.InstructorID, &c.Description, &c.CreatedAt, &c.StudentCount); err != nil {
			h.writeError(w, r, apperr.Persistence("scan course", err))
			return
		}
		courses = append(courses, c)
	}

	recent, err := h.recentEnrollments(ctx, id.ProfileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"role":               "teacher",
		"courses":            courses,
		"recent_enrollments": recent,
	})
}

func (h *Handler) recentEnrollments(ctx context.Context, teacherID string) ([]recentEnrollment, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT s.first_name || ' ' || s.last_name, c.course_code, e.enrollment_date
		  FROM enrollments e
		  JOIN courses c ON e.course_id = c.id
		  JOIN students s ON e.student_id = s.id
		 WHERE c.instructor_id=$1
		 ORDER BY e.created_at DESC
		 LIMIT 5`, teacherID)
	if err != nil {
		return nil, apperr.Persistence("list recent enrollments", err)
	}
	defer rows.Close()

	out := []recentEnrollment{}
	for rows.Next() {
		var e recentEnrollment
		if err := rows.Scan(&e.StudentName, &e.CourseCode, &e.EnrollmentDate); err != nil {
			return nil, apperr.Persistence("scan enrollment", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (h *Handler) studentDashboard(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	now := time.Now().Unix()

	rows, err := h.db.QueryContext(ctx, `
		SELECT c.id, c.course_code, c.course_name, c.credits, c.department, c.instructor_id,
		       c.description, c.created_at, e.grade, e.status
		  FROM courses c
		  JOIN enrollments e ON e.course_id = c.id
		 WHERE e.student_id=$1
		 ORDER BY c.course_code`, id.ProfileID)
	if err != nil {
		h.writeError(w, r, apperr.Persistence("list courses", err))
		return
	}
	defer rows.Close()

	courses := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Credits, &c.Department,
			&c.InstructorID, &c.Description, &c.CreatedAt, &c.Grade, &c.Status); err != nil {
			h.writeError(w, r, apperr.Persistence("scan course", err))
			return
		}
		courses = append(courses, c)
	}

	assignments, err := h.upcomingWork(ctx, id.ProfileID, now, `
		SELECT a.id, c.course_code, a.title, a.due_date
		  FROM assignments a
		  JOIN courses c ON a.course_id = c.id
		  JOIN enrollments e ON e.course_id = c.id
		 WHERE e.student_id=$1 AND a.due_date > $2
		 ORDER BY a.due_date
		 LIMIT 5`)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	quizzes, err := h.upcomingWork(ctx, id.ProfileID, now, `
		SELECT q.id, c.course_code, q.title, q.due_date
		  FROM quizzes q
		  JOIN courses c ON q.course_id = c.id
		  JOIN enrollments e ON e.course_id = c.id
		 WHERE e.student_id=$1 AND q.due_date > $2
		 ORDER BY q.due_date
		 LIMIT 5`)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	attempts, err := h.submittedAttempts(ctx, id.ProfileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"role":                 "student",
		"courses":              courses,
		"upcoming_assignments": assignments,
		"upcoming_quizzes":     quizzes,
		"quiz_attempts":        attempts,
	})
}

func (h *Handler) upcomingWork(ctx context.Context, studentID string, now int64, query string) ([]upcomingItem, error) {
	rows, err := h.db.QueryContext(ctx, query, studentID, now)
	if err != nil {
		return nil, apperr.Persistence("list upcoming work", err)
	}
	defer rows.Close()

	out := []upcomingItem{}
	for rows.Next() {
		var item upcomingItem
		if err := rows.Scan(&item.ID, &item.CourseCode, &item.Title, &item.DueDate); err != nil {
			return nil, apperr.Persistence("scan upcoming work", err)
		}
		out = append(out, item)
	}
	return out, nil
}

type submittedAttempt struct {
	quiz.Attempt
	QuizTitle  string `json:"quiz_title"`
	CourseCode string `json:"course_code"`
	TotalMarks int    `json:"total_marks"`
}

func (h *Handler) submittedAttempts(ctx context.Context, studentID string) ([]submittedAttempt, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT a.id, a.quiz_id, a.student_id, a.status, a.score, a.start_time, a.end_time,
		       q.title, q.total_marks, c.course_code
		  FROM quiz_attempts a
		  JOIN quizzes q ON a.quiz_id = q.id
		  JOIN courses c ON q.course_id = c.id
		 WHERE a.student_id=$1 AND a.status=$2
		 ORDER BY a.end_time DESC`, studentID, quiz.StatusSubmitted)
	if err != nil {
		return nil, apperr.Persistence("list attempts", err)
	}
	defer rows.Close()

	out := []submittedAttempt{}
	for rows.Next() {
		var a submittedAttempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.StudentID, &a.Status, &a.Score,
			&a.StartTime, &a.EndTime, &a.QuizTitle, &a.TotalMarks, &a.CourseCode); err != nil {
			return nil, apperr.Persistence("scan attempt", err)
		}
		out = append(out, a)
	}
	return out, nil
}
