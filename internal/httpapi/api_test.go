package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/edushelf/campusd/internal/account"
	"github.com/edushelf/campusd/internal/auth"
	"github.com/edushelf/campusd/internal/db"
	"github.com/edushelf/campusd/internal/quiz"
	"github.com/edushelf/campusd/internal/storage"
)

var testDBSeq int

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:httpapi%d?mode=memory&cache=shared", testDBSeq)
	database, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	logger := zerolog.Nop()
	handler := NewHandler(
		database,
		account.NewService(database, 4, logger),
		quiz.NewSQLStore(database, logger),
		auth.NewService("test-secret", time.Minute),
		blobs,
		logger,
	)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// do sends a JSON request and decodes the JSON response body into a map.
func do(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func register(t *testing.T, srv *httptest.Server, username, role string) {
	t.Helper()
	status, body := do(t, srv, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"username":         username,
		"email":            username + "@example.edu",
		"password":         "secret123",
		"confirm_password": "secret123",
		"role":             role,
		"first_name":       "Test",
		"last_name":        username,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", username, status, body)
	}
}

func login(t *testing.T, srv *httptest.Server, username string) (token, profileID string) {
	t.Helper()
	status, body := do(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d, body %v", username, status, body)
	}
	token, _ = body["access_token"].(string)
	if token == "" {
		t.Fatalf("login %s: no access token in %v", username, body)
	}
	user, _ := body["user"].(map[string]interface{})
	profileID, _ = user["profile_id"].(string)
	return token, profileID
}

func createCourse(t *testing.T, srv *httptest.Server, token, code string) string {
	t.Helper()
	status, body := do(t, srv, http.MethodPost, "/api/v1/courses", token, map[string]interface{}{
		"course_code": code,
		"course_name": "Course " + code,
		"credits":     3,
		"department":  "CS",
	})
	if status != http.StatusCreated {
		t.Fatalf("create course: status %d, body %v", status, body)
	}
	id, _ := body["id"].(string)
	return id
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "amalik", "student")

	status, _ := do(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "amalik", "password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", status)
	}
	status, _ = do(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "ghost", "password": "secret123",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("unknown user: status %d, want 401", status)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newTestServer(t)

	status, _ := do(t, srv, http.MethodGet, "/api/v1/dashboard", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", status)
	}
	status, _ = do(t, srv, http.MethodGet, "/api/v1/dashboard", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("garbage token: status %d, want 401", status)
	}
}

func TestRoleEnforcement(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "student1", "student")
	studentTok, _ := login(t, srv, "student1")

	status, _ := do(t, srv, http.MethodPost, "/api/v1/courses", studentTok, map[string]interface{}{
		"course_code": "CS101", "course_name": "Intro", "credits": 3, "department": "CS",
	})
	if status != http.StatusForbidden {
		t.Errorf("student creating course: status %d, want 403", status)
	}
	status, _ = do(t, srv, http.MethodGet, "/api/v1/schedules", studentTok, nil)
	if status != http.StatusForbidden {
		t.Errorf("student listing schedules: status %d, want 403", status)
	}
}

func TestEnrollmentDuplicateConflicts(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "prof", "teacher")
	register(t, srv, "student1", "student")
	profTok, _ := login(t, srv, "prof")
	_, studentPID := login(t, srv, "student1")

	courseID := createCourse(t, srv, profTok, "CS101")

	enroll := map[string]string{"student_id": studentPID, "course_id": courseID}
	status, body := do(t, srv, http.MethodPost, "/api/v1/enrollments", profTok, enroll)
	if status != http.StatusCreated {
		t.Fatalf("enroll: status %d, body %v", status, body)
	}
	status, _ = do(t, srv, http.MethodPost, "/api/v1/enrollments", profTok, enroll)
	if status != http.StatusConflict {
		t.Errorf("duplicate enrollment: status %d, want 409", status)
	}
}

func TestEnrollmentRequiresCourseOwnership(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "prof1", "teacher")
	register(t, srv, "prof2", "teacher")
	register(t, srv, "student1", "student")
	tok1, _ := login(t, srv, "prof1")
	tok2, _ := login(t, srv, "prof2")
	_, studentPID := login(t, srv, "student1")

	courseID := createCourse(t, srv, tok1, "CS101")

	status, _ := do(t, srv, http.MethodPost, "/api/v1/enrollments", tok2,
		map[string]string{"student_id": studentPID, "course_id": courseID})
	if status != http.StatusNotFound {
		t.Errorf("foreign course: status %d, want 404", status)
	}
}

func TestScheduleConflicts(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "prof", "teacher")
	profTok, _ := login(t, srv, "prof")
	courseID := createCourse(t, srv, profTok, "CS101")

	slot := func(day, ts, room string) map[string]interface{} {
		return map[string]interface{}{
			"course_id": courseID, "day": day, "time_slot": ts, "room": room, "duration": 1,
		}
	}

	status, body := do(t, srv, http.MethodPost, "/api/v1/schedules", profTok, slot("Monday", "9:00-10:00", "101"))
	if status != http.StatusCreated {
		t.Fatalf("first booking: status %d, body %v", status, body)
	}
	firstID, _ := body["id"].(string)

	status, _ = do(t, srv, http.MethodPost, "/api/v1/schedules", profTok, slot("Monday", "9:00-10:00", "101"))
	if status != http.StatusConflict {
		t.Errorf("double booking: status %d, want 409", status)
	}

	status, body = do(t, srv, http.MethodPost, "/api/v1/schedules", profTok, slot("Monday", "9:00-10:00", "102"))
	if status != http.StatusCreated {
		t.Fatalf("other room: status %d, body %v", status, body)
	}
	secondID, _ := body["id"].(string)

	// keeping a schedule's own slot is not a conflict
	status, body = do(t, srv, http.MethodPut, "/api/v1/schedules/"+firstID, profTok, slot("Monday", "9:00-10:00", "101"))
	if status != http.StatusOK {
		t.Errorf("self update: status %d, body %v, want 200", status, body)
	}

	// moving onto another schedule's slot is
	status, _ = do(t, srv, http.MethodPut, "/api/v1/schedules/"+secondID, profTok, slot("Monday", "9:00-10:00", "101"))
	if status != http.StatusConflict {
		t.Errorf("move onto taken slot: status %d, want 409", status)
	}

	status, _ = do(t, srv, http.MethodDelete, "/api/v1/schedules/"+secondID, profTok, nil)
	if status != http.StatusNoContent {
		t.Errorf("delete: status %d, want 204", status)
	}
}

func TestQuizLifecycle(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "prof", "teacher")
	register(t, srv, "student1", "student")
	profTok, _ := login(t, srv, "prof")
	studentTok, studentPID := login(t, srv, "student1")

	courseID := createCourse(t, srv, profTok, "CS101")

	status, body := do(t, srv, http.MethodPost, "/api/v1/courses/"+courseID+"/quizzes", profTok, map[string]interface{}{
		"title":          "Week 1",
		"time_limit_min": 30,
		"due_date":       time.Now().Add(24 * time.Hour).Unix(),
		"questions": []map[string]interface{}{
			{"question_text": "Capital of France?", "question_type": "short_answer", "correct_answer": "Paris", "marks": 5},
			{"question_text": "Pick b", "question_type": "multiple_choice",
				"options": map[string]string{"a": "no", "b": "yes"}, "correct_answer": "b", "marks": 3},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create quiz: status %d, body %v", status, body)
	}
	quizID, _ := body["id"].(string)

	// before enrollment the quiz is invisible to the student
	status, _ = do(t, srv, http.MethodPost, "/api/v1/quizzes/"+quizID+"/attempts", studentTok, nil)
	if status != http.StatusNotFound {
		t.Errorf("unenrolled attempt: status %d, want 404", status)
	}

	status, body = do(t, srv, http.MethodPost, "/api/v1/enrollments", profTok,
		map[string]string{"student_id": studentPID, "course_id": courseID})
	if status != http.StatusCreated {
		t.Fatalf("enroll: status %d, body %v", status, body)
	}

	status, body = do(t, srv, http.MethodPost, "/api/v1/quizzes/"+quizID+"/attempts", studentTok, nil)
	if status != http.StatusOK {
		t.Fatalf("start attempt: status %d, body %v", status, body)
	}
	attempt, _ := body["attempt"].(map[string]interface{})
	attemptID, _ := attempt["id"].(string)
	questions, _ := body["questions"].([]interface{})
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	for _, raw := range questions {
		q := raw.(map[string]interface{})
		if ans, ok := q["correct_answer"]; ok && ans != "" {
			t.Errorf("correct answer leaked to student: %v", q)
		}
	}

	answers := []map[string]interface{}{
		{"question_id": questions[0].(map[string]interface{})["id"], "answer": "i think paris is right"},
		{"question_id": questions[1].(map[string]interface{})["id"], "answer": "a"},
	}
	status, body = do(t, srv, http.MethodPost, "/api/v1/attempts/"+attemptID+"/submit", studentTok,
		map[string]interface{}{"answers": answers})
	if status != http.StatusOK {
		t.Fatalf("submit: status %d, body %v", status, body)
	}
	if score, _ := body["score"].(float64); score != 5 {
		t.Errorf("score = %v, want 5", body["score"])
	}
	if st, _ := body["status"].(string); st != "submitted" {
		t.Errorf("status = %q, want submitted", st)
	}

	// submitted is terminal
	status, _ = do(t, srv, http.MethodPost, "/api/v1/attempts/"+attemptID+"/submit", studentTok,
		map[string]interface{}{"answers": answers})
	if status != http.StatusConflict {
		t.Errorf("resubmit: status %d, want 409", status)
	}
	status, _ = do(t, srv, http.MethodPost, "/api/v1/quizzes/"+quizID+"/attempts", studentTok, nil)
	if status != http.StatusConflict {
		t.Errorf("restart after submit: status %d, want 409", status)
	}

	// the finished attempt shows up on the student dashboard
	status, body = do(t, srv, http.MethodGet, "/api/v1/dashboard", studentTok, nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard: status %d, body %v", status, body)
	}
	attempts, _ := body["quiz_attempts"].([]interface{})
	if len(attempts) != 1 {
		t.Fatalf("dashboard attempts = %d, want 1", len(attempts))
	}
	got := attempts[0].(map[string]interface{})
	if got["score"].(float64) != 5 || got["quiz_title"].(string) != "Week 1" {
		t.Errorf("dashboard attempt = %v", got)
	}
}

func TestTeacherDashboard(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "prof", "teacher")
	register(t, srv, "student1", "student")
	register(t, srv, "student2", "student")
	profTok, _ := login(t, srv, "prof")
	_, pid1 := login(t, srv, "student1")
	_, pid2 := login(t, srv, "student2")

	courseID := createCourse(t, srv, profTok, "CS101")
	createCourse(t, srv, profTok, "CS102")

	for _, pid := range []string{pid1, pid2} {
		status, body := do(t, srv, http.MethodPost, "/api/v1/enrollments", profTok,
			map[string]string{"student_id": pid, "course_id": courseID})
		if status != http.StatusCreated {
			t.Fatalf("enroll: status %d, body %v", status, body)
		}
	}

	status, body := do(t, srv, http.MethodGet, "/api/v1/dashboard", profTok, nil)
	if status != http.StatusOK {
		t.Fatalf("teacher dashboard: status %d, body %v", status, body)
	}

	courses, _ := body["courses"].([]interface{})
	if len(courses) != 2 {
		t.Fatalf("dashboard courses = %d, want 2", len(courses))
	}
	counts := map[string]float64{}
	for _, raw := range courses {
		c := raw.(map[string]interface{})
		counts[c["course_code"].(string)], _ = c["student_count"].(float64)
	}
	if counts["CS101"] != 2 || counts["CS102"] != 0 {
		t.Errorf("student counts = %v, want CS101:2 CS102:0", counts)
	}

	recent, _ := body["recent_enrollments"].([]interface{})
	if len(recent) != 2 {
		t.Fatalf("recent enrollments = %d, want 2", len(recent))
	}
	for _, raw := range recent {
		e := raw.(map[string]interface{})
		if e["course_code"] != "CS101" {
			t.Errorf("enrollment course = %v, want CS101", e["course_code"])
		}
		name, _ := e["student_name"].(string)
		if name != "Test student1" && name != "Test student2" {
			t.Errorf("student name = %q", name)
		}
		if e["enrollment_date"].(float64) <= 0 {
			t.Errorf("enrollment date missing: %v", e)
		}
	}
}

func TestStartAttemptResumes(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "prof", "teacher")
	register(t, srv, "student1", "student")
	profTok, _ := login(t, srv, "prof")
	studentTok, studentPID := login(t, srv, "student1")

	courseID := createCourse(t, srv, profTok, "CS101")
	status, body := do(t, srv, http.MethodPost, "/api/v1/courses/"+courseID+"/quizzes", profTok, map[string]interface{}{
		"title":    "Quiz",
		"due_date": time.Now().Add(time.Hour).Unix(),
		"questions": []map[string]interface{}{
			{"question_text": "2 is even", "question_type": "true_false", "correct_answer": "true", "marks": 1},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create quiz: status %d, body %v", status, body)
	}
	quizID, _ := body["id"].(string)

	if status, body = do(t, srv, http.MethodPost, "/api/v1/enrollments", profTok,
		map[string]string{"student_id": studentPID, "course_id": courseID}); status != http.StatusCreated {
		t.Fatalf("enroll: status %d, body %v", status, body)
	}

	status, body = do(t, srv, http.MethodPost, "/api/v1/quizzes/"+quizID+"/attempts", studentTok, nil)
	if status != http.StatusOK {
		t.Fatalf("start: status %d, body %v", status, body)
	}
	first := body["attempt"].(map[string]interface{})["id"].(string)

	status, body = do(t, srv, http.MethodPost, "/api/v1/quizzes/"+quizID+"/attempts", studentTok, nil)
	if status != http.StatusOK {
		t.Fatalf("second start: status %d, body %v", status, body)
	}
	second := body["attempt"].(map[string]interface{})["id"].(string)
	if second != first {
		t.Errorf("second start returned attempt %s, want resume of %s", second, first)
	}
}
