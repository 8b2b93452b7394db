package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edushelf/campusd/internal/apperr"
)

type SQLStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSQLStore(db *sql.DB, logger zerolog.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz, questions []QuestionInput) (Quiz, error) {
	if strings.TrimSpace(q.Title) == "" {
		return Quiz{}, apperr.Validation("title", "required")
	}
	if len(questions) == 0 {
		return Quiz{}, apperr.Validation("questions", "at least one question required")
	}
	total := 0
	for i, in := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(in.Text) == "" {
			return Quiz{}, apperr.Validation(field, "question text required")
		}
		if in.Marks <= 0 {
			return Quiz{}, apperr.Validation(field, "marks must be positive")
		}
		switch in.Type {
		case TypeMultipleChoice:
			if len(in.Options) == 0 {
				return Quiz{}, apperr.Validation(field, "multiple choice requires options")
			}
			if _, ok := in.Options[in.CorrectAnswer]; !ok {
				return Quiz{}, apperr.Validation(field, "correct answer must be an option key")
			}
		case TypeTrueFalse, TypeShortAnswer:
			if in.CorrectAnswer == "" {
				return Quiz{}, apperr.Validation(field, "correct answer required")
			}
		default:
			return Quiz{}, apperr.Validation(field, "unknown question type")
		}
		total += in.Marks
	}

	q.ID = uuid.New().String()
	q.TotalMarks = total
	q.CreatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Quiz{}, apperr.Persistence("begin create quiz", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quizzes (id, course_id, title, description, time_limit_min, total_marks, due_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		q.ID, q.CourseID, q.Title, q.Description, q.TimeLimitMin, q.TotalMarks, q.DueDate, q.CreatedAt)
	if err != nil {
		return Quiz{}, apperr.Persistence("insert quiz", err)
	}

	for _, in := range questions {
		var opts sql.NullString
		if len(in.Options) > 0 {
			b, jerr := json.Marshal(in.Options)
			if jerr != nil {
				err = jerr
				return Quiz{}, apperr.Persistence("encode options", jerr)
			}
			opts = sql.NullString{Valid: true, String: string(b)}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO quiz_questions (quiz_id, question_text, question_type, options_json, correct_answer, marks)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			q.ID, in.Text, in.Type, opts, in.CorrectAnswer, in.Marks)
		if err != nil {
			return Quiz{}, apperr.Persistence("insert question", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Quiz{}, apperr.Persistence("commit create quiz", err)
	}

	s.logger.Info().
		Str("quiz_id", q.ID).
		Str("course_id", q.CourseID).
		Int("questions", len(questions)).
		Msg("quiz created")
	return q, nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, quizID string) (Quiz, error) {
	var q Quiz
	err := s.db.QueryRowContext(ctx, `
		SELECT id, course_id, title, description, time_limit_min, total_marks, due_date, created_at
		  FROM quizzes WHERE id=$1`, quizID).
		Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.TimeLimitMin, &q.TotalMarks, &q.DueDate, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, apperr.NotFound("quiz not found")
	}
	if err != nil {
		return Quiz{}, apperr.Persistence("fetch quiz", err)
	}
	return q, nil
}

func (s *SQLStore) Questions(ctx context.Context, quizID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quiz_id, question_text, question_type, options_json, correct_answer, marks
		  FROM quiz_questions WHERE quiz_id=$1 ORDER BY id`, quizID)
	if err != nil {
		return nil, apperr.Persistence("list questions", err)
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		var (
			q    Question
			opts sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Type, &opts, &q.CorrectAnswer, &q.Marks); err != nil {
			return nil, apperr.Persistence("scan question", err)
		}
		if opts.Valid && opts.String != "" {
			if err := json.Unmarshal([]byte(opts.String), &q.Options); err != nil {
				return nil, apperr.Persistence("decode options", err)
			}
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list questions", err)
	}
	return out, nil
}

func (s *SQLStore) StartAttempt(ctx context.Context, quizID, studentID string) (Attempt, error) {
	// Visibility is via enrollment in the owning course; a quiz the student
	// cannot see and a quiz that does not exist look the same.
	var ok int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1
		  FROM quizzes q
		  JOIN enrollments e ON e.course_id = q.course_id
		 WHERE q.id=$1 AND e.student_id=$2`, quizID, studentID).Scan(&ok)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, apperr.NotFound("quiz not found or access denied")
	}
	if err != nil {
		return Attempt{}, apperr.Persistence("check quiz access", err)
	}

	existing, err := s.LatestAttempt(ctx, quizID, studentID)
	if err != nil {
		return Attempt{}, err
	}
	if existing != nil {
		if existing.Status == StatusSubmitted {
			return Attempt{}, apperr.Conflict("quiz already submitted")
		}
		// idempotent resume
		return *existing, nil
	}

	a := Attempt{
		ID:        uuid.New().String(),
		QuizID:    quizID,
		StudentID: studentID,
		Status:    StatusInProgress,
		StartTime: time.Now().Unix(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (id, quiz_id, student_id, status, start_time, score)
		VALUES ($1,$2,$3,$4,$5,0)`,
		a.ID, a.QuizID, a.StudentID, a.Status, a.StartTime)
	if err != nil {
		// A concurrent start can win the insert; the partial unique index
		// rejects ours, so resume the winner's attempt.
		if msg := strings.ToLower(err.Error()); strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key") {
			if winner, lerr := s.LatestAttempt(ctx, quizID, studentID); lerr == nil && winner != nil {
				return *winner, nil
			}
		}
		return Attempt{}, apperr.Persistence("insert attempt", err)
	}

	s.logger.Info().
		Str("attempt_id", a.ID).
		Str("quiz_id", quizID).
		Str("student_id", studentID).
		Msg("attempt started")
	return a, nil
}

func (s *SQLStore) Submit(ctx context.Context, attemptID, studentID string, answers []AnswerInput) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.StudentID != studentID {
		return Attempt{}, apperr.NotFound("attempt not found")
	}
	if a.Status == StatusSubmitted {
		return Attempt{}, apperr.Conflict("attempt already submitted")
	}

	questions, err := s.Questions(ctx, a.QuizID)
	if err != nil {
		return Attempt{}, err
	}

	// Validate the typed answer list against the question set before any
	// grading happens.
	known := make(map[int64]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	submitted := make(map[int64]string, len(answers))
	for _, in := range answers {
		if _, ok := known[in.QuestionID]; !ok {
			return Attempt{}, apperr.Validation("answers", fmt.Sprintf("unknown question id %d", in.QuestionID))
		}
		if _, dup := submitted[in.QuestionID]; dup {
			return Attempt{}, apperr.Validation("answers", fmt.Sprintf("duplicate answer for question %d", in.QuestionID))
		}
		submitted[in.QuestionID] = in.Answer
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, apperr.Persistence("begin submit", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	score := 0
	for _, q := range questions {
		answer := submitted[q.ID] // absent answer grades as empty
		correct := Grade(q.Type, answer, q.CorrectAnswer)
		if correct {
			score += q.Marks
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO student_answers (id, attempt_id, question_id, answer, is_correct)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.New().String(), attemptID, q.ID, answer, correct)
		if err != nil {
			return Attempt{}, apperr.FromUnique(err, "attempt already submitted", "insert answer")
		}
	}

	end := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `
		UPDATE quiz_attempts SET status=$1, score=$2, end_time=$3 WHERE id=$4`,
		StatusSubmitted, score, end, attemptID)
	if err != nil {
		return Attempt{}, apperr.Persistence("finalize attempt", err)
	}

	if err = tx.Commit(); err != nil {
		return Attempt{}, apperr.Persistence("commit submit", err)
	}

	a.Status = StatusSubmitted
	a.Score = score
	a.EndTime = &end

	s.logger.Info().
		Str("attempt_id", attemptID).
		Int("score", score).
		Msg("attempt submitted")
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, attemptID string) (Attempt, error) {
	var (
		a   Attempt
		end sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, quiz_id, student_id, status, start_time, end_time, score
		  FROM quiz_attempts WHERE id=$1`, attemptID).
		Scan(&a.ID, &a.QuizID, &a.StudentID, &a.Status, &a.StartTime, &end, &a.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, apperr.NotFound("attempt not found")
	}
	if err != nil {
		return Attempt{}, apperr.Persistence("fetch attempt", err)
	}
	if end.Valid {
		a.EndTime = &end.Int64
	}
	return a, nil
}

func (s *SQLStore) LatestAttempt(ctx context.Context, quizID, studentID string) (*Attempt, error) {
	var (
		a   Attempt
		end sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, quiz_id, student_id, status, start_time, end_time, score
		  FROM quiz_attempts
		 WHERE quiz_id=$1 AND student_id=$2
		 ORDER BY start_time DESC, id DESC
		 LIMIT 1`, quizID, studentID).
		Scan(&a.ID, &a.QuizID, &a.StudentID, &a.Status, &a.StartTime, &end, &a.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("fetch latest attempt", err)
	}
	if end.Valid {
		a.EndTime = &end.Int64
	}
	return &a, nil
}

func (s *SQLStore) Answers(ctx context.Context, attemptID string) ([]StudentAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, attempt_id, question_id, answer, is_correct
		  FROM student_answers WHERE attempt_id=$1 ORDER BY question_id`, attemptID)
	if err != nil {
		return nil, apperr.Persistence("list answers", err)
	}
	defer rows.Close()

	out := []StudentAnswer{}
	for rows.Next() {
		var sa StudentAnswer
		if err := rows.Scan(&sa.ID, &sa.AttemptID, &sa.QuestionID, &sa.Answer, &sa.IsCorrect); err != nil {
			return nil, apperr.Persistence("scan answer", err)
		}
		out = append(out, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list answers", err)
	}
	return out, nil
}
