package quiz

// Question types.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
)

// Attempt states. An attempt only ever moves in_progress -> submitted.
const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

type Quiz struct {
	ID           string `json:"id"`
	CourseID     string `json:"course_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	TimeLimitMin int    `json:"time_limit_min"`
	TotalMarks   int    `json:"total_marks"`
	DueDate      int64  `json:"due_date"` // unix seconds
	CreatedAt    int64  `json:"created_at"`
}

type Question struct {
	ID            int64             `json:"id"`
	QuizID        string            `json:"quiz_id"`
	Text          string            `json:"question_text"`
	Type          string            `json:"question_type"`
	Options       map[string]string `json:"options,omitempty"` // option key -> text, multiple choice only
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Marks         int               `json:"marks"`
}

type Attempt struct {
	ID        string `json:"id"`
	QuizID    string `json:"quiz_id"`
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
	StartTime int64  `json:"start_time"`
	EndTime   *int64 `json:"end_time,omitempty"`
	Score     int    `json:"score"`
}

type StudentAnswer struct {
	ID         string `json:"id"`
	AttemptID  string `json:"attempt_id"`
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionInput is one question of a quiz being created.
type QuestionInput struct {
	Text          string            `json:"question_text"`
	Type          string            `json:"question_type"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer"`
	Marks         int               `json:"marks"`
}

// AnswerInput is one submitted answer, keyed by question id rather than by
// positional form fields, so submissions can be validated against the
// question set before grading.
type AnswerInput struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
}

// Sanitized returns a copy safe to show a student mid-attempt.
func (q Question) Sanitized() Question {
	q.CorrectAnswer = ""
	return q
}
