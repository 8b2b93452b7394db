package quiz

import "context"

// Store is the quiz attempt manager's persistence surface.
type Store interface {
	CreateQuiz(ctx context.Context, q Quiz, questions []QuestionInput) (Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (Quiz, error)
	// Questions returns the quiz's questions in insertion order (id
	// ascending). Safe to call repeatedly.
	Questions(ctx context.Context, quizID string) ([]Question, error)
	// StartAttempt starts or resumes the student's attempt. It fails with
	// NotFound when the student is not enrolled in the owning course, and
	// with Conflict when a submitted attempt already exists.
	StartAttempt(ctx context.Context, quizID, studentID string) (Attempt, error)
	// Submit grades the answers, writes one StudentAnswer per question and
	// finalizes the attempt. Submitted attempts are immutable.
	Submit(ctx context.Context, attemptID, studentID string, answers []AnswerInput) (Attempt, error)
	GetAttempt(ctx context.Context, attemptID string) (Attempt, error)
	// LatestAttempt returns the student's most recent attempt for the quiz,
	// or nil when none exists.
	LatestAttempt(ctx context.Context, quizID, studentID string) (*Attempt, error)
	// Answers returns the recorded answers of a submitted attempt.
	Answers(ctx context.Context, attemptID string) ([]StudentAnswer, error)
}
