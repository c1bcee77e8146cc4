// internal/domain/quiz/repository.go
package quiz

import "context"

// Repository defines persistence operations for lessons, questions and learner
// progress. Implementations live in internal/infra.
type Repository interface {
	// QuestionsByLesson returns the lesson's questions ordered by sort order
	// ascending, the same order the quiz was presented in.
	QuestionsByLesson(ctx context.Context, lessonID string) ([]Question, error)

	// PassingScore returns the lesson's configured passing threshold (0-100).
	PassingScore(ctx context.Context, lessonID string) (int, error)

	// SaveScore records a graded submission, keeping the learner's best
	// historical score for the lesson.
	SaveScore(ctx context.Context, lessonID, parishID, userID string, result GradeResult) error

	// BestScore returns the learner's best recorded score for the lesson,
	// 0 when no submission exists yet.
	BestScore(ctx context.Context, lessonID, userID string) (int, error)

	// MarkVideoCompleted records that the learner watched the lesson video to
	// the end. Idempotent.
	MarkVideoCompleted(ctx context.Context, lessonID, userID string) error

	// VideoCompleted reports whether the learner finished the lesson video.
	VideoCompleted(ctx context.Context, lessonID, userID string) (bool, error)
}
