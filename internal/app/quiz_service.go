// internal/app/quiz_service.go
package app

import (
	"context"
	"fmt"

	"parish_lms/internal/domain/quiz"

	"github.com/sirupsen/logrus"
)

// SubmissionResult is what the quiz submission path returns to the caller:
// the fresh grade plus the recomputed completion status.
type SubmissionResult struct {
	quiz.GradeResult
	Completed bool `json:"completed"`
}

// CompletionStatus is the lesson-completion view composed at read time from
// the video-progress record and the best historical score.
type CompletionStatus struct {
	VideoCompleted bool `json:"videoCompleted"`
	BestScore      int  `json:"bestScore"`
	PassingScore   int  `json:"passingScore"`
	Completed      bool `json:"completed"`
}

// QuizService implements the quiz submission and lesson-completion use cases.
type QuizService struct {
	repo   quiz.Repository
	logger *logrus.Logger
}

func NewQuizService(repo quiz.Repository, logger *logrus.Logger) *QuizService {
	return &QuizService{repo: repo, logger: logger}
}

// SubmitQuiz grades the submitted answers against the lesson's question set,
// persists the derived score (keeping the learner's best), and returns the
// grade together with the recomputed completion status. Only the derived score
// is persisted; the submission itself is ephemeral.
func (s *QuizService) SubmitQuiz(ctx context.Context, lessonID, parishID, userID string, answers []int) (SubmissionResult, error) {
	questions, err := s.repo.QuestionsByLesson(ctx, lessonID)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("loading questions for lesson %s: %w", lessonID, err)
	}

	result := quiz.GradeQuiz(answers, questions)
	if err := s.repo.SaveScore(ctx, lessonID, parishID, userID, result); err != nil {
		return SubmissionResult{}, fmt.Errorf("saving score for lesson %s: %w", lessonID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"lesson_id": lessonID,
		"user_id":   userID,
		"score":     result.Score,
		"total":     result.Total,
	}).Info("quiz submission graded")

	status, err := s.Completion(ctx, lessonID, userID)
	if err != nil {
		return SubmissionResult{}, err
	}
	return SubmissionResult{GradeResult: result, Completed: status.Completed}, nil
}

// MarkVideoCompleted records that the learner watched the lesson video.
func (s *QuizService) MarkVideoCompleted(ctx context.Context, lessonID, userID string) error {
	if err := s.repo.MarkVideoCompleted(ctx, lessonID, userID); err != nil {
		return fmt.Errorf("marking video completed for lesson %s: %w", lessonID, err)
	}
	return nil
}

// Completion recomputes the lesson-completion view for a learner. Completion
// is never stored, only derived from the two persisted facts.
func (s *QuizService) Completion(ctx context.Context, lessonID, userID string) (CompletionStatus, error) {
	videoDone, err := s.repo.VideoCompleted(ctx, lessonID, userID)
	if err != nil {
		return CompletionStatus{}, fmt.Errorf("loading video progress for lesson %s: %w", lessonID, err)
	}
	best, err := s.repo.BestScore(ctx, lessonID, userID)
	if err != nil {
		return CompletionStatus{}, fmt.Errorf("loading best score for lesson %s: %w", lessonID, err)
	}
	passing, err := s.repo.PassingScore(ctx, lessonID)
	if err != nil {
		return CompletionStatus{}, fmt.Errorf("loading passing score for lesson %s: %w", lessonID, err)
	}

	return CompletionStatus{
		VideoCompleted: videoDone,
		BestScore:      best,
		PassingScore:   passing,
		Completed: quiz.IsLessonComplete(quiz.CompletionInput{
			VideoCompleted: videoDone,
			BestScore:      best,
			PassingScore:   passing,
		}),
	}, nil
}
