// internal/domain/quiz/grade.go
package quiz

import "math"

// Question is a single multiple-choice question belonging to a lesson.
// Corresponds to the 'questions' table.
type Question struct {
	ID                 string
	LessonID           string
	Prompt             string
	Options            []string
	CorrectOptionIndex int
	SortOrder          int
}

// GradeResult is the derived outcome of grading one submission. It is computed
// fresh on every submission and never cached.
type GradeResult struct {
	Score int `json:"score"` // integer percentage, 0-100
	Total int `json:"total"` // number of questions evaluated
}

// CompletionInput composes the two independently persisted facts a lesson's
// completion is derived from. Completion itself is never stored.
type CompletionInput struct {
	VideoCompleted bool
	BestScore      int
	PassingScore   int
}

// GradeQuiz evaluates submitted answers against the lesson's questions.
// Answers are positionally aligned to questions (callers pass questions in the
// order they were presented, sort order ascending). Missing or extra answer
// positions count as incorrect, never as an error.
func GradeQuiz(answers []int, questions []Question) GradeResult {
	total := len(questions)
	if total == 0 {
		return GradeResult{Score: 0, Total: 0}
	}

	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectOptionIndex {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(total) * 100))
	return GradeResult{Score: score, Total: total}
}

// IsLessonComplete reports whether a learner has completed a lesson: the video
// must be watched to the end AND the best quiz score must meet the passing
// threshold. Neither condition alone suffices.
func IsLessonComplete(in CompletionInput) bool {
	return in.VideoCompleted && in.BestScore >= in.PassingScore
}
