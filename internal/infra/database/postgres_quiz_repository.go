// internal/infra/database/postgres_quiz_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"parish_lms/internal/domain/quiz"

	"github.com/lib/pq" // For pq.Array and driver registration
)

// Custom errors specific to quiz repository
var ErrLessonNotFound = fmt.Errorf("lesson not found")

type PostgresQuizRepository struct {
	db *sql.DB
}

func NewPostgresQuizRepository(db *sql.DB) *PostgresQuizRepository {
	return &PostgresQuizRepository{db: db}
}

func (r *PostgresQuizRepository) QuestionsByLesson(ctx context.Context, lessonID string) ([]quiz.Question, error) {
	query := `SELECT id, lesson_id, prompt, options, correct_option_index, sort_order
               FROM questions
               WHERE lesson_id = $1
               ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("error listing questions for lesson: %w", err)
	}
	defer rows.Close()

	var questions []quiz.Question
	for rows.Next() {
		var q quiz.Question
		if err := rows.Scan(&q.ID, &q.LessonID, &q.Prompt, pq.Array(&q.Options), &q.CorrectOptionIndex, &q.SortOrder); err != nil {
			return nil, fmt.Errorf("error scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}
	return questions, nil
}

func (r *PostgresQuizRepository) PassingScore(ctx context.Context, lessonID string) (int, error) {
	query := `SELECT passing_score FROM lessons WHERE id = $1`
	var passing int
	err := r.db.QueryRowContext(ctx, query, lessonID).Scan(&passing)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrLessonNotFound
		}
		return 0, fmt.Errorf("error getting passing score: %w", err)
	}
	return passing, nil
}

// SaveScore upserts the submission's derived score, keeping the learner's
// best historical score for the lesson.
func (r *PostgresQuizRepository) SaveScore(ctx context.Context, lessonID, parishID, userID string, result quiz.GradeResult) error {
	query := `INSERT INTO quiz_scores (lesson_id, parish_id, clerk_user_id, best_score, total_questions)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (lesson_id, clerk_user_id)
               DO UPDATE SET best_score = GREATEST(quiz_scores.best_score, EXCLUDED.best_score),
                             total_questions = EXCLUDED.total_questions,
                             updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, lessonID, parishID, userID, result.Score, result.Total); err != nil {
		return fmt.Errorf("error saving quiz score: %w", err)
	}
	return nil
}

func (r *PostgresQuizRepository) BestScore(ctx context.Context, lessonID, userID string) (int, error) {
	query := `SELECT best_score FROM quiz_scores WHERE lesson_id = $1 AND clerk_user_id = $2`
	var best int
	err := r.db.QueryRowContext(ctx, query, lessonID, userID).Scan(&best)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil // No submission yet: best score is zero, not an error.
		}
		return 0, fmt.Errorf("error getting best score: %w", err)
	}
	return best, nil
}

func (r *PostgresQuizRepository) MarkVideoCompleted(ctx context.Context, lessonID, userID string) error {
	query := `INSERT INTO video_progress (lesson_id, clerk_user_id, completed)
               VALUES ($1, $2, TRUE)
               ON CONFLICT (lesson_id, clerk_user_id)
               DO UPDATE SET completed = TRUE, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, lessonID, userID); err != nil {
		return fmt.Errorf("error marking video completed: %w", err)
	}
	return nil
}

func (r *PostgresQuizRepository) VideoCompleted(ctx context.Context, lessonID, userID string) (bool, error) {
	query := `SELECT completed FROM video_progress WHERE lesson_id = $1 AND clerk_user_id = $2`
	var completed bool
	err := r.db.QueryRowContext(ctx, query, lessonID, userID).Scan(&completed)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("error getting video progress: %w", err)
	}
	return completed, nil
}
