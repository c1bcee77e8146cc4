// internal/infra/database/postgres_engagement_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"parish_lms/internal/domain/engagement"
)

type PostgresEngagementRepository struct {
	db *sql.DB
}

func NewPostgresEngagementRepository(db *sql.DB) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{db: db}
}

// MetricRows aggregates enrollment facts into one row per parish x course
// pair. Filters are applied as equality/range predicates.
func (r *PostgresEngagementRepository) MetricRows(ctx context.Context, f engagement.Filters) ([]engagement.MetricRow, error) {
	query := `SELECT parish_id, course_id,
                      COUNT(*) FILTER (WHERE started_at IS NOT NULL),
                      COUNT(*) FILTER (WHERE completed_at IS NOT NULL)
               FROM enrollments`
	conds, args := engagementPredicates(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " GROUP BY parish_id, course_id ORDER BY parish_id, course_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying engagement metrics: %w", err)
	}
	defer rows.Close()

	var metrics []engagement.MetricRow
	for rows.Next() {
		var m engagement.MetricRow
		if err := rows.Scan(&m.ParishID, &m.CourseID, &m.LearnersStarted, &m.LearnersCompleted); err != nil {
			return nil, fmt.Errorf("error scanning engagement metric row: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engagement metric rows: %w", err)
	}
	return metrics, nil
}

// TrendPoints buckets enrollment starts/completions by day over the filtered
// range. Only called when a date filter is active.
func (r *PostgresEngagementRepository) TrendPoints(ctx context.Context, f engagement.Filters) ([]engagement.TrendPoint, error) {
	query := `SELECT TO_CHAR(DATE_TRUNC('day', started_at), 'YYYY-MM-DD'),
                      COUNT(*) FILTER (WHERE started_at IS NOT NULL),
                      COUNT(*) FILTER (WHERE completed_at IS NOT NULL)
               FROM enrollments`
	conds, args := engagementPredicates(f)
	conds = append(conds, "started_at IS NOT NULL")
	query += " WHERE " + strings.Join(conds, " AND ")
	query += " GROUP BY 1 ORDER BY 1"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying engagement trend: %w", err)
	}
	defer rows.Close()

	var points []engagement.TrendPoint
	for rows.Next() {
		var p engagement.TrendPoint
		if err := rows.Scan(&p.Bucket, &p.LearnersStarted, &p.LearnersCompleted); err != nil {
			return nil, fmt.Errorf("error scanning engagement trend row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engagement trend rows: %w", err)
	}
	return points, nil
}

func (r *PostgresEngagementRepository) ParishNames(ctx context.Context) (map[string]string, error) {
	return r.lookup(ctx, `SELECT id, name FROM parishes`)
}

func (r *PostgresEngagementRepository) CourseTitles(ctx context.Context) (map[string]string, error) {
	return r.lookup(ctx, `SELECT id, title FROM courses`)
}

func (r *PostgresEngagementRepository) lookup(ctx context.Context, query string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying lookup: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("error scanning lookup row: %w", err)
		}
		out[id] = label
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lookup rows: %w", err)
	}
	return out, nil
}

// engagementPredicates builds WHERE predicates and positional args for the
// optional report filters.
func engagementPredicates(f engagement.Filters) ([]string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.ParishID != "" {
		args = append(args, f.ParishID)
		conds = append(conds, fmt.Sprintf("parish_id = $%d", len(args)))
	}
	if f.CourseID != "" {
		args = append(args, f.CourseID)
		conds = append(conds, fmt.Sprintf("course_id = $%d", len(args)))
	}
	if !f.StartDate.IsZero() {
		args = append(args, f.StartDate)
		conds = append(conds, fmt.Sprintf("started_at >= $%d", len(args)))
	}
	if !f.EndDate.IsZero() {
		// End bound is inclusive of the whole day.
		args = append(args, f.EndDate.AddDate(0, 0, 1))
		conds = append(conds, fmt.Sprintf("started_at < $%d", len(args)))
	}
	return conds, args
}
