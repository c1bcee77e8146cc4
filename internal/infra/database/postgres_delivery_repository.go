// internal/infra/database/postgres_delivery_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"parish_lms/internal/domain/delivery"

	"github.com/lib/pq"
)

// Custom errors specific to delivery repository
var ErrJobNotFound = fmt.Errorf("delivery job not found")

type PostgresDeliveryRepository struct {
	db *sql.DB
}

func NewPostgresDeliveryRepository(db *sql.DB) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{db: db}
}

func (r *PostgresDeliveryRepository) Enqueue(ctx context.Context, job *delivery.Job) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for enqueue: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	query := `INSERT INTO delivery_jobs (parish_id, subject, body, provider, status)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at, updated_at`
	job.Status = delivery.StatusPending
	err = txn.QueryRowContext(ctx, query, job.ParishID, job.Subject, job.Body, job.Provider, job.Status).
		Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error enqueuing delivery job: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO delivery_recipients (job_id, clerk_user_id, email)
                                         VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for recipients: %w", err)
	}
	defer stmt.Close()

	for _, rec := range job.Recipients {
		if _, err := stmt.ExecContext(ctx, job.ID, rec.ClerkUserID, rec.Email); err != nil {
			return fmt.Errorf("error inserting recipient %s: %w", rec.ClerkUserID, err)
		}
	}

	return txn.Commit()
}

// ClaimPending flips up to limit PENDING jobs (oldest first) to PROCESSING and
// returns them with recipients loaded. FOR UPDATE SKIP LOCKED makes the claim
// a per-job compare-and-swap: concurrent invocations never claim the same job.
func (r *PostgresDeliveryRepository) ClaimPending(ctx context.Context, limit int) ([]*delivery.Job, error) {
	query := `UPDATE delivery_jobs
               SET status = $1, updated_at = NOW()
               WHERE id IN (
                   SELECT id FROM delivery_jobs
                   WHERE status = $2
                   ORDER BY created_at ASC
                   LIMIT $3
                   FOR UPDATE SKIP LOCKED
               )
               RETURNING id, parish_id, subject, body, provider, status, created_at, updated_at`
	rows, err := r.db.QueryContext(ctx, query, delivery.StatusProcessing, delivery.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("error claiming pending delivery jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*delivery.Job
	for rows.Next() {
		j := &delivery.Job{}
		if err := rows.Scan(&j.ID, &j.ParishID, &j.Subject, &j.Body, &j.Provider, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning claimed job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed jobs: %w", err)
	}

	for _, j := range jobs {
		if err := r.loadRecipients(ctx, j); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

func (r *PostgresDeliveryRepository) loadRecipients(ctx context.Context, job *delivery.Job) error {
	query := `SELECT clerk_user_id, email FROM delivery_recipients WHERE job_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, job.ID)
	if err != nil {
		return fmt.Errorf("error loading recipients for job %s: %w", job.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec delivery.Recipient
		if err := rows.Scan(&rec.ClerkUserID, &rec.Email); err != nil {
			return fmt.Errorf("error scanning recipient for job %s: %w", job.ID, err)
		}
		job.Recipients = append(job.Recipients, rec)
	}
	return rows.Err()
}

// RecordOutcome persists per-recipient outcomes and the job's terminal status
// in one transaction, so a failed job never loses its successfully-sent subset.
func (r *PostgresDeliveryRepository) RecordOutcome(ctx context.Context, jobID string, status delivery.Status, outcome delivery.Outcome) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for outcome: %w", err)
	}
	defer txn.Rollback()

	if len(outcome.Sent) > 0 {
		query := `UPDATE delivery_recipients SET outcome = 'SENT', error_reason = NULL
                   WHERE job_id = $1 AND clerk_user_id = ANY($2)`
		if _, err := txn.ExecContext(ctx, query, jobID, pq.Array(outcome.Sent)); err != nil {
			return fmt.Errorf("error recording sent outcomes: %w", err)
		}
	}
	for _, f := range outcome.Failed {
		query := `UPDATE delivery_recipients SET outcome = 'FAILED', error_reason = $3
                   WHERE job_id = $1 AND clerk_user_id = $2`
		if _, err := txn.ExecContext(ctx, query, jobID, f.ClerkUserID, f.Reason); err != nil {
			return fmt.Errorf("error recording failed outcome for %s: %w", f.ClerkUserID, err)
		}
	}

	res, err := txn.ExecContext(ctx,
		`UPDATE delivery_jobs SET status = $1, updated_at = NOW() WHERE id = $2`, status, jobID)
	if err != nil {
		return fmt.Errorf("error updating delivery job status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrJobNotFound
	}

	return txn.Commit()
}

// ReclaimStale requeues jobs stuck in PROCESSING since before the cutoff.
func (r *PostgresDeliveryRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int, error) {
	query := `UPDATE delivery_jobs
               SET status = $1, updated_at = NOW()
               WHERE status = $2 AND updated_at < $3`
	res, err := r.db.ExecContext(ctx, query, delivery.StatusPending, delivery.StatusProcessing, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error reclaiming stale delivery jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error counting reclaimed jobs: %w", err)
	}
	return int(n), nil
}

func (r *PostgresDeliveryRepository) GetByID(ctx context.Context, id string) (*delivery.Job, error) {
	query := `SELECT id, parish_id, subject, body, provider, status, created_at, updated_at
               FROM delivery_jobs WHERE id = $1`
	j := &delivery.Job{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&j.ID, &j.ParishID, &j.Subject, &j.Body, &j.Provider, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("error getting delivery job by ID: %w", err)
	}
	if err := r.loadRecipients(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}
