// internal/domain/delivery/repository.go
package delivery

import (
	"context"
	"time"
)

// Repository defines the job-store operations the processor needs. The claim
// operation must be a conditional state transition: a job still PENDING is
// flipped to PROCESSING and returned, and no two concurrent callers may claim
// the same job.
type Repository interface {
	// Enqueue persists a new job in PENDING state.
	Enqueue(ctx context.Context, job *Job) error

	// ClaimPending atomically claims up to limit PENDING jobs, oldest first,
	// transitioning each to PROCESSING. Returns the claimed jobs with their
	// recipients loaded.
	ClaimPending(ctx context.Context, limit int) ([]*Job, error)

	// RecordOutcome persists the per-recipient outcome of a processed job and
	// sets its terminal status.
	RecordOutcome(ctx context.Context, jobID string, status Status, outcome Outcome) error

	// ReclaimStale requeues jobs stuck in PROCESSING since before the cutoff
	// (crashed worker) back to PENDING. Returns the number requeued.
	ReclaimStale(ctx context.Context, cutoff time.Time) (int, error)

	// GetByID returns a job with its recipients and recorded outcomes.
	GetByID(ctx context.Context, id string) (*Job, error)
}
