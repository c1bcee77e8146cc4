// internal/infra/memory/delivery_repository.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"parish_lms/internal/domain/delivery"
)

// ErrJobNotFound mirrors the postgres repository's sentinel for the in-memory
// variant used in tests and local development.
var ErrJobNotFound = fmt.Errorf("delivery job not found")

// DeliveryRepository is an in-memory delivery.Repository. The claim step holds
// the store lock for the whole select-and-flip, giving the same at-most-once
// claim guarantee the postgres implementation gets from FOR UPDATE SKIP LOCKED.
type DeliveryRepository struct {
	mu     sync.Mutex
	nextID int
	jobs   map[string]*jobRecord
	clock  func() time.Time
}

type jobRecord struct {
	seq     int // insertion order, tie-breaks equal timestamps
	job     delivery.Job
	outcome delivery.Outcome
}

func NewDeliveryRepository() *DeliveryRepository {
	return &DeliveryRepository{jobs: make(map[string]*jobRecord), clock: time.Now}
}

// SetClock is test-only for deterministic timestamps.
func (r *DeliveryRepository) SetClock(now func() time.Time) {
	r.clock = now
}

func (r *DeliveryRepository) Enqueue(_ context.Context, job *delivery.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	job.ID = strconv.Itoa(r.nextID)
	job.Status = delivery.StatusPending
	job.CreatedAt = r.clock()
	job.UpdatedAt = job.CreatedAt

	clone := *job
	clone.Recipients = append([]delivery.Recipient(nil), job.Recipients...)
	r.jobs[job.ID] = &jobRecord{seq: r.nextID, job: clone}
	return nil
}

func (r *DeliveryRepository) ClaimPending(_ context.Context, limit int) ([]*delivery.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*jobRecord
	for _, rec := range r.jobs {
		if rec.job.Status == delivery.StatusPending {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].job.CreatedAt.Equal(pending[j].job.CreatedAt) {
			return pending[i].job.CreatedAt.Before(pending[j].job.CreatedAt)
		}
		return pending[i].seq < pending[j].seq
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}

	claimed := make([]*delivery.Job, 0, len(pending))
	now := r.clock()
	for _, rec := range pending {
		rec.job.Status = delivery.StatusProcessing
		rec.job.UpdatedAt = now
		clone := rec.job
		clone.Recipients = append([]delivery.Recipient(nil), rec.job.Recipients...)
		claimed = append(claimed, &clone)
	}
	return claimed, nil
}

func (r *DeliveryRepository) RecordOutcome(_ context.Context, jobID string, status delivery.Status, outcome delivery.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	rec.job.Status = status
	rec.job.UpdatedAt = r.clock()
	rec.outcome = outcome
	return nil
}

func (r *DeliveryRepository) ReclaimStale(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, rec := range r.jobs {
		if rec.job.Status == delivery.StatusProcessing && rec.job.UpdatedAt.Before(cutoff) {
			rec.job.Status = delivery.StatusPending
			rec.job.UpdatedAt = r.clock()
			n++
		}
	}
	return n, nil
}

func (r *DeliveryRepository) GetByID(_ context.Context, id string) (*delivery.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	clone := rec.job
	clone.Recipients = append([]delivery.Recipient(nil), rec.job.Recipients...)
	return &clone, nil
}

// Outcome returns the recorded outcome for a job. Test helper.
func (r *DeliveryRepository) Outcome(id string) (delivery.Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok {
		return delivery.Outcome{}, false
	}
	return rec.outcome, true
}
