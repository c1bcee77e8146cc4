// internal/app/delivery_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"parish_lms/internal/domain/delivery"

	"github.com/sirupsen/logrus"
)

const (
	defaultBatchLimit = 10
	maxBatchLimit     = 50
)

// DeliveryService polls the job store for pending outbound messages and
// dispatches them through the configured transports. It is invoked by the
// scheduler and by the authenticated trigger endpoint, never by user-facing
// requests.
type DeliveryService struct {
	repo     delivery.Repository
	registry *delivery.Registry
	logger   *logrus.Logger
}

func NewDeliveryService(repo delivery.Repository, registry *delivery.Registry, logger *logrus.Logger) *DeliveryService {
	return &DeliveryService{repo: repo, registry: registry, logger: logger}
}

// ProcessPending claims up to limit pending jobs (oldest first) and dispatches
// each through its provider. Business-level failures (unknown provider,
// recipients without email, transport rejections) are captured in job outcomes
// and the returned summary; only infrastructure faults error the call itself.
// With no transports configured, delivery is disabled: nothing is claimed and
// the summary is zero.
func (s *DeliveryService) ProcessPending(ctx context.Context, limit int) (delivery.BatchResult, error) {
	if s.registry.Empty() {
		s.logger.Warn("delivery disabled: no transports configured, skipping run")
		return delivery.BatchResult{}, nil
	}

	if limit <= 0 {
		limit = defaultBatchLimit
	}
	if limit > maxBatchLimit {
		limit = maxBatchLimit
	}

	jobs, err := s.repo.ClaimPending(ctx, limit)
	if err != nil {
		return delivery.BatchResult{}, fmt.Errorf("claiming pending delivery jobs: %w", err)
	}

	result := delivery.BatchResult{Processed: len(jobs)}
	for _, job := range jobs {
		status := s.dispatch(ctx, job)
		if status == delivery.StatusSent {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"sent":      result.Sent,
		"failed":    result.Failed,
	}).Info("delivery run finished")
	return result, nil
}

// dispatch sends one claimed job and records its terminal status and outcome.
func (s *DeliveryService) dispatch(ctx context.Context, job *delivery.Job) delivery.Status {
	outcome, err := s.deliver(ctx, job)
	if err != nil {
		// Transport-level fault: the whole job fails atomically with the error
		// as the reason for every recipient; nothing is recorded as sent.
		outcome = delivery.Outcome{}
		for _, r := range job.Recipients {
			outcome.Failed = append(outcome.Failed, delivery.RecipientFailure{
				ClerkUserID: r.ClerkUserID,
				Reason:      err.Error(),
			})
		}
		s.logger.WithFields(logrus.Fields{
			"job_id":   job.ID,
			"provider": job.Provider,
		}).WithError(err).Error("delivery job failed")
	}

	status := delivery.StatusSent
	if len(outcome.Failed) > 0 {
		status = delivery.StatusFailed
	}
	if recErr := s.repo.RecordOutcome(ctx, job.ID, status, outcome); recErr != nil {
		s.logger.WithField("job_id", job.ID).WithError(recErr).Error("recording delivery outcome")
		return delivery.StatusFailed
	}
	return status
}

// deliver partitions recipients and invokes the job's transport once. A
// recipient with no email on file is failed deterministically without ever
// contacting the transport.
func (s *DeliveryService) deliver(ctx context.Context, job *delivery.Job) (delivery.Outcome, error) {
	provider, err := s.registry.Resolve(job.Provider)
	if err != nil {
		return delivery.Outcome{}, err
	}

	var (
		deliverable []delivery.Recipient
		noEmail     []delivery.RecipientFailure
	)
	for _, r := range job.Recipients {
		if !r.Email.Valid || r.Email.String == "" {
			noEmail = append(noEmail, delivery.RecipientFailure{
				ClerkUserID: r.ClerkUserID,
				Reason:      delivery.ReasonNoEmail,
			})
			continue
		}
		deliverable = append(deliverable, r)
	}

	var outcome delivery.Outcome
	if len(deliverable) > 0 {
		outcome, err = provider.Deliver(ctx, job.Subject, job.Body, deliverable)
		if err != nil {
			return delivery.Outcome{}, err
		}
	}
	outcome.Failed = append(outcome.Failed, noEmail...)
	return outcome, nil
}

// ReclaimStale requeues jobs stuck in PROCESSING since before now-lease back
// to PENDING so a crashed worker's claims are eventually retried.
func (s *DeliveryService) ReclaimStale(ctx context.Context, lease time.Duration) (int, error) {
	n, err := s.repo.ReclaimStale(ctx, time.Now().Add(-lease))
	if err != nil {
		return 0, fmt.Errorf("reclaiming stale delivery jobs: %w", err)
	}
	if n > 0 {
		s.logger.WithField("requeued", n).Warn("requeued stale delivery jobs")
	}
	return n, nil
}
