package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"parish_lms/internal/domain/delivery"
	"parish_lms/internal/infra/email"
	"parish_lms/internal/infra/memory"
)

func nullEmail(addr string) sql.NullString {
	if addr == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: addr, Valid: true}
}

func enqueueJob(t *testing.T, repo *memory.DeliveryRepository, provider string, recipients ...delivery.Recipient) *delivery.Job {
	t.Helper()
	job := &delivery.Job{
		ParishID:   "p1",
		Subject:    "Catechesis schedule",
		Body:       "The spring schedule is posted.",
		Provider:   provider,
		Recipients: recipients,
	}
	if err := repo.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	return job
}

func mockRegistry() (*delivery.Registry, *email.MockProvider) {
	provider := email.NewMockProvider()
	registry := delivery.NewRegistry()
	registry.Register("mock", provider)
	return registry, provider
}

func TestProcessPendingSendsToRecipientsWithEmail(t *testing.T) {
	repo := memory.NewDeliveryRepository()
	registry, provider := mockRegistry()
	service := NewDeliveryService(repo, registry, testLogger())

	job := enqueueJob(t, repo, "mock",
		delivery.Recipient{ClerkUserID: "u1", Email: nullEmail("u1@parish.example")},
		delivery.Recipient{ClerkUserID: "u2", Email: nullEmail("u2@parish.example")},
	)

	result, err := service.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result != (delivery.BatchResult{Processed: 1, Sent: 1, Failed: 0}) {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	stored, err := repo.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != delivery.StatusSent {
		t.Fatalf("expected SENT, got %s", stored.Status)
	}
	if n := len(provider.Deliveries()); n != 1 {
		t.Fatalf("expected one transport call, got %d", n)
	}
}

func TestProcessPendingFailsRecipientsWithoutEmail(t *testing.T) {
	repo := memory.NewDeliveryRepository()
	registry, provider := mockRegistry()
	service := NewDeliveryService(repo, registry, testLogger())

	job := enqueueJob(t, repo, "mock",
		delivery.Recipient{ClerkUserID: "u1", Email: nullEmail("u1@parish.example")},
		delivery.Recipient{ClerkUserID: "u2"}, // no email on file
	)

	result, err := service.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	// Partial recipient failure fails the job, but the call succeeds.
	if result != (delivery.BatchResult{Processed: 1, Sent: 0, Failed: 1}) {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	stored, _ := repo.GetByID(context.Background(), job.ID)
	if stored.Status != delivery.StatusFailed {
		t.Fatalf("expected FAILED, got %s", stored.Status)
	}
	outcome, ok := repo.Outcome(job.ID)
	if !ok {
		t.Fatal("expected a recorded outcome")
	}
	// The sent subset is still retained for manual resend.
	if len(outcome.Sent) != 1 || outcome.Sent[0] != "u1" {
		t.Fatalf("expected u1 in sent subset, got %+v", outcome.Sent)
	}
	if len(outcome.Failed) != 1 || outcome.Failed[0].ClerkUserID != "u2" {
		t.Fatalf("expected u2 in failed subset, got %+v", outcome.Failed)
	}
	if outcome.Failed[0].Reason != "Recipient has no email on file." {
		t.Fatalf("unexpected failure reason: %q", outcome.Failed[0].Reason)
	}
	// The transport was only contacted for the emailable recipient.
	deliveries := provider.Deliveries()
	if len(deliveries) != 1 || len(deliveries[0].Recipients) != 1 {
		t.Fatalf("transport must not see recipients without email: %+v", deliveries)
	}
}

func TestProcessPendingUnsupportedProvider(t *testing.T) {
	repo := memory.NewDeliveryRepository()
	registry, _ := mockRegistry()
	service := NewDeliveryService(repo, registry, testLogger())

	job := enqueueJob(t, repo, "carrier-pigeon",
		delivery.Recipient{ClerkUserID: "u1", Email: nullEmail("u1@parish.example")},
	)

	result, err := service.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("business failure must not error the batch call: %v", err)
	}
	if result != (delivery.BatchResult{Processed: 1, Sent: 0, Failed: 1}) {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	outcome, _ := repo.Outcome(job.ID)
	if len(outcome.Sent) != 0 {
		t.Fatalf("no recipients may be marked sent: %+v", outcome.Sent)
	}
	if len(outcome.Failed) != 1 || !strings.Contains(outcome.Failed[0].Reason, "carrier-pigeon") {
		t.Fatalf("failure reason must identify the provider: %+v", outcome.Failed)
	}
}

type failingProvider struct{ err error }

func (p failingProvider) Deliver(context.Context, string, string, []delivery.Recipient) (delivery.Outcome, error) {
	return delivery.Outcome{}, p.err
}

func TestProcessPendingProviderErrorFailsJobAtomically(t *testing.T) {
	repo := memory.NewDeliveryRepository()
	registry := delivery.NewRegistry()
	registry.Register("mock", failingProvider{err: errors.New("transport outage")})
	service := NewDeliveryService(repo, registry, testLogger())

	job := enqueueJob(t, repo, "mock",
		delivery.Recipient{ClerkUserID: "u1", Email: nullEmail("u1@parish.example")},
		delivery.Recipient{ClerkUserID: "u2"}, // would otherwise be a no-email failure
	)

	result, err := service.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("expected one failed job, got %+v", result)
	}

	outcome, _ := repo.Outcome(job.ID)
	if len(outcome.Sent) != 0 {
		t.Fatalf("no partial sent state on transport error: %+v", outcome.Sent)
	}
	if len(outcome.Failed) != 2 {
		t.Fatalf("every recipient must carry the transport error, got %+v", outcome.Failed)
	}
	for _, f := range outcome.Failed {
		if !strings.Contains(f.Reason, "transport outage") {
			t.Fatalf("expected transport error as reason, got %q", f.Reason)
		}
	}
}

func TestProcessPendingDisabledWithoutTransports(t *testing.T) {
	repo := memory.NewDeliveryRepository()
	service := NewDeliveryService(repo, delivery.NewRegistry(), testLogger())

	job := enqueueJob(t, repo, "mock",
		delivery.Recipient{ClerkUserID: "u1", Email: nullEmail("u1@parish.example")},
	)

	result, err := service.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result != (delivery.BatchResult{}) {
		t.Fatalf("disabled processor must report zero, got %+v", result)
	}
	stored, _ := repo.GetByID(context.Background(), job.ID)
	if stored.Status != delivery.StatusPending {
		t.Fatalf("disabled processor must not mutate jobs, got %s", stored.Status)
	}
}

func TestProcessPendingRespectsLimitAndOrder(t *testing.T) {
	repo := memory.NewDeliveryRepository()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	repo.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	registry, provider := mockRegistry()
	service := NewDeliveryService(repo, registry, testLogger())

	first := enqueueJob(t, repo, "mock", delivery.Recipient{ClerkUserID: "u1", Email: nullEmail("u1@parish.example")})
	second := enqueueJob(t, repo, "mock", delivery.Recipient{ClerkUserID: "u2", Email: nullEmail("u2@parish.example")})
	third := enqueueJob(t, repo, "mock", delivery.Recipient{ClerkUserID: "u3", Email: nullEmail("u3@parish.example")})

	result, err := service.ProcessPending(context.Background(), 2)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result.Processed != 2 || result.Sent != 2 {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	// Oldest two were dispatched, newest stays pending.
	for _, id := range []string{first.ID, second.ID} {
		stored, _ := repo.GetByID(context.Background(), id)
		if stored.Status != delivery.StatusSent {
			t.Fatalf("job %s expected SENT, got %s", id, stored.Status)
		}
	}
	stored, _ := repo.GetByID(context.Background(), third.ID)
	if stored.Status != delivery.StatusPending {
		t.Fatalf("newest job must remain pending, got %s", stored.Status)
	}
	if n := len(provider.Deliveries()); n != 2 {
		t.Fatalf("expected 2 transport calls, got %d", n)
	}
}

func TestConcurrentInvocationsNeverDoubleClaim(t *testing.T) {
	repo := memory.NewDeliveryRepository()
	registry, provider := mockRegistry()
	service := NewDeliveryService(repo, registry, testLogger())

	const jobCount = 20
	for i := 0; i < jobCount; i++ {
		enqueueJob(t, repo, "mock", delivery.Recipient{ClerkUserID: "u1", Email: nullEmail("u1@parish.example")})
	}

	var wg sync.WaitGroup
	results := make([]delivery.BatchResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := service.ProcessPending(context.Background(), 50)
			if err != nil {
				t.Errorf("process failed: %v", err)
				return
			}
			results[i] = r
		}(i)
	}
	wg.Wait()

	totalProcessed := 0
	for _, r := range results {
		totalProcessed += r.Processed
	}
	if totalProcessed != jobCount {
		t.Fatalf("jobs must be claimed exactly once: processed %d of %d", totalProcessed, jobCount)
	}
	if n := len(provider.Deliveries()); n != jobCount {
		t.Fatalf("expected %d transport calls, got %d", jobCount, n)
	}
}

func TestReclaimStaleRequeuesStuckJobs(t *testing.T) {
	repo := memory.NewDeliveryRepository()
	registry, _ := mockRegistry()
	service := NewDeliveryService(repo, registry, testLogger())

	job := enqueueJob(t, repo, "mock", delivery.Recipient{ClerkUserID: "u1", Email: nullEmail("u1@parish.example")})

	// Simulate a crashed worker: claim but never record an outcome.
	if _, err := repo.ClaimPending(context.Background(), 1); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	n, err := service.ReclaimStale(context.Background(), -time.Second)
	if err != nil {
		t.Fatalf("reclaim failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 requeued job, got %d", n)
	}
	stored, _ := repo.GetByID(context.Background(), job.ID)
	if stored.Status != delivery.StatusPending {
		t.Fatalf("expected PENDING after reclaim, got %s", stored.Status)
	}
}
