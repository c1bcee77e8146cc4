// internal/infra/email/mock.go
package email

import (
	"context"
	"sync"

	"parish_lms/internal/domain/delivery"
)

// MockProvider is the deterministic transport used in testing and staging: it
// never contacts a real mail service and marks every recipient as sent. The
// processor has already filtered out recipients with no email on file before
// the transport is invoked.
type MockProvider struct {
	mu        sync.Mutex
	delivered []MockDelivery
}

// MockDelivery records one Deliver invocation for inspection in tests.
type MockDelivery struct {
	Subject    string
	Body       string
	Recipients []delivery.Recipient
}

var _ delivery.Provider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Deliver(_ context.Context, subject, body string, recipients []delivery.Recipient) (delivery.Outcome, error) {
	p.mu.Lock()
	p.delivered = append(p.delivered, MockDelivery{
		Subject:    subject,
		Body:       body,
		Recipients: append([]delivery.Recipient(nil), recipients...),
	})
	p.mu.Unlock()

	outcome := delivery.Outcome{}
	for _, r := range recipients {
		outcome.Sent = append(outcome.Sent, r.ClerkUserID)
	}
	return outcome, nil
}

// Deliveries returns a snapshot of everything delivered so far.
func (p *MockProvider) Deliveries() []MockDelivery {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]MockDelivery(nil), p.delivered...)
}
