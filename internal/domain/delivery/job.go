// internal/domain/delivery/job.go
package delivery

import (
	"database/sql"
	"time"
)

// Status represents the lifecycle state of a delivery job.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSent       Status = "SENT"
	StatusFailed     Status = "FAILED"
)

// Recipient is one addressee of a delivery job. Email may be unset when the
// identity provider has no email on file for the user.
type Recipient struct {
	ClerkUserID string
	Email       sql.NullString
}

// Job is a queued outbound communication awaiting dispatch. Created by an
// upstream compose action; mutated only by the processor. SENT and FAILED are
// terminal.
type Job struct {
	ID         string
	ParishID   string
	Subject    string
	Body       string
	Provider   string // provider name, resolved via the Registry
	Status     Status
	Recipients []Recipient
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecipientFailure records why a single recipient could not be delivered to.
type RecipientFailure struct {
	ClerkUserID string
	Reason      string
}

// Outcome is the per-recipient result of dispatching one job. It is recorded
// for inspection and manual resend but is not an entity of its own; the job's
// terminal status is derived from it.
type Outcome struct {
	Sent   []string
	Failed []RecipientFailure
}

// BatchResult summarizes one processor invocation for observability.
type BatchResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}
