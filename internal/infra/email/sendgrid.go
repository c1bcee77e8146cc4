// internal/infra/email/sendgrid.go
package email

import (
	"context"
	"fmt"
	"net/http"

	"parish_lms/internal/domain/delivery"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridProvider dispatches delivery jobs through the SendGrid v3 mail API.
// Each recipient is sent individually so one rejected address does not fail
// the rest of the job.
type SendgridProvider struct {
	key    string
	from   *sgmail.Email
	logger *logrus.Logger
}

var _ delivery.Provider = (*SendgridProvider)(nil)

func NewSendgridProvider(apiKey, fromName, fromAddress string, logger *logrus.Logger) *SendgridProvider {
	return &SendgridProvider{
		key:    apiKey,
		from:   sgmail.NewEmail(fromName, fromAddress),
		logger: logger,
	}
}

func (p *SendgridProvider) Deliver(_ context.Context, subject, body string, recipients []delivery.Recipient) (delivery.Outcome, error) {
	if p.key == "" {
		return delivery.Outcome{}, fmt.Errorf("sendgrid transport is not configured")
	}

	outcome := delivery.Outcome{}
	for _, rec := range recipients {
		if err := p.send(subject, body, rec); err != nil {
			p.logger.WithFields(logrus.Fields{
				"clerk_user_id": rec.ClerkUserID,
			}).WithError(err).Error("sendgrid dispatch failed")
			outcome.Failed = append(outcome.Failed, delivery.RecipientFailure{
				ClerkUserID: rec.ClerkUserID,
				Reason:      err.Error(),
			})
			continue
		}
		outcome.Sent = append(outcome.Sent, rec.ClerkUserID)
	}
	return outcome, nil
}

func (p *SendgridProvider) send(subject, body string, rec delivery.Recipient) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(p.from)

	pers := sgmail.NewPersonalization()
	pers.Subject = subject
	pers.AddTos(sgmail.NewEmail("", rec.Email.String))
	m.AddPersonalizations(pers)
	m.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(p.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}
