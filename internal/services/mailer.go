package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/platform/resend"
	"github.com/yungbote/givebridge-backend/internal/types"
)

// Mailer delivers transactional email. Callers treat delivery as best-effort:
// errors are returned for logging but must never fail the triggering write.
type Mailer interface {
	SendDonationThanks(ctx context.Context, view *types.DonationView) error
}

// NotifyTimeout bounds a single outbound notification attempt.
const NotifyTimeout = 10 * time.Second

type resendMailer struct {
	log    *logger.Logger
	client resend.Client
}

func NewMailer(log *logger.Logger, client resend.Client) Mailer {
	return &resendMailer{
		log:    log.With("service", "Mailer"),
		client: client,
	}
}

func (m *resendMailer) SendDonationThanks(ctx context.Context, view *types.DonationView) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("mailer not configured")
	}
	if view == nil || view.Donor.Email == "" {
		return fmt.Errorf("donation view missing donor email")
	}
	campaignTitle := ""
	if view.Campaign != nil {
		campaignTitle = view.Campaign.Title
	}

	body := fmt.Sprintf(`
		<h1>Thank You for Your Generous Donation!</h1>
		<p>Dear %s,</p>
		<p>Thank you for your donation of $%.2f to the campaign "%s".</p>
		<p>Your contribution helps make a real difference and brings us closer to our goal.</p>
		<p>Together, we can create positive change!</p>
		<br>
		<p>Best regards,<br>Charity Platform Team</p>
	`, view.Donor.Username, view.Amount, campaignTitle)

	_, err := m.client.Send(ctx, resend.SendEmailRequest{
		To:      []string{view.Donor.Email},
		Subject: "Thank You for Your Donation",
		HTML:    body,
	})
	return err
}

// nopMailer stands in when no email provider is configured.
type nopMailer struct {
	log *logger.Logger
}

func NewNopMailer(log *logger.Logger) Mailer {
	return &nopMailer{log: log.With("service", "NopMailer")}
}

func (m *nopMailer) SendDonationThanks(ctx context.Context, view *types.DonationView) error {
	if view != nil {
		m.log.Debug("Skipping donation thank-you email; mailer disabled", "donation_id", view.ID)
	}
	return nil
}
