package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"github.com/rokyuddin/billping-api/internal/models"
)

type Emailer interface {
	Ready() error
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Service renders reminder emails and hands them to the delivery client.
type Service struct {
	emailer      Emailer
	templatesDir string
	siteURL      string
	overrideTo   string
	log          zerolog.Logger
}

func NewService(
	emailer Emailer,
	templatesDir, siteURL, overrideTo string,
	logger zerolog.Logger,
) *Service {
	logger = logger.With().Str("component", "EmailService").Logger()
	if overrideTo != "" {
		logger.Warn().
			Str("override_to", overrideTo).
			Msg("recipient override active, all reminders go to one address")
	}
	return &Service{
		emailer:      emailer,
		templatesDir: templatesDir,
		siteURL:      siteURL,
		overrideTo:   overrideTo,
		log:          logger,
	}
}

// Ready reports whether the underlying delivery client is configured.
func (e *Service) Ready() error {
	return e.emailer.Ready()
}

func daysText(daysUntil int) string {
	if daysUntil == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", daysUntil)
}

// SendReminder emails one billing reminder to the subscription owner
// (or the override recipient, when configured).
func (e *Service) SendReminder(ctx context.Context, reminder models.DueReminder, daysUntil int) error {
	sub := reminder.Subscription
	profile := reminder.Profile

	tmpl, err := template.ParseFiles(e.templatesDir + "/reminder_email.html")
	if err != nil {
		return err
	}

	fullName := profile.FullName
	if fullName == "" {
		fullName = "there"
	}

	var body bytes.Buffer
	err = tmpl.Execute(&body, map[string]string{
		"FullName": fullName,
		"Name":     sub.Name,
		"Amount":   fmt.Sprintf("%s%.2f", models.CurrencySymbol(sub.Currency), sub.Amount),
		"DaysText": daysText(daysUntil),
		"DueDate":  sub.NextBillingDate.Format("January 2, 2006"),
		"Link":     fmt.Sprintf("%s/dashboard/subscription/%s", e.siteURL, sub.ID),
	})
	if err != nil {
		return err
	}

	to := profile.Email
	if e.overrideTo != "" {
		to = e.overrideTo
	}

	subject := fmt.Sprintf("Reminder: %s payment in %s", sub.Name, daysText(daysUntil))

	return e.emailer.Send(ctx, to, subject, body.String())
}
