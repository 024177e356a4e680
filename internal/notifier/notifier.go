package notifier

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rokyuddin/billping-api/internal/metrics"
	"github.com/rokyuddin/billping-api/internal/models"
)

const (
	timeoutDuration = 30 * time.Second

	hoursPerDay = 24
)

// reminderOffsets is the three-point reminder schedule: a bill triggers a
// reminder exactly 1, 3 and 7 days before its due date, never in between.
var reminderOffsets = []int{1, 3, 7}

type subscriptionRepository interface {
	ListDueWithProfiles(ctx context.Context, targets []time.Time) ([]models.DueReminder, error)
}

type emailSender interface {
	Ready() error
	SendReminder(ctx context.Context, reminder models.DueReminder, daysUntil int) error
}

type pushSender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload models.PushPayload) error
}

// Notifier runs the reminder dispatch job: select subscriptions due in
// 1, 3 or 7 days and fan each out to email and best-effort browser push.
// Nothing records that a reminder went out, so repeated runs within the
// same offset window re-send.
type Notifier struct {
	repo         subscriptionRepository
	emailService emailSender
	pushService  pushSender
	logger       zerolog.Logger
	cron         *cron.Cron
	cancel       context.CancelFunc
	m            *metrics.Metrics
	schedule     string
}

func New(
	repo subscriptionRepository,
	es emailSender,
	ps pushSender,
	logger zerolog.Logger,
	schedule string,
	m *metrics.Metrics,
) *Notifier {
	logger = logger.With().Str("component", "Notifier").Logger()
	c := cron.New(cron.WithSeconds())
	return &Notifier{
		repo:         repo,
		emailService: es,
		pushService:  ps,
		logger:       logger,
		cron:         c,
		schedule:     schedule,
		m:            m,
	}
}

// Start schedules the periodic dispatch run.
func (n *Notifier) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	if _, err := n.cron.AddFunc(n.schedule, func() {
		if _, err := n.RunOnce(ctx, "cron"); err != nil {
			n.logger.Error().Err(err).Msg("scheduled reminder run failed")
		}
	}); err != nil {
		n.logger.Error().Err(err).Msg("failed to schedule reminder job")
		n.m.TechnicalErrors.WithLabelValues("cron_schedule_error", "critical").Inc()
		return
	}

	n.cron.Start()
	n.logger.Info().Str("schedule", n.schedule).Msg("Reminder notifier started")
}

// Stop cancels the schedule and waits for a running job to finish.
func (n *Notifier) Stop() {
	n.cancel()
	stopCtx := n.cron.Stop()
	<-stopCtx.Done()
	n.logger.Info().Msg("All reminder jobs finished, notifier stopped")
}

// RunOnce performs a single dispatch pass and returns its summary.
// A missing email credential or a failed selection query aborts the whole
// run; individual email failures are tallied and do not stop other
// recipients; push failures are logged and never surfaced.
func (n *Notifier) RunOnce(ctx context.Context, trigger string) (models.ReminderSummary, error) {
	start := time.Now()
	n.logger.Debug().Str("trigger", trigger).Msg("starting reminder run")

	ctx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()

	n.m.ReminderRuns.WithLabelValues(trigger).Inc()

	if err := n.emailService.Ready(); err != nil {
		n.logger.Error().Err(err).Msg("email delivery is not configured, aborting run")
		n.m.TechnicalErrors.WithLabelValues("email_not_configured", "critical").Inc()
		return models.ReminderSummary{}, err
	}

	today := time.Now()
	targets := make([]time.Time, 0, len(reminderOffsets))
	for _, offset := range reminderOffsets {
		targets = append(targets, today.AddDate(0, 0, offset))
	}

	due, err := n.repo.ListDueWithProfiles(ctx, targets)
	if err != nil {
		n.logger.Error().Err(err).Msg("error fetching due subscriptions")
		n.m.TechnicalErrors.WithLabelValues("fetch_due_subs", "critical").Inc()
		return models.ReminderSummary{}, err
	}
	n.logger.Info().Int("count", len(due)).Msg("fetched due subscriptions")

	summary := models.ReminderSummary{
		Success: true,
		Details: models.ReminderDetails{
			EmailsSent: []models.SentReminder{},
			Errors:     []models.ReminderError{},
		},
	}

	for _, reminder := range due {
		n.dispatchOne(ctx, reminder, today, &summary)
	}

	summary.EmailsSent = len(summary.Details.EmailsSent)
	summary.Errors = len(summary.Details.Errors)

	dur := time.Since(start)
	n.m.ReminderRunDuration.WithLabelValues(trigger).Observe(dur.Seconds())
	n.logger.Info().
		Str("trigger", trigger).
		Int("emails_sent", summary.EmailsSent).
		Int("errors", summary.Errors).
		Dur("duration", dur).
		Msg("completed reminder run")
	return summary, nil
}

// dispatchOne handles a single due subscription: an email attempt unless
// the owner opted out, then an independent best-effort push attempt.
func (n *Notifier) dispatchOne(
	ctx context.Context,
	reminder models.DueReminder,
	today time.Time,
	summary *models.ReminderSummary,
) {
	sub := reminder.Subscription
	profile := reminder.Profile
	daysUntil := daysUntil(today, sub.NextBillingDate)

	if profile.Preferences.EmailEnabled() {
		if err := n.emailService.SendReminder(ctx, reminder, daysUntil); err != nil {
			n.logger.Error().Err(err).
				Str("subscription_id", sub.ID).
				Str("email", profile.Email).
				Msg("email send error")
			n.m.EmailFailures.Inc()
			summary.Details.Errors = append(summary.Details.Errors, models.ReminderError{
				Subscription: sub.Name,
				Error:        err.Error(),
			})
		} else {
			n.m.RemindersEmailed.Inc()
			summary.Details.EmailsSent = append(summary.Details.EmailsSent, models.SentReminder{
				Subscription: sub.Name,
				User:         profile.Email,
				DaysUntil:    daysUntil,
			})
		}
	} else {
		n.logger.Debug().
			Str("subscription_id", sub.ID).
			Msg("email notifications disabled for owner, skipping email")
	}

	// Push is a best-effort enhancement channel: an email failure above
	// does not suppress it, and its own failures never fail the run.
	if !profile.Preferences.PushEnabled() || profile.PushSubscription == nil {
		return
	}

	payload := buildPushPayload(sub, daysUntil)
	if err := n.pushService.Send(ctx, *profile.PushSubscription, payload); err != nil {
		n.logger.Error().Err(err).
			Str("subscription_id", sub.ID).
			Str("user_id", profile.ID).
			Msg("push notification error")
		n.m.PushFailures.Inc()
		return
	}
	n.m.PushesSent.Inc()
}

// daysUntil is the ceiling of the date difference in days, so a bill due
// tomorrow morning still counts as one day out.
func daysUntil(now, due time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / hoursPerDay))
}

func buildPushPayload(sub models.Subscription, daysUntil int) models.PushPayload {
	dueWord := fmt.Sprintf("in %d Days", daysUntil)
	if daysUntil == 1 {
		dueWord = "Tomorrow"
	}

	return models.PushPayload{
		Title: fmt.Sprintf("%s - Bill Due %s", sub.Name, dueWord),
		Body: fmt.Sprintf("%s%.2f will be charged on %s",
			models.CurrencySymbol(sub.Currency), sub.Amount,
			sub.NextBillingDate.Format("1/2/2006")),
		Icon:  "/icon-192.png",
		Badge: "/icon-192.png",
		Tag:   "bill-" + sub.ID,
		Data: models.PushPayloadData{
			URL:            "/dashboard/subscription/" + sub.ID,
			SubscriptionID: sub.ID,
			Amount:         sub.Amount,
			Currency:       sub.Currency,
		},
	}
}
