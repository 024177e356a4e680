package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rokyuddin/billping-api/internal/metrics"
	"github.com/rokyuddin/billping-api/internal/models"
)

type subscriptionRepository interface {
	Create(ctx context.Context, sub models.Subscription) error
	GetByID(ctx context.Context, userID, id string) (models.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	Update(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, userID, id string) error
}

// Service owns the user-facing subscription lifecycle and spend aggregates.
type Service struct {
	repo subscriptionRepository
	log  zerolog.Logger
	m    *metrics.Metrics
}

func NewService(repo subscriptionRepository, logger zerolog.Logger, m *metrics.Metrics) *Service {
	logger = logger.With().Str("component", "SubscriptionService").Logger()
	return &Service{repo: repo, log: logger, m: m}
}

func (s *Service) Create(
	ctx context.Context, userID string, in models.SubscriptionInput,
) (models.Subscription, error) {
	date, err := time.ParseInLocation(models.DateLayout, in.NextBillingDate, time.Local)
	if err != nil {
		return models.Subscription{}, err
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	status := in.Status
	if status == "" {
		status = models.StatusActive
	}

	now := time.Now()
	sub := models.Subscription{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            in.Name,
		Category:        in.Category,
		Amount:          in.Amount,
		Currency:        currency,
		BillingCycle:    in.BillingCycle,
		NextBillingDate: date,
		WebsiteURL:      in.WebsiteURL,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return models.Subscription{}, err
	}

	s.m.SubscriptionsCreated.WithLabelValues(sub.BillingCycle).Inc()
	s.log.Info().Ctx(ctx).
		Str("subscription_id", sub.ID).
		Str("user_id", userID).
		Msg("subscription created")
	return sub, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (models.Subscription, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Subscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Update(
	ctx context.Context, userID, id string, in models.SubscriptionInput,
) (models.Subscription, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return models.Subscription{}, err
	}

	date, err := time.ParseInLocation(models.DateLayout, in.NextBillingDate, time.Local)
	if err != nil {
		return models.Subscription{}, err
	}

	existing.Name = in.Name
	existing.Category = in.Category
	existing.Amount = in.Amount
	if in.Currency != "" {
		existing.Currency = in.Currency
	}
	existing.BillingCycle = in.BillingCycle
	existing.NextBillingDate = date
	existing.WebsiteURL = in.WebsiteURL
	if in.Status != "" {
		existing.Status = in.Status
	}
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return models.Subscription{}, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.m.SubscriptionsDeleted.Inc()
	return nil
}

// Summary aggregates the user's active subscriptions the way the dashboard
// presents them: monthly total (yearly spread over 12 months, weekly
// counted 4.33 times), yearly total, and bills due in the next 7 days.
func (s *Service) Summary(ctx context.Context, userID string) (models.SpendSummary, error) {
	const upcomingWindowDays = 7

	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return models.SpendSummary{}, err
	}

	summary := models.SpendSummary{Upcoming: []models.Subscription{}}
	now := time.Now()
	// billing dates are stored as local midnights, so the window starts at
	// the local start of today, not the UTC one Truncate would give
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	windowEnd := now.AddDate(0, 0, upcomingWindowDays)

	for _, sub := range subs {
		if sub.Status != models.StatusActive {
			continue
		}
		summary.ActiveCount++
		summary.MonthlyTotal += sub.MonthlyAmount()

		if !sub.NextBillingDate.Before(windowStart) &&
			sub.NextBillingDate.Before(windowEnd) {
			summary.Upcoming = append(summary.Upcoming, sub)
		}
	}
	summary.YearlyTotal = summary.MonthlyTotal * 12

	return summary, nil
}
