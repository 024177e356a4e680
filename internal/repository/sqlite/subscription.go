package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/rokyuddin/billping-api/internal/metrics"
	"github.com/rokyuddin/billping-api/internal/models"
)

// SubscriptionRepository handles CRUD operations on subscriptions with
// structured logging and metrics.
type SubscriptionRepository struct {
	DB  *sql.DB
	log zerolog.Logger
	m   *metrics.Metrics
}

func NewSubscriptionRepository(
	db *sql.DB,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *SubscriptionRepository {
	logger = logger.With().Str("component", "SubscriptionRepository").Logger()
	return &SubscriptionRepository{DB: db, log: logger, m: m}
}

// Create inserts a new subscription row.
func (r *SubscriptionRepository) Create(ctx context.Context, sub models.Subscription) error {
	start := time.Now()
	r.log.Debug().Ctx(ctx).
		Str("user_id", sub.UserID).
		Str("name", sub.Name).
		Msg("inserting new subscription record")

	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO subscriptions
		    (id, user_id, name, category, amount, currency, billing_cycle,
		     next_billing_date, website_url, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.Name, sub.Category, sub.Amount, sub.Currency,
		sub.BillingCycle, sub.NextBillingDate.Format(models.DateLayout),
		sub.WebsiteURL, sub.Status, sub.CreatedAt, sub.UpdatedAt,
	)
	dur := time.Since(start)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Dur("duration", dur).
			Msg("failed to insert subscription")
		r.m.TechnicalErrors.WithLabelValues("db_insert_error", "critical").Inc()
		return err
	}

	r.log.Info().Ctx(ctx).
		Str("subscription_id", sub.ID).
		Str("user_id", sub.UserID).
		Dur("duration", dur).
		Msg("subscription created successfully")
	return nil
}

// GetByID fetches a single subscription scoped to its owning user.
func (r *SubscriptionRepository) GetByID(
	ctx context.Context, userID, id string,
) (models.Subscription, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, name, category, amount, currency, billing_cycle,
		        next_billing_date, website_url, status, created_at, updated_at
		 FROM subscriptions WHERE id = ? AND user_id = ?`, id, userID,
	)

	sub, err := scanSubscription(row)
	if err != nil {
		if err == sql.ErrNoRows {
			r.m.BusinessErrors.WithLabelValues("subscription_not_found", "warning").Inc()
			return models.Subscription{}, models.ErrSubscriptionNotFound
		}
		r.log.Error().Err(err).Ctx(ctx).
			Str("subscription_id", id).
			Msg("failed to query subscription")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return models.Subscription{}, err
	}
	return sub, nil
}

// ListByUser returns all subscriptions owned by a user.
func (r *SubscriptionRepository) ListByUser(
	ctx context.Context, userID string,
) ([]models.Subscription, error) {
	start := time.Now()

	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, name, category, amount, currency, billing_cycle,
		        next_billing_date, website_url, status, created_at, updated_at
		 FROM subscriptions WHERE user_id = ? ORDER BY next_billing_date`, userID,
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("user_id", userID).
			Msg("failed to query subscriptions by user")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return nil, err
	}
	defer r.closeRows(ctx, rows)

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			r.log.Error().Err(err).Ctx(ctx).Msg("failed to scan subscription row")
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		r.m.TechnicalErrors.WithLabelValues("db_rows_error", "critical").Inc()
		return nil, err
	}

	r.log.Info().Ctx(ctx).
		Str("user_id", userID).
		Int("count", len(subs)).
		Dur("duration", time.Since(start)).
		Msg("retrieved subscriptions")
	return subs, nil
}

// Update rewrites all mutable fields of a subscription, scoped to its user.
func (r *SubscriptionRepository) Update(ctx context.Context, sub models.Subscription) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscriptions
		 SET name = ?, category = ?, amount = ?, currency = ?, billing_cycle = ?,
		     next_billing_date = ?, website_url = ?, status = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		sub.Name, sub.Category, sub.Amount, sub.Currency, sub.BillingCycle,
		sub.NextBillingDate.Format(models.DateLayout), sub.WebsiteURL, sub.Status,
		sub.UpdatedAt, sub.ID, sub.UserID,
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("subscription_id", sub.ID).
			Msg("failed to update subscription")
		r.m.TechnicalErrors.WithLabelValues("db_update_error", "critical").Inc()
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		r.m.TechnicalErrors.WithLabelValues("db_rows_error", "critical").Inc()
		return err
	}
	if count == 0 {
		r.m.BusinessErrors.WithLabelValues("subscription_not_found", "warning").Inc()
		return models.ErrSubscriptionNotFound
	}

	r.log.Info().Ctx(ctx).
		Str("subscription_id", sub.ID).
		Msg("subscription updated successfully")
	return nil
}

// Delete removes a subscription, scoped to its owning user.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("subscription_id", id).
			Msg("failed to delete subscription")
		r.m.TechnicalErrors.WithLabelValues("db_delete_error", "critical").Inc()
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		r.m.TechnicalErrors.WithLabelValues("db_rows_error", "critical").Inc()
		return err
	}
	if count == 0 {
		r.m.BusinessErrors.WithLabelValues("subscription_not_found", "warning").Inc()
		return models.ErrSubscriptionNotFound
	}

	r.log.Info().Ctx(ctx).
		Str("subscription_id", id).
		Msg("subscription deleted")
	return nil
}

// ListDueWithProfiles selects every active subscription whose next billing
// date equals one of the given target dates, joined with the owning
// profile's email, display name, preference map and push subscription.
func (r *SubscriptionRepository) ListDueWithProfiles(
	ctx context.Context, targets []time.Time,
) ([]models.DueReminder, error) {
	start := time.Now()

	query := `SELECT s.id, s.user_id, s.name, s.category, s.amount, s.currency,
	                 s.billing_cycle, s.next_billing_date, s.website_url, s.status,
	                 s.created_at, s.updated_at,
	                 p.id, p.email, p.full_name, p.preferences, p.push_subscription
	          FROM subscriptions s
	          JOIN profiles p ON p.id = s.user_id
	          WHERE s.status = ? AND s.next_billing_date IN (`
	args := []any{models.StatusActive}
	for i, t := range targets {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, t.Format(models.DateLayout))
	}
	query += ")"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Msg("failed to query due subscriptions")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return nil, err
	}
	defer r.closeRows(ctx, rows)

	var due []models.DueReminder
	for rows.Next() {
		var (
			sub      models.Subscription
			profile  models.Profile
			dateStr  string
			website  sql.NullString
			prefsRaw string
			pushRaw  sql.NullString
		)
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.Name, &sub.Category, &sub.Amount,
			&sub.Currency, &sub.BillingCycle, &dateStr, &website, &sub.Status,
			&sub.CreatedAt, &sub.UpdatedAt,
			&profile.ID, &profile.Email, &profile.FullName, &prefsRaw, &pushRaw,
		); err != nil {
			r.log.Error().Err(err).Ctx(ctx).Msg("failed to scan due reminder row")
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return nil, err
		}

		sub.NextBillingDate, err = time.ParseInLocation(models.DateLayout, dateStr, time.Local)
		if err != nil {
			r.log.Error().Err(err).Ctx(ctx).
				Str("subscription_id", sub.ID).
				Str("next_billing_date", dateStr).
				Msg("invalid billing date in storage")
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return nil, err
		}
		sub.WebsiteURL = website.String

		if err := json.Unmarshal([]byte(prefsRaw), &profile.Preferences); err != nil {
			r.log.Error().Err(err).Ctx(ctx).
				Str("user_id", profile.ID).
				Msg("invalid preferences payload in storage")
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return nil, err
		}
		if pushRaw.Valid && pushRaw.String != "" {
			var ps models.PushSubscription
			if err := json.Unmarshal([]byte(pushRaw.String), &ps); err != nil {
				r.log.Error().Err(err).Ctx(ctx).
					Str("user_id", profile.ID).
					Msg("invalid push subscription payload in storage")
				r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
				return nil, err
			}
			profile.PushSubscription = &ps
		}

		due = append(due, models.DueReminder{Subscription: sub, Profile: profile})
	}
	if err := rows.Err(); err != nil {
		r.m.TechnicalErrors.WithLabelValues("db_rows_error", "critical").Inc()
		return nil, err
	}

	r.log.Info().Ctx(ctx).
		Int("count", len(due)).
		Dur("duration", time.Since(start)).
		Msg("retrieved due subscriptions")
	return due, nil
}

func (r *SubscriptionRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to close rows after query")
		r.m.TechnicalErrors.WithLabelValues("db_rows_close_error", "critical").Inc()
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (models.Subscription, error) {
	var (
		sub     models.Subscription
		dateStr string
		website sql.NullString
	)
	if err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Name, &sub.Category, &sub.Amount,
		&sub.Currency, &sub.BillingCycle, &dateStr, &website, &sub.Status,
		&sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		return models.Subscription{}, err
	}

	date, err := time.ParseInLocation(models.DateLayout, dateStr, time.Local)
	if err != nil {
		return models.Subscription{}, err
	}
	sub.NextBillingDate = date
	sub.WebsiteURL = website.String
	return sub, nil
}
