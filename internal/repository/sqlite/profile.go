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

// ProfileRepository stores user profiles: email, display name, the
// preference map and the browser push subscription payload.
type ProfileRepository struct {
	DB  *sql.DB
	log zerolog.Logger
	m   *metrics.Metrics
}

func NewProfileRepository(db *sql.DB, logger zerolog.Logger, m *metrics.Metrics) *ProfileRepository {
	logger = logger.With().Str("component", "ProfileRepository").Logger()
	return &ProfileRepository{DB: db, log: logger, m: m}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (models.Profile, error) {
	var (
		profile  models.Profile
		prefsRaw string
		pushRaw  sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, full_name, preferences, push_subscription, updated_at
		 FROM profiles WHERE id = ?`, id,
	).Scan(&profile.ID, &profile.Email, &profile.FullName, &prefsRaw, &pushRaw, &profile.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			r.m.BusinessErrors.WithLabelValues("profile_not_found", "warning").Inc()
			return models.Profile{}, models.ErrProfileNotFound
		}
		r.log.Error().Err(err).Ctx(ctx).
			Str("user_id", id).
			Msg("failed to query profile")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return models.Profile{}, err
	}

	if err := json.Unmarshal([]byte(prefsRaw), &profile.Preferences); err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("user_id", id).
			Msg("invalid preferences payload in storage")
		r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
		return models.Profile{}, err
	}
	if pushRaw.Valid && pushRaw.String != "" {
		var ps models.PushSubscription
		if err := json.Unmarshal([]byte(pushRaw.String), &ps); err != nil {
			r.log.Error().Err(err).Ctx(ctx).
				Str("user_id", id).
				Msg("invalid push subscription payload in storage")
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return models.Profile{}, err
		}
		profile.PushSubscription = &ps
	}
	return profile, nil
}

// Upsert creates or replaces a profile row, preserving nothing.
func (r *ProfileRepository) Upsert(ctx context.Context, profile models.Profile) error {
	prefs, err := json.Marshal(profile.Preferences)
	if err != nil {
		return err
	}

	var push any
	if profile.PushSubscription != nil {
		raw, err := json.Marshal(profile.PushSubscription)
		if err != nil {
			return err
		}
		push = string(raw)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO profiles (id, email, full_name, preferences, push_subscription, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     email = excluded.email,
		     full_name = excluded.full_name,
		     preferences = excluded.preferences,
		     push_subscription = excluded.push_subscription,
		     updated_at = excluded.updated_at`,
		profile.ID, profile.Email, profile.FullName, string(prefs), push, time.Now(),
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("user_id", profile.ID).
			Msg("failed to upsert profile")
		r.m.TechnicalErrors.WithLabelValues("db_insert_error", "critical").Inc()
		return err
	}

	r.log.Info().Ctx(ctx).
		Str("user_id", profile.ID).
		Msg("profile upserted")
	return nil
}

// SetPushSubscription stores the browser-issued subscription on the
// profile and flips the push notification preference on.
func (r *ProfileRepository) SetPushSubscription(
	ctx context.Context, userID string, sub models.PushSubscription,
) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return r.updatePush(ctx, userID, string(raw), true)
}

// ClearPushSubscription removes the stored subscription and flips the
// push preference off.
func (r *ProfileRepository) ClearPushSubscription(ctx context.Context, userID string) error {
	return r.updatePush(ctx, userID, "", false)
}

func (r *ProfileRepository) updatePush(
	ctx context.Context, userID, subscription string, enabled bool,
) error {
	profile, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	profile.Preferences.Notifications.Push = &enabled
	prefs, err := json.Marshal(profile.Preferences)
	if err != nil {
		return err
	}

	var push any
	if subscription != "" {
		push = subscription
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET push_subscription = ?, preferences = ?, updated_at = ? WHERE id = ?`,
		push, string(prefs), time.Now(), userID,
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("user_id", userID).
			Msg("failed to update push subscription")
		r.m.TechnicalErrors.WithLabelValues("db_update_error", "critical").Inc()
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		r.m.TechnicalErrors.WithLabelValues("db_rows_error", "critical").Inc()
		return err
	}
	if count == 0 {
		r.m.BusinessErrors.WithLabelValues("profile_not_found", "warning").Inc()
		return models.ErrProfileNotFound
	}

	r.log.Info().Ctx(ctx).
		Str("user_id", userID).
		Bool("push_enabled", enabled).
		Msg("push subscription updated")
	return nil
}
