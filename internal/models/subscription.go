package models

import "time"

const (
	CycleWeekly  = "weekly"
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
	CycleCustom  = "custom"

	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCancelled = "cancelled"
)

// DateLayout is the wire and storage format of billing dates.
const DateLayout = "2006-01-02"

type Subscription struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Category        string    `json:"category,omitempty"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	BillingCycle    string    `json:"billing_cycle"`
	NextBillingDate time.Time `json:"next_billing_date"`
	WebsiteURL      string    `json:"website_url,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MonthlyAmount normalizes the subscription price to a per-month figure.
// Weekly charges count 4.33 weeks per month, custom cycles count as monthly.
func (s Subscription) MonthlyAmount() float64 {
	const weeksPerMonth = 4.33
	switch s.BillingCycle {
	case CycleYearly:
		return s.Amount / 12
	case CycleWeekly:
		return s.Amount * weeksPerMonth
	default:
		return s.Amount
	}
}
