package models

// SubscriptionInput is the request body for creating or updating a
// subscription. Next billing date uses the YYYY-MM-DD wire format.
type SubscriptionInput struct {
	Name            string  `json:"name" binding:"required"`
	Category        string  `json:"category"`
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	Currency        string  `json:"currency"`
	BillingCycle    string  `json:"billing_cycle" binding:"required,oneof=weekly monthly yearly custom"`
	NextBillingDate string  `json:"next_billing_date" binding:"required,datetime=2006-01-02"`
	WebsiteURL      string  `json:"website_url"`
	Status          string  `json:"status" binding:"omitempty,oneof=active paused cancelled"`
}
