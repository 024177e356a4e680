package models

// SpendSummary is the aggregate view of a user's subscriptions: normalized
// monthly and yearly spend plus bills due within the next seven days.
type SpendSummary struct {
	MonthlyTotal float64        `json:"monthly_total"`
	YearlyTotal  float64        `json:"yearly_total"`
	ActiveCount  int            `json:"active_count"`
	Upcoming     []Subscription `json:"upcoming"`
}
