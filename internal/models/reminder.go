package models

// DueReminder pairs a subscription inside a reminder window with the
// profile that owns it. Derived at dispatch time, never persisted.
type DueReminder struct {
	Subscription Subscription
	Profile      Profile
}

type SentReminder struct {
	Subscription string `json:"subscription"`
	User         string `json:"user"`
	DaysUntil    int    `json:"daysUntil"`
}

type ReminderError struct {
	Subscription string `json:"subscription"`
	Error        string `json:"error"`
}

type ReminderDetails struct {
	EmailsSent []SentReminder  `json:"emailsSent"`
	Errors     []ReminderError `json:"errors"`
}

// ReminderSummary is the dispatch run result returned to the caller.
type ReminderSummary struct {
	Success    bool            `json:"success"`
	EmailsSent int             `json:"emailsSent"`
	Errors     int             `json:"errors"`
	Details    ReminderDetails `json:"details"`
}

// PushPayloadData is the click-through data carried by a push notification.
type PushPayloadData struct {
	URL            string  `json:"url"`
	SubscriptionID string  `json:"subscriptionId"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}

// PushPayload is the JSON body delivered to the browser's service worker.
type PushPayload struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon"`
	Badge string          `json:"badge"`
	Tag   string          `json:"tag"`
	Data  PushPayloadData `json:"data"`
}
