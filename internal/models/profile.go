package models

import "time"

// NotificationPrefs mirrors the notifications sub-map of a profile's
// preference bag. Pointers distinguish "unset" from an explicit choice.
type NotificationPrefs struct {
	Email *bool `json:"email,omitempty"`
	Push  *bool `json:"push,omitempty"`
}

type Preferences struct {
	Notifications NotificationPrefs `json:"notifications"`
}

// EmailEnabled defaults to true when the flag is unset.
func (p Preferences) EmailEnabled() bool {
	if p.Notifications.Email == nil {
		return true
	}
	return *p.Notifications.Email
}

// PushEnabled defaults to false when the flag is unset.
func (p Preferences) PushEnabled() bool {
	if p.Notifications.Push == nil {
		return false
	}
	return *p.Notifications.Push
}

// PushKeys are the browser-issued encryption keys of a push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// PushSubscription is the opaque credential issued by the browser's push
// service: delivery endpoint plus encryption keys.
type PushSubscription struct {
	Endpoint string   `json:"endpoint" binding:"required"`
	Keys     PushKeys `json:"keys" binding:"required"`
}

type Profile struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	FullName         string            `json:"full_name"`
	Preferences      Preferences       `json:"preferences"`
	PushSubscription *PushSubscription `json:"push_subscription,omitempty"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
