package models

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrProfileNotFound      = errors.New("profile not found")
)
