package domain

import (
	"strings"
	"time"
)

// TokenRecord is the device token registered by the client application for a user.
type TokenRecord struct {
	Token     string
	UpdatedAt time.Time
}

// Age returns the record age at now. A missing UpdatedAt counts from the unix epoch.
func (r TokenRecord) Age(now time.Time) time.Duration {
	if r.UpdatedAt.IsZero() {
		return now.Sub(time.UnixMilli(0))
	}
	return now.Sub(r.UpdatedAt)
}

const maxUserIdLen = 768

// ValidUserId reports whether the id can be used as a single realtime database key.
func ValidUserId(userId string) bool {
	if userId == "" || len(userId) > maxUserIdLen {
		return false
	}
	return !strings.ContainsAny(userId, ".$#[]/")
}
