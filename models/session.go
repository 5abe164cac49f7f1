package models

import "time"

// Session is an authenticated bearer session for an account.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"accountId"`
	IsMaster  bool      `json:"isMaster"` // cached from the account for quick access
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
}

// IsExpired reports whether the session has passed its expiry.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
