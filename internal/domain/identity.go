package domain

import "time"

// Identity is the authenticated caller, taken from a verified session token.
// It is passed explicitly into every service call that acts on behalf of a
// user.
type Identity struct {
	UserID    int64
	Email     string
	Name      string
	TokenID   string
	ExpiresAt time.Time
}
