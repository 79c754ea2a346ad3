package service

import "time"

// SetNow replaces the clock used for issuing and validating tokens.
func (s *AuthService) SetNow(now func() time.Time) {
	s.now = now
}
