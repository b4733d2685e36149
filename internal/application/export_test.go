package application

import "time"

// SetNowFunc overrides the service clock in tests.
func SetNowFunc(s *Service, fn func() time.Time) {
	s.nowFn = fn
}
