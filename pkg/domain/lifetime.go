package domain

import "time"

// IsExpired reports whether an absolute expiry has been reached at now.
// A credential is unusable at or after its expiry instant, so the boundary
// itself counts as expired.
//
// Example:
//
//	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
//	IsExpired(expiry, expiry)                     // true
//	IsExpired(expiry, expiry.Add(-time.Nanosecond)) // false
func IsExpired(expiry, now time.Time) bool {
	return !now.Before(expiry)
}
