package entity

import (
	"time"
)

// TrustedDevice is an allow-list entry for a known (IP, user agent) pair.
// Entries are only ever created through the explicit device management API;
// the login flow reads them but never writes them.
type TrustedDevice struct {
	ID          string
	UserID      string
	Fingerprint string
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}
