package models

import (
	"time"

	id "privid/pkg/domain"
)

// Verifier is a principal's authorization to resolve verification requests.
// Unknown principals are unauthorized; a record exists once the administrator
// has toggled it at least once.
type Verifier struct {
	Principal  id.Principal
	Authorized bool
	UpdatedAt  time.Time
}

// View joins the registry record with the verifier's ledger reputation.
type View struct {
	Principal  id.Principal
	Authorized bool
	Reputation int
	UpdatedAt  *time.Time
}
