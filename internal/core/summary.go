package core

import "time"

// Removal summarises a bulk deletion, computed before the records are removed.
type Removal struct {
	Count int
	Sum   int64
}

// Empty reports whether nothing matched.
func (r Removal) Empty() bool {
	return r.Count == 0
}

// UserProfile is the lightweight record kept for every chat user.
type UserProfile struct {
	ID           string
	Name         string
	LastActivity time.Time
}

// Donor is a recipient of the scheduled daily report.
type Donor struct {
	UserID  string
	AddedBy string
	Date    time.Time
	Status  string
}
