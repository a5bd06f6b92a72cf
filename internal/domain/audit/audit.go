// Package audit holds the who/when bookkeeping shared by every persisted entity.
// The stamping functions are pure so they can be tested without a database.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time. Services inject it so tests can pin time.
type Clock func() time.Time

// SystemClock is the default Clock, truncated to microseconds so values
// survive a round trip through PostgreSQL timestamps.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Fields are the audit columns carried by Client and Company.
type Fields struct {
	CreatedBy uuid.UUID
	UpdatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StampCreate returns f with both creator and updater set to userID.
func StampCreate(f Fields, userID uuid.UUID, clock Clock) Fields {
	now := clock()
	f.CreatedBy = userID
	f.UpdatedBy = userID
	f.CreatedAt = now
	f.UpdatedAt = now
	return f
}

// StampUpdate returns f with the updater set to userID. CreatedBy and
// CreatedAt are left untouched.
func StampUpdate(f Fields, userID uuid.UUID, clock Clock) Fields {
	f.UpdatedBy = userID
	f.UpdatedAt = clock()
	return f
}
