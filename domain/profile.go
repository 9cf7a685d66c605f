package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the extended, optional profile a user may attach to their
// account. At most one per user; created, updated and deleted only by its
// owner.
type Profile struct {
	ID        uuid.UUID
	OwnerID   string
	Location  string
	Website   string
	CoverRef  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
