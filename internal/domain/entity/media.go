package entity

import (
	"time"

	"github.com/google/uuid"
)

// Media is the metadata record for an uploaded file. The bytes live in the
// object store under StorageKey; this row owns the key's lifecycle.
type Media struct {
	ID         uuid.UUID
	FileName   string // Original client-side file name.
	StorageKey string // Key of the blob in the object store.
	MimeType   string
	Size       int64
	// OwnerID links the media to an account. A nil owner past the orphan
	// grace period makes the row (and its blob) eligible for the sweep.
	OwnerID   *uuid.UUID
	CreatedAt time.Time
}

// IsOrphan reports whether the media is ownerless and older than the grace
// period at the given instant.
func (m *Media) IsOrphan(now time.Time, gracePeriod time.Duration) bool {
	return m.OwnerID == nil && now.Sub(m.CreatedAt) > gracePeriod
}
