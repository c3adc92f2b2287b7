// Package modelstorage provides storage models.
package modelstorage

import "time"

// Link lifecycle statuses. Status only moves forward:
// draft -> published -> synced.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusSynced    = "synced"
)

// Link defines a source-path-to-destination-URL mapping record.
type Link struct {
	ID          int64     `db:"id"`
	Source      string    `db:"source"`
	Destination string    `db:"destination"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// EligibleStatuses returns the statuses eligible for manifest export and
// public listing.
func EligibleStatuses() []string {
	return []string{StatusPublished, StatusSynced}
}

// ValidStatus reports whether s is one of the known lifecycle statuses.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusSynced
}
