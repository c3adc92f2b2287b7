// Package modellink provides service-level models.
package modellink

import (
	"time"

	"github.com/localan/shortener/internal/storage/modelstorage"
)

// Link is the service view of a stored link record.
type Link struct {
	ID          int64
	Source      string
	Destination string
	Title       string
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Redirect is a single manifest entry consumed by the edge router.
// Temporary redirects are emitted so destinations remain editable without
// a deploy.
type Redirect struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Permanent   bool   `json:"permanent"`
}

// Manifest is the static redirect file consumed by the edge router at
// deploy time. Entries are unique by source and sorted by source.
type Manifest struct {
	Redirects []Redirect `json:"redirects"`
}

// FromStorage converts a storage record into its service view.
func FromStorage(record modelstorage.Link) Link {
	return Link{
		ID:          record.ID,
		Source:      record.Source,
		Destination: record.Destination,
		Title:       record.Title,
		Description: record.Description,
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
