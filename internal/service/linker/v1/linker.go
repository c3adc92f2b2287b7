// Package linker implements the link lifecycle service.
package linker

import (
	"context"
	"strings"

	"go.uber.org/zap"

	serviceErrors "github.com/localan/shortener/internal/service/errors"
	"github.com/localan/shortener/internal/service/linker"
	"github.com/localan/shortener/internal/service/modellink"
	"github.com/localan/shortener/internal/storage"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

// Check interface implementation explicitly
var (
	_ linker.Processor = (*Linker)(nil)
)

// Linker struct defines data structure handling and provides support for
// adding new implementations.
type Linker struct {
	linkStorage storage.LinkStorage
	log         *zap.Logger
}

// InitLinker initializes a Linker object and sets its attributes.
func InitLinker(s storage.LinkStorage, log *zap.Logger) (*Linker, error) {
	if s == nil {
		return nil, &serviceErrors.NilDependencyError{Msg: "nil storage was passed to service initializer"}
	}
	return &Linker{linkStorage: s, log: log}, nil
}

// Create validates and normalizes the submitted fields and stores a new
// link in the draft status.
func (l *Linker) Create(ctx context.Context, source, destination, title, description string) (modellink.Link, error) {
	source, destination, err := normalize(source, destination)
	if err != nil {
		return modellink.Link{}, err
	}
	record, err := l.linkStorage.Create(ctx, modelstorage.Link{
		Source:      source,
		Destination: destination,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      modelstorage.StatusDraft,
	})
	if err != nil {
		return modellink.Link{}, err
	}
	l.log.Info("link created", zap.Int64("id", record.ID), zap.String("source", record.Source))
	return modellink.FromStorage(record), nil
}

// Get returns a link by its id.
func (l *Linker) Get(ctx context.Context, id int64) (modellink.Link, error) {
	record, err := l.linkStorage.Get(ctx, id)
	if err != nil {
		return modellink.Link{}, err
	}
	return modellink.FromStorage(record), nil
}

// List returns links filtered by status, newest first.
func (l *Linker) List(ctx context.Context, statuses ...string) ([]modellink.Link, error) {
	for _, status := range statuses {
		if !modelstorage.ValidStatus(status) {
			return nil, &serviceErrors.InvalidInputError{Msg: "unknown status filter: " + status}
		}
	}
	records, err := l.linkStorage.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// ListPublic returns only the links visible on the public surface, i.e.
// published and synced ones.
func (l *Linker) ListPublic(ctx context.Context) ([]modellink.Link, error) {
	records, err := l.linkStorage.List(ctx, modelstorage.EligibleStatuses()...)
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

// Update replaces a link's content fields. The lifecycle status is left
// untouched: an edited published or synced link keeps its status and its
// manifest entry goes stale until the next reconciliation.
func (l *Linker) Update(ctx context.Context, id int64, source, destination, title, description string) (modellink.Link, error) {
	source, destination, err := normalize(source, destination)
	if err != nil {
		return modellink.Link{}, err
	}
	record, err := l.linkStorage.Update(ctx, modelstorage.Link{
		ID:          id,
		Source:      source,
		Destination: destination,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return modellink.Link{}, err
	}
	l.log.Info("link updated", zap.Int64("id", record.ID), zap.String("source", record.Source))
	return modellink.FromStorage(record), nil
}

// Delete removes a link unconditionally, valid from any status.
func (l *Linker) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := l.linkStorage.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		l.log.Info("link deleted", zap.Int64("id", id))
	}
	return removed, nil
}

// Approve moves a draft link to published. Approving a published link is
// an idempotent no-op; approving a synced link is rejected.
func (l *Linker) Approve(ctx context.Context, id int64) (modellink.Link, error) {
	record, err := l.linkStorage.Get(ctx, id)
	if err != nil {
		return modellink.Link{}, err
	}
	switch record.Status {
	case modelstorage.StatusPublished:
		return modellink.FromStorage(record), nil
	case modelstorage.StatusSynced:
		return modellink.Link{}, &serviceErrors.InvalidTransitionError{Msg: "link is already synced"}
	}
	record.Status = modelstorage.StatusPublished
	record, err = l.linkStorage.Update(ctx, record)
	if err != nil {
		return modellink.Link{}, err
	}
	l.log.Info("link approved", zap.Int64("id", record.ID), zap.String("source", record.Source))
	return modellink.FromStorage(record), nil
}

// PingDB verifies the storage connection.
func (l *Linker) PingDB() error {
	return l.linkStorage.PingDB()
}

// normalize validates the submitted pair and applies the canonical
// formatting: source paths carry a leading slash, schemeless destinations
// get https prepended.
func normalize(source, destination string) (string, string, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)
	if source == "" || destination == "" {
		return "", "", &serviceErrors.InvalidInputError{Msg: "source and destination are required"}
	}
	if !strings.HasPrefix(source, "/") {
		source = "/" + source
	}
	if !strings.HasPrefix(destination, "http://") && !strings.HasPrefix(destination, "https://") {
		destination = "https://" + destination
	}
	return source, destination, nil
}

func fromRecords(records []modelstorage.Link) []modellink.Link {
	links := make([]modellink.Link, 0, len(records))
	for _, record := range records {
		links = append(links, modellink.FromStorage(record))
	}
	return links
}
