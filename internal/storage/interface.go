// Package storage provides interfaces for types to be in compliance with.
package storage

import (
	"context"

	"github.com/localan/shortener/internal/storage/modelstorage"
)

// LinkSetter defines a set of methods for types implementing LinkSetter.
type LinkSetter interface {
	Create(ctx context.Context, link modelstorage.Link) (modelstorage.Link, error)
}

// LinkGetter defines a set of methods for types implementing LinkGetter.
type LinkGetter interface {
	Get(ctx context.Context, id int64) (modelstorage.Link, error)
	GetBySource(ctx context.Context, source string) (modelstorage.Link, error)
}

// LinkLister defines a set of methods for types implementing LinkLister.
// List returns links ordered newest created_at first; an empty status
// filter returns all links.
type LinkLister interface {
	List(ctx context.Context, statuses ...string) ([]modelstorage.Link, error)
}

// LinkUpdater defines a set of methods for types implementing LinkUpdater.
type LinkUpdater interface {
	Update(ctx context.Context, link modelstorage.Link) (modelstorage.Link, error)
}

// LinkDeleter defines a set of methods for types implementing LinkDeleter.
type LinkDeleter interface {
	Delete(ctx context.Context, id int64) (bool, error)
}

// SyncMarker defines a set of methods for types implementing SyncMarker.
// MarkSynced moves published links to synced; re-marking a synced link is
// a no-op.
type SyncMarker interface {
	MarkSynced(ctx context.Context, ids []int64) error
}

// Pinger defines a set of methods for types implementing Pinger.
type Pinger interface {
	PingDB() error
}

// Closer defines a set of methods for types implementing Closer.
type Closer interface {
	CloseDB() error
}

// LinkStorage defines a set of embedded interfaces for types implementing LinkStorage.
type LinkStorage interface {
	LinkSetter
	LinkGetter
	LinkLister
	LinkUpdater
	LinkDeleter
	SyncMarker
	Pinger
	Closer
}
