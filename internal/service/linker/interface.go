// Package linker provides interfaces for types to be in compliance with.
package linker

import (
	"context"

	"github.com/localan/shortener/internal/service/modellink"
)

// Processor defines a set of methods for types implementing Processor.
// It owns the link lifecycle: creation as draft, admin approval to
// published, content edits and removal. The synced transition belongs to
// the reconciler.
type Processor interface {
	Create(ctx context.Context, source, destination, title, description string) (modellink.Link, error)
	Get(ctx context.Context, id int64) (modellink.Link, error)
	List(ctx context.Context, statuses ...string) ([]modellink.Link, error)
	ListPublic(ctx context.Context) ([]modellink.Link, error)
	Update(ctx context.Context, id int64, source, destination, title, description string) (modellink.Link, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Approve(ctx context.Context, id int64) (modellink.Link, error)
	PingDB() error
}
