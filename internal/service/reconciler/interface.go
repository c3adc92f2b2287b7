// Package reconciler provides interfaces for types to be in compliance with.
package reconciler

import (
	"context"

	"github.com/localan/shortener/internal/service/modellink"
)

// Processor defines a set of methods for types implementing Processor.
type Processor interface {
	// Reconcile regenerates the static manifest from the store's eligible
	// links, writes it atomically and marks exported published links as
	// synced. It returns the number of redirects written. Any failure
	// aborts the whole run with no partial manifest and no status update.
	Reconcile(ctx context.Context) (int, error)
	// Preview builds the manifest in memory without writing it and without
	// touching link statuses.
	Preview(ctx context.Context) (modellink.Manifest, error)
}
