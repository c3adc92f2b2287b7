// Package resolver provides interfaces for types to be in compliance with.
package resolver

import "context"

// Resolver defines a set of methods for types implementing Resolver.
// Resolve maps an inbound request path to a redirect destination; the
// boolean reports whether a redirect should be issued.
type Resolver interface {
	Resolve(ctx context.Context, path string) (destination string, ok bool)
}
