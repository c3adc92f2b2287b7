// Package trigger provides interfaces for types to be in compliance with.
package trigger

import "context"

// Notifier defines a set of methods for types implementing Notifier.
// Trigger asks the external CI system to deploy the manifest; it reports
// true only when every configured endpoint answered 2xx and never returns
// an error. TriggerAsync is the fire-and-forget variant used by request
// handlers so response latency is never coupled to the external system.
type Notifier interface {
	Trigger(ctx context.Context) bool
	TriggerAsync()
}
