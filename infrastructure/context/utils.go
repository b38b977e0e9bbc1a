// Package context provides shared context helpers.
package context

import (
	"context"
	"time"
)

// DefaultPingTimeout bounds connectivity checks against backing services.
const DefaultPingTimeout = 5 * time.Second

// WithPingTimeout derives a context bounded by DefaultPingTimeout.
func WithPingTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultPingTimeout)
}
