// Package project holds per-project configuration for the reconciliation
// service: whether the project is enabled, its API token, and the
// force-update overwrite flag. The core never writes settings; they are
// owned by whoever provisions the service.
package project

import (
	"context"
	"errors"
)

// ErrNotFound keeps store-specific lookups consistent across implementations.
var ErrNotFound = errors.New("project not found")

// Settings is one project's configuration, read fresh at the start of every
// invocation so flag changes take effect without a restart.
type Settings struct {
	ProjectID   string
	APIToken    string
	Enabled     bool
	ForceUpdate bool
}

// Store is interface-driven so the memory-backed default and the Redis-backed
// shared deployment can be swapped without rewiring callers.
type Store interface {
	// Get returns the settings for one project, ErrNotFound if absent.
	Get(ctx context.Context, projectID string) (Settings, error)

	// ListEnabled returns the settings of every enabled project, in a
	// stable order.
	ListEnabled(ctx context.Context) ([]Settings, error)
}
