// Package store defines the transfer store interface and its backends.
package store

import (
	"context"

	"github.com/stevemurr/transfer-store/transfer"
)

// Store is the interface that all backing stores must implement.
// Every backend holds a single id -> transfer mapping.
type Store interface {
	// Read returns the full mapping. A store that was never written
	// reads as empty.
	Read(ctx context.Context) (transfer.Transfers, error)

	// Add inserts a record. It fails with *AlreadyExistsError when id is taken.
	Add(ctx context.Context, id string, t transfer.Transfer) error

	// Update replaces a record. It fails with *NotFoundError when id is absent.
	Update(ctx context.Context, id string, t transfer.Transfer) error

	// Delete removes a record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}

// Writer is implemented by backends that can replace the whole mapping at once.
type Writer interface {
	Write(ctx context.Context, all transfer.Transfers) error
}
