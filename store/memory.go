package store

import (
	"context"
	"sync"

	"github.com/stevemurr/transfer-store/transfer"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	transfers transfer.Transfers
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{transfers: transfer.Transfers{}}
}

func (m *MemoryStore) Read(_ context.Context) (transfer.Transfers, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transfers.Clone(), nil
}

// Write replaces the whole mapping.
func (m *MemoryStore) Write(_ context.Context, all transfer.Transfers) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = all.Clone()
	return nil
}

func (m *MemoryStore) Add(_ context.Context, id string, t transfer.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := addTransfer(m.transfers, id, t)
	if err != nil {
		return err
	}
	m.transfers = next
	return nil
}

func (m *MemoryStore) Update(_ context.Context, id string, t transfer.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := updateTransfer(m.transfers, id, t)
	if err != nil {
		return err
	}
	m.transfers = next
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = deleteTransfer(m.transfers, id)
	return nil
}
