package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/stevemurr/transfer-store/transfer"
)

// pathLocks serializes access per store file so two JSONFileStore values
// opened on the same path cannot interleave a read-modify-write cycle.
// Writers in other processes are not covered.
var pathLocks sync.Map // absolute path -> *sync.RWMutex

func lockFor(path string) *sync.RWMutex {
	mu, _ := pathLocks.LoadOrStore(path, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}

// JSONFileStore keeps the whole mapping as one JSON object in a single file.
//
// Every mutation reads the file, applies the change in memory and
// replaces the file through a temp file and rename.
type JSONFileStore struct {
	mu   *sync.RWMutex
	path string
}

func NewJSONFileStore(path string) (*JSONFileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, internal("open", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, internal("open", err)
	}
	return &JSONFileStore{mu: lockFor(abs), path: abs}, nil
}

// Path returns the absolute location of the store file.
func (s *JSONFileStore) Path() string { return s.path }

func (s *JSONFileStore) load() (transfer.Transfers, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return transfer.Transfers{}, nil
		}
		return nil, internal("read", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return transfer.Transfers{}, nil
	}
	var all transfer.Transfers
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, internal("read", err)
	}
	if all == nil {
		all = transfer.Transfers{}
	}
	return all, nil
}

func (s *JSONFileStore) save(all transfer.Transfers) error {
	if all == nil {
		all = transfer.Transfers{}
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return internal("write", err)
	}

	tmp := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return internal("write", err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return internal("write", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return internal("write", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return internal("write", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return internal("write", err)
	}
	return nil
}

// mutate runs one read-modify-write cycle under the path lock.
func (s *JSONFileStore) mutate(fn func(transfer.Transfers) (transfer.Transfers, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return err
	}
	next, err := fn(all)
	if err != nil {
		return err
	}
	return s.save(next)
}

func (s *JSONFileStore) Read(_ context.Context) (transfer.Transfers, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Write replaces the whole mapping.
func (s *JSONFileStore) Write(_ context.Context, all transfer.Transfers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(all)
}

func (s *JSONFileStore) Add(_ context.Context, id string, t transfer.Transfer) error {
	return s.mutate(func(all transfer.Transfers) (transfer.Transfers, error) {
		return addTransfer(all, id, t)
	})
}

func (s *JSONFileStore) Update(_ context.Context, id string, t transfer.Transfer) error {
	return s.mutate(func(all transfer.Transfers) (transfer.Transfers, error) {
		return updateTransfer(all, id, t)
	})
}

// Delete always rewrites the file, even when id was absent.
func (s *JSONFileStore) Delete(_ context.Context, id string) error {
	return s.mutate(func(all transfer.Transfers) (transfer.Transfers, error) {
		return deleteTransfer(all, id), nil
	})
}
