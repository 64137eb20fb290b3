package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/stevemurr/transfer-store/transfer"
)

// SqliteStore keeps the mapping in a single SQLite table.
//
// Table:
//
//	transfers(id, data)  PRIMARY KEY (id), data is the record as JSON
type SqliteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSqliteStore opens the database at dbPath. The caller must have
// registered the "sqlite3" driver.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, internal("open", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, internal("open", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, internal("open", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, internal("open", err)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) Read(ctx context.Context) (transfer.Transfers, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, "SELECT id, data FROM transfers")
	if err != nil {
		return nil, internal("read", err)
	}
	defer rows.Close()
	all := transfer.Transfers{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, internal("read", err)
		}
		var t transfer.Transfer
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, internal("read", err)
		}
		all[id] = t
	}
	if err := rows.Err(); err != nil {
		return nil, internal("read", err)
	}
	return all, nil
}

// Write replaces the whole mapping in one transaction.
func (s *SqliteStore) Write(ctx context.Context, all transfer.Transfers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return internal("write", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM transfers"); err != nil {
		return internal("write", err)
	}
	for id, t := range all {
		b, err := json.Marshal(t)
		if err != nil {
			return internal("write", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO transfers (id, data) VALUES (?, ?)", id, string(b)); err != nil {
			return internal("write", err)
		}
	}
	return internal("write", tx.Commit())
}

func (s *SqliteStore) Add(ctx context.Context, id string, t transfer.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(t)
	if err != nil {
		return internal("add", err)
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO transfers (id, data) VALUES (?, ?) ON CONFLICT(id) DO NOTHING",
		id, string(b),
	)
	if err != nil {
		return internal("add", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &AlreadyExistsError{ID: id}
	}
	return nil
}

func (s *SqliteStore) Update(ctx context.Context, id string, t transfer.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(t)
	if err != nil {
		return internal("update", err)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE transfers SET data = ? WHERE id = ?", string(b), id)
	if err != nil {
		return internal("update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

func (s *SqliteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transfers WHERE id = ?", id); err != nil {
		return internal("delete", err)
	}
	return nil
}
