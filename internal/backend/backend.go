// Package backend selects and opens the persistence layer from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"feesbook/internal/config"
	"feesbook/internal/storage"
	"feesbook/internal/store"
	"feesbook/internal/store/memory"
)

// Type identifies a persistence backend.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{SQLite, Memory}
}

// Result contains the opened stores and an optional cleanup function.
type Result struct {
	Students store.StudentStore
	Payments store.PaymentStore
	Cleanup  func() error
}

// Close runs the cleanup function, if any.
func (r *Result) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Open creates the stores named by cfg.DataBackend. The SQLite backend
// runs migrations on open; the memory backend starts empty.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		repo, err := storage.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Students: repo, Payments: repo, Cleanup: repo.Close}, nil

	default:
		st := memory.New()
		logger.Info("Initialized memory backend")
		return &Result{Students: st, Payments: st}, nil
	}
}
