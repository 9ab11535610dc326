// Package memory provides an in-memory fee register used in tests and
// when no Google spreadsheet is configured.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"feesbook/internal/export"
)

type Register struct {
	mu      sync.Mutex
	entries []export.RegisterEntry
}

var _ export.RegisterAppender = (*Register)(nil)

func New() *Register {
	return &Register{}
}

// Append stores the entry and returns a synthetic row reference.
func (r *Register) Append(_ context.Context, e export.RegisterEntry) (string, error) {
	if e.ReceiptNo == "" {
		return "", errors.New("register entry missing receipt number")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return fmt.Sprintf("mem:%d", len(r.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (r *Register) Entries() []export.RegisterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]export.RegisterEntry(nil), r.entries...)
}
