// Package storage provides the audit persistence backends: an
// in-memory store for tests and single-run CLI use, and a SQLite store
// for durable audit trails.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"veridian-hq/saturn/pkg/audit"
)

// MemoryStorage is an in-memory audit store guarded by a RWMutex.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*audit.Record
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.Record),
	}
}

// Store persists a record.
func (m *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recordCopy := *record
	m.records[record.ID] = &recordCopy
	return nil
}

// Get retrieves a record by ID.
func (m *MemoryStorage) Get(ctx context.Context, id string) (*audit.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, audit.ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

// List returns records matching the query, newest first.
func (m *MemoryStorage) List(ctx context.Context, q audit.Query) ([]*audit.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*audit.Record
	for _, record := range m.records {
		if q.Kind != "" && record.Kind != q.Kind {
			continue
		}
		if q.TemplateID != "" && record.TemplateID != q.TemplateID {
			continue
		}
		if !q.Since.IsZero() && record.CreatedAt.Before(q.Since) {
			continue
		}
		recordCopy := *record
		out = append(out, &recordCopy)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Count returns the total record count.
func (m *MemoryStorage) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// DeleteOlderThan removes records created before the cutoff.
func (m *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, record := range m.records {
		if record.CreatedAt.Before(cutoff) {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryStorage) Close() error {
	return nil
}
