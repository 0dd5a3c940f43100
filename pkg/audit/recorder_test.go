package audit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// captureStorage is a Storage stub that records every Store call.
type captureStorage struct {
	mu      sync.Mutex
	records []*Record
}

func (c *captureStorage) Store(ctx context.Context, record *Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	return nil
}

func (c *captureStorage) Get(ctx context.Context, id string) (*Record, error) {
	return nil, ErrNotFound
}

func (c *captureStorage) List(ctx context.Context, q Query) ([]*Record, error) { return nil, nil }
func (c *captureStorage) Count(ctx context.Context) (int64, error)            { return 0, nil }
func (c *captureStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
func (c *captureStorage) Close() error { return nil }

func (c *captureStorage) stored() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func TestRecorder_StoresQueuedRecords(t *testing.T) {
	store := &captureStorage{}
	recorder := NewRecorder(store, nil, nil)

	for i := 0; i < 5; i++ {
		recorder.Record(NewRecord(KindSelection, "ACME_PUMP_V1", "", "AUTO_SELECT", nil))
	}
	recorder.Close()

	if got := store.stored(); got != 5 {
		t.Errorf("stored = %d, want 5 (Close drains the queue)", got)
	}
	if recorder.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", recorder.Dropped())
	}
}

func TestRecorder_CloseIsIdempotent(t *testing.T) {
	recorder := NewRecorder(&captureStorage{}, nil, nil)
	recorder.Close()
	recorder.Close()
}

func TestNewRecord(t *testing.T) {
	record := NewRecord(KindEvaluation, "ACME_PUMP_V1", "hash-1", "PASS", []byte(`{"x":1}`))

	if record.ID == "" {
		t.Error("ID is empty, want a UUID")
	}
	if record.Kind != KindEvaluation {
		t.Errorf("kind = %s, want evaluation", record.Kind)
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want a timestamp")
	}
	if record.CreatedAt.Location() != time.UTC {
		t.Error("CreatedAt not UTC")
	}
}
