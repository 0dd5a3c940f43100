package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"veridian-hq/saturn/pkg/audit"
)

func TestMemoryStorage_StoreAndGet(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	record := audit.NewRecord(audit.KindSelection, "ACME_PUMP_V1", "hash-1", "AUTO_SELECT", []byte(`{}`))
	if err := store.Store(ctx, record); err != nil {
		t.Fatalf("Store() error = %v, want nil", err)
	}

	got, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if got.TemplateID != "ACME_PUMP_V1" {
		t.Errorf("templateId = %s, want ACME_PUMP_V1", got.TemplateID)
	}
	if got.Outcome != "AUTO_SELECT" {
		t.Errorf("outcome = %s, want AUTO_SELECT", got.Outcome)
	}
}

func TestMemoryStorage_GetNotFound(t *testing.T) {
	store := NewMemoryStorage()

	_, err := store.Get(context.Background(), "no-such-id")
	if !errors.Is(err, audit.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorage_ListFiltersAndOrders(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	older := audit.NewRecord(audit.KindSelection, "ACME_PUMP_V1", "", "AUTO_SELECT", nil)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := audit.NewRecord(audit.KindSelection, "ACME_PUMP_V1", "", "HARD_STOP", nil)
	other := audit.NewRecord(audit.KindEvaluation, "ACME_VALVE_V1", "", "PASS", nil)

	for _, r := range []*audit.Record{older, newer, other} {
		if err := store.Store(ctx, r); err != nil {
			t.Fatalf("Store() error = %v, want nil", err)
		}
	}

	selections, err := store.List(ctx, audit.Query{Kind: audit.KindSelection})
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if len(selections) != 2 {
		t.Fatalf("List(kind=selection) = %d records, want 2", len(selections))
	}
	if selections[0].ID != newer.ID {
		t.Error("List() not ordered newest first")
	}

	byTemplate, err := store.List(ctx, audit.Query{TemplateID: "ACME_VALVE_V1"})
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if len(byTemplate) != 1 || byTemplate[0].ID != other.ID {
		t.Errorf("List(templateId) = %v, want the evaluation record only", byTemplate)
	}

	limited, err := store.List(ctx, audit.Query{Limit: 1})
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if len(limited) != 1 {
		t.Errorf("List(limit=1) = %d records, want 1", len(limited))
	}
}

func TestMemoryStorage_DeleteOlderThan(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	old := audit.NewRecord(audit.KindSelection, "", "", "AUTO_SELECT", nil)
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := audit.NewRecord(audit.KindSelection, "", "", "AUTO_SELECT", nil)

	store.Store(ctx, old)
	store.Store(ctx, fresh)

	deleted, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v, want nil", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v, want nil", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestMemoryStorage_StoreCopiesRecord(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	record := audit.NewRecord(audit.KindSelection, "ACME_PUMP_V1", "", "AUTO_SELECT", nil)
	store.Store(ctx, record)

	record.Outcome = "mutated"

	got, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if got.Outcome != "AUTO_SELECT" {
		t.Errorf("outcome = %s after caller mutation, want stored copy untouched", got.Outcome)
	}
}
