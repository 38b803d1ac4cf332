package testimonial

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func newMemoryStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(StoreConfig{Backend: NewMemoryBackend(), Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	return store
}

func TestStoreRoundTripReturnsDeepEqualEntry(t *testing.T) {
	store := newMemoryStore(t)
	entry := validEntry("a1")
	entry.ParticipantName = "Jane Doe"
	entry.Screenshots = []string{"shot-1", "shot-2"}

	if err := store.Upsert(entry); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	stored, err := store.GetByID("a1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !reflect.DeepEqual(entry, stored) {
		t.Fatalf("round trip mismatch: stored %+v, want %+v", stored, entry)
	}
}

func TestStoreUpsertReplacesWholeRecord(t *testing.T) {
	store := newMemoryStore(t)

	first := validEntry("a1")
	first.ParticipantName = "Jane Doe"
	first.Company = "Acme Corp"
	if err := store.Upsert(first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second := validEntry("a1")
	second.ParticipantName = "Janet Doe"
	if err := store.Upsert(second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	stored, err := store.GetByID("a1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if stored.ParticipantName != "Janet Doe" {
		t.Fatalf("later write must win, got %q", stored.ParticipantName)
	}
	if stored.Company != "" {
		t.Fatalf("upsert must replace the whole record, company survived as %q", stored.Company)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("the store must never hold two entries with the same identifier, got %d", len(entries))
	}
}

func TestStoreGetByIDReportsMissingEntry(t *testing.T) {
	store := newMemoryStore(t)
	if _, err := store.GetByID("missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestStoreDeleteThenGetReportsNotFound(t *testing.T) {
	store := newMemoryStore(t)
	entry := validEntry("a1")
	if err := store.Upsert(entry); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.DeleteByID("a1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetByID("a1"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound after delete, got %v", err)
	}
}

func TestStoreDeleteAbsentIdentifierIsNoOp(t *testing.T) {
	store := newMemoryStore(t)
	if err := store.DeleteByID("missing"); err != nil {
		t.Fatalf("deleting an absent identifier must not fail: %v", err)
	}
}

func TestStoreTreatsUnparsableCollectionAsEmpty(t *testing.T) {
	backend := NewMemoryBackend()
	if err := backend.Save([]byte("{not json")); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	store, err := NewStore(StoreConfig{Backend: backend})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("list over corrupt payload must recover: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("corrupt collection must read as empty, got %d entries", len(entries))
	}

	if err := store.Upsert(validEntry("a1")); err != nil {
		t.Fatalf("upsert after recovery failed: %v", err)
	}
	if _, err := store.GetByID("a1"); err != nil {
		t.Fatalf("lookup after recovery failed: %v", err)
	}
}

func TestStoreUpsertRejectsInvalidEntry(t *testing.T) {
	store := newMemoryStore(t)
	entry := validEntry("")
	if err := store.Upsert(entry); !errors.Is(err, ErrInvalidEntryID) {
		t.Fatalf("expected ErrInvalidEntryID, got %v", err)
	}
}

func TestStoreReturnsCopiesNotReferences(t *testing.T) {
	store := newMemoryStore(t)
	entry := validEntry("a1")
	entry.Screenshots = []string{"shot-1"}
	if err := store.Upsert(entry); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	fetched, err := store.GetByID("a1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	fetched.Screenshots[0] = "mutated"

	again, err := store.GetByID("a1")
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if again.Screenshots[0] != "shot-1" {
		t.Fatalf("store handed out shared slice memory")
	}
}
