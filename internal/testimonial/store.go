package testimonial

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrEntryNotFound signals a lookup for an identifier the store does not hold.
	ErrEntryNotFound = errors.New("testimonial: entry not found")

	errMissingBackend = errors.New("storage backend is required")
)

// StoreConfig describes the dependencies required to construct a Store.
type StoreConfig struct {
	Backend Backend
	Logger  *zap.Logger
}

// Store is the keyed collection of entries. It is pure CRUD: the whole
// collection is loaded and rewritten on every mutating operation, matching
// the single-blob persisted layout. A upsert with an existing identifier
// replaces the whole record (last-write-wins, no field-level merge).
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger
}

// NewStore constructs a store over the provided backend.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("testimonial: %w", errMissingBackend)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: cfg.Backend, logger: logger}, nil
}

// Upsert stores the entry, replacing any existing entry with the same identifier.
func (s *Store) Upsert(entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection()
	if err != nil {
		return err
	}

	replaced := false
	for index := range entries {
		if entries[index].ID == entry.ID {
			entries[index] = entry.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry.Clone())
	}

	return s.saveCollection(entries)
}

// List returns all stored entries. Ordering is the stored order and carries
// no guarantee; sorting is a presentation concern.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection()
	if err != nil {
		return nil, err
	}
	listed := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		listed = append(listed, entry.Clone())
	}
	return listed, nil
}

// GetByID returns the entry with the given identifier or ErrEntryNotFound.
// A missing record is an expected steady-state condition, so callers should
// branch on errors.Is(err, ErrEntryNotFound) rather than treat it as fatal.
func (s *Store) GetByID(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection()
	if err != nil {
		return Entry{}, err
	}
	for _, entry := range entries {
		if entry.ID == id {
			return entry.Clone(), nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// DeleteByID removes the entry with the given identifier. Deleting an absent
// identifier is a no-op.
func (s *Store) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadCollection()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, entry := range entries {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.saveCollection(kept)
}

// loadCollection deserializes the whole stored collection. An unparsable
// payload is treated as an empty store: losing the collection beats refusing
// to start, and the warning leaves a trail for the operator.
func (s *Store) loadCollection() ([]Entry, error) {
	payload, err := s.backend.Load()
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		s.logger.Warn("persisted collection is unparsable, treating store as empty", zap.Error(err))
		return nil, nil
	}
	return entries, nil
}

func (s *Store) saveCollection(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("testimonial: serialize collection: %w", err)
	}
	return s.backend.Save(payload)
}
