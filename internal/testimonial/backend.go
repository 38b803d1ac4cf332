package testimonial

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageKey is the well-known key the whole serialized collection lives under.
// The value is inherited from the first release and must not change, or
// existing devices lose their records.
const StorageKey = "mimosa_testimonials_v1"

// Backend reads and writes the serialized collection as a single blob.
// Load returns a nil slice when nothing has been stored yet.
type Backend interface {
	Load() ([]byte, error)
	Save(payload []byte) error
}

// MemoryBackend keeps the collection blob in memory. Used by tests and as the
// fallback when no database is configured.
type MemoryBackend struct {
	mu      sync.Mutex
	payload []byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load returns the last saved blob.
func (b *MemoryBackend) Load() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.payload == nil {
		return nil, nil
	}
	stored := make([]byte, len(b.payload))
	copy(stored, b.payload)
	return stored, nil
}

// Save replaces the stored blob.
func (b *MemoryBackend) Save(payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payload = make([]byte, len(payload))
	copy(b.payload, payload)
	return nil
}

// CollectionRecord is the single-row persistence model for the serialized
// entry collection.
type CollectionRecord struct {
	StorageKey       string `gorm:"column:storage_key;primaryKey;size:190;not null"`
	PayloadJSON      string `gorm:"column:payload_json;type:text;not null"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (CollectionRecord) TableName() string {
	return "testimonial_collections"
}

// DatabaseBackend persists the collection blob in a single keyed row.
type DatabaseBackend struct {
	db    *gorm.DB
	key   string
	clock func() time.Time
}

// DatabaseBackendConfig describes the dependencies of a DatabaseBackend.
type DatabaseBackendConfig struct {
	Database *gorm.DB
	Key      string
	Clock    func() time.Time
}

// NewDatabaseBackend constructs a backend over an open database handle.
// An empty key falls back to StorageKey.
func NewDatabaseBackend(cfg DatabaseBackendConfig) (*DatabaseBackend, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("testimonial: database handle is required")
	}
	key := cfg.Key
	if key == "" {
		key = StorageKey
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &DatabaseBackend{db: cfg.Database, key: key, clock: clock}, nil
}

// Load reads the collection row, returning nil when the key has never been written.
func (b *DatabaseBackend) Load() ([]byte, error) {
	var record CollectionRecord
	err := b.db.Where("storage_key = ?", b.key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("testimonial: load collection: %w", err)
	}
	return []byte(record.PayloadJSON), nil
}

// Save rewrites the collection row in place.
func (b *DatabaseBackend) Save(payload []byte) error {
	record := CollectionRecord{
		StorageKey:       b.key,
		PayloadJSON:      string(payload),
		UpdatedAtSeconds: b.clock().Unix(),
	}
	err := b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload_json", "updated_at_s"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("testimonial: save collection: %w", err)
	}
	return nil
}
