package database

import (
	"errors"
	"time"

	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationAdoptVersionedStorageKey = "2026-08-12_adopt_versioned_storage_key"

// legacyStorageKey predates the versioned key scheme. Collections written
// under it are carried forward once, unless a versioned row already exists.
const legacyStorageKey = "mimosa_testimonials"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationAdoptVersionedStorageKey, apply: adoptVersionedStorageKey},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

func adoptVersionedStorageKey(db *gorm.DB) error {
	var versionedCount int64
	err := db.Model(&testimonial.CollectionRecord{}).
		Where("storage_key = ?", testimonial.StorageKey).
		Count(&versionedCount).Error
	if err != nil {
		return err
	}
	if versionedCount > 0 {
		// a versioned collection wins; drop the stale legacy row
		return db.Where("storage_key = ?", legacyStorageKey).
			Delete(&testimonial.CollectionRecord{}).Error
	}
	return db.Model(&testimonial.CollectionRecord{}).
		Where("storage_key = ?", legacyStorageKey).
		Update("storage_key", testimonial.StorageKey).Error
}
