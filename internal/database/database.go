package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sateihub/server/internal/models"
)

// NewDatabase opens the SQLite snapshot store and runs migrations.
func NewDatabase(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	if err := db.AutoMigrate(&models.ValuationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// SaveValuationRecords inserts a batch of snapshots in one statement.
func SaveValuationRecords(tx *gorm.DB, records []*models.ValuationRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := tx.Create(records).Error; err != nil {
		return fmt.Errorf("failed to insert %d valuation records: %w", len(records), err)
	}
	return nil
}

// GetRecentValuations returns the newest snapshots, newest first.
func GetRecentValuations(db *gorm.DB, limit int) ([]models.ValuationRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	var records []models.ValuationRecord
	err := db.Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent valuations: %w", err)
	}
	return records, nil
}
