package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one persisted key, stored under Name. Version is bumped on every write.
type Entry struct {
	Name      string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	Version   uint   `gorm:"not null;default:1"`
	UpdatedAt time.Time
}

type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, _, ok, err := s.GetVersioned(ctx, key)
	return value, ok, err
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	entry := &Entry{
		Name:      key,
		Value:     value,
		Version:   1,
		UpdatedAt: time.Now().UTC(),
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": entry.UpdatedAt,
			"version":    gorm.Expr("version + 1"),
		}),
	}).Create(entry).Error
}

func (s *SQLiteStore) GetVersioned(ctx context.Context, key string) (string, uint, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "name = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, err
	}
	return entry.Value, entry.Version, true, nil
}

func (s *SQLiteStore) SetIfVersion(ctx context.Context, key, value string, version uint) (uint, error) {
	now := time.Now().UTC()

	if version == 0 {
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Entry{Name: key, Value: value, Version: 1, UpdatedAt: now})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, ErrOptimisticLock
		}
		return 1, nil
	}

	res := s.db.WithContext(ctx).Model(&Entry{}).
		Where("name = ? AND version = ?", key, version).
		Updates(map[string]interface{}{
			"value":      value,
			"updated_at": now,
			"version":    gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		return 0, ErrOptimisticLock
	}

	return version + 1, nil
}
