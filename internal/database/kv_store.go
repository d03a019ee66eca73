package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is a row in the generic key-value table backing the quote
// cache and other small persisted blobs.
type KVEntry struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// KVStore is a gorm-backed key-value store.
type KVStore struct {
	db *gorm.DB
}

func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{db: db}
}

// Read returns the value for a key; the bool is false when absent.
func (s *KVStore) Read(key string) (string, bool, error) {
	var entry KVEntry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Write stores a value, overwriting any existing entry.
func (s *KVStore) Write(key, value string) error {
	entry := KVEntry{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Remove deletes a key. Removing a missing key is not an error.
func (s *KVStore) Remove(key string) error {
	return s.db.Delete(&KVEntry{}, "key = ?", key).Error
}

// ListKeys returns all keys with the given prefix.
func (s *KVStore) ListKeys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.Model(&KVEntry{}).
		Where("key LIKE ?", prefix+"%").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
