package cachedb

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

// Entry is one persisted cache row. Expiry is enforced on read: expired rows
// are deleted and reported as a miss.
type Entry struct {
	Key       string `gorm:"primaryKey;column:cache_key"`
	Value     []byte `gorm:"column:value"`
	ExpiresAt int64  `gorm:"column:expires_at"`
}

func (Entry) TableName() string {
	return "kv_cache"
}

// Store is the gorm-backed model.ICache, interchangeable with the redis
// backend.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := Entry{
		Key:       key,
		Value:     raw,
		ExpiresAt: time.Now().Add(expiration).UnixMilli(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		UpdateAll: true,
	}).Create(&entry).Error
}

func (s *Store) Get(ctx context.Context, key string, dst interface{}) error {
	var entry Entry
	err := s.db.WithContext(ctx).Where("cache_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrCacheMiss
	}
	if err != nil {
		return err
	}

	if entry.ExpiresAt <= time.Now().UnixMilli() {
		s.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&Entry{})
		return model.ErrCacheMiss
	}

	return json.Unmarshal(entry.Value, dst)
}
