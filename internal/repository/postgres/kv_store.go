package postgres

import (
	"context"
	"errors"

	"aiInsider/business/experiment"
	"aiInsider/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KVStore struct {
	DB *gorm.DB
}

var _ experiment.Persistence = (*KVStore)(nil)

func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{DB: db}
}

func (r *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry domain.KVEntry

	err := r.DB.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *KVStore) Set(ctx context.Context, key, value string) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&domain.KVEntry{Key: key, Value: value}).Error
}
