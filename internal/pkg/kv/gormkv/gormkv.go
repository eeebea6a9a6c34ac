// Package gormkv stores blobs in the options table through gorm.
package gormkv

import (
	"context"
	"errors"

	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/pkg/kv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct{ db *gorm.DB }

var _ kv.Store = (*Store)(nil)

func New(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var opt models.OptionModel
	err := s.db.WithContext(ctx).Where("name = ?", key).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(opt.Value), true, nil
}

func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	opt := models.OptionModel{Name: key, Value: string(blob)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&opt).Error
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("name = ?", key).Delete(&models.OptionModel{}).Error
}
