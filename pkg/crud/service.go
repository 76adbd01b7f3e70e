// Package crud generates the uniform create/read/update/soft-delete surface
// shared by the simple back-office resources (brands, categories, tags,
// attributes, stores, products, variants, coupons, roles, permissions).
package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storehub/pkg/httpx"
	"gorm.io/gorm"
)

type Service[T any] struct {
	db       *gorm.DB
	resource string
}

func NewService[T any](db *gorm.DB, resource string) *Service[T] {
	return &Service[T]{db: db, resource: resource}
}

// List returns every live record; gorm's soft-delete scope keeps records
// with a set deleted_at out of the result.
func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	var records []T
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.resource, err)
	}
	return records, nil
}

func (s *Service[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var record T
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %d: %w", s.resource, id, httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s %d: %w", s.resource, id, err)
	}
	return &record, nil
}

func (s *Service[T]) Create(ctx context.Context, record *T) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create %s: %w", s.resource, err)
	}
	return nil
}

func (s *Service[T]) Save(ctx context.Context, record *T) error {
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("update %s: %w", s.resource, err)
	}
	return nil
}

// Delete verifies the record exists (and is not already soft-deleted)
// before marking it.
func (s *Service[T]) Delete(ctx context.Context, id uint) error {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(record).Error; err != nil {
		return fmt.Errorf("delete %s %d: %w", s.resource, id, err)
	}
	return nil
}
