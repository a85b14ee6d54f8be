// Package store is the relational persistence layer. It owns every gorm
// query of the application; deletions apply the cascade and set-null rules
// of the schema explicitly so they hold on every driver.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: record not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps gorm's not-found error to ErrNotFound and wraps the rest.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// create inserts a row without touching its associations.
func (s *Store) create(ctx context.Context, op string, value any) error {
	return translate(op, s.conn(ctx).Omit(clause.Associations).Create(value).Error)
}

// save updates every column of a row without touching its associations.
func (s *Store) save(ctx context.Context, op string, value any) error {
	return translate(op, s.conn(ctx).Omit(clause.Associations).Save(value).Error)
}
