package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. Inside
// Transaction every repository runs on the same transaction.
type Store interface {
	Boards() BoardRepository
	Columns() ColumnRepository
	Tasks() TaskRepository

	// Transaction runs fn in a database transaction. Any error returned by fn
	// rolls back every write made through the Store passed to it.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Boards() BoardRepository   { return NewGormBoardRepository(s.db) }
func (s *gormStore) Columns() ColumnRepository { return NewGormColumnRepository(s.db) }
func (s *gormStore) Tasks() TaskRepository     { return NewGormTaskRepository(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
