package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/kanban-backend/internal/domain"
	"github.com/Tomlord1122/kanban-backend/internal/reorder"
)

// ColumnRepository defines the data operations on columns.
type ColumnRepository interface {
	// Create inserts column, appending it after the last column of its board.
	Create(ctx context.Context, column *domain.Column) error
	FindByID(ctx context.Context, id uint) (*domain.Column, error)
	FindByIDWithTasks(ctx context.Context, id uint) (*domain.Column, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Column, error)
	// ExistingIDs returns the subset of ids that name a column.
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
	// ListByBoard returns the board's columns ordered by position.
	ListByBoard(ctx context.Context, boardID uint, withTasks bool) ([]domain.Column, error)
	Update(ctx context.Context, column *domain.Column) error
	// Delete removes the column and its tasks. Sibling positions are left
	// for the caller to close.
	Delete(ctx context.Context, id uint) error
	// Lock takes row locks on the given columns in id order, serializing
	// writers to their task positions.
	Lock(ctx context.Context, ids ...uint) ([]domain.Column, error)
	// Positions returns the column sibling set of a board.
	Positions(boardID uint) reorder.Scope
}

type gormColumnRepository struct {
	db *gorm.DB
}

// NewGormColumnRepository creates a new GORM column repository.
func NewGormColumnRepository(db *gorm.DB) ColumnRepository {
	return &gormColumnRepository{db: db}
}

func (r *gormColumnRepository) scope(boardID uint) *positionScope {
	return &positionScope{
		db:           r.db,
		model:        func() interface{} { return &domain.Column{} },
		parentColumn: "board_id",
		parentID:     boardID,
	}
}

func (r *gormColumnRepository) Positions(boardID uint) reorder.Scope {
	return r.scope(boardID)
}

func (r *gormColumnRepository) Create(ctx context.Context, column *domain.Column) error {
	maxPos, err := r.scope(column.BoardID).maxPosition(ctx)
	if err != nil {
		return err
	}
	column.Position = reorder.Next(maxPos)
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *gormColumnRepository) FindByID(ctx context.Context, id uint) (*domain.Column, error) {
	var column domain.Column
	if err := r.db.WithContext(ctx).First(&column, id).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *gormColumnRepository) FindByIDWithTasks(ctx context.Context, id uint) (*domain.Column, error) {
	var column domain.Column
	if err := r.db.WithContext(ctx).Preload("Tasks", byPosition).First(&column, id).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *gormColumnRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Column, error) {
	var columns []domain.Column
	err := r.db.WithContext(ctx).
		Preload("Tasks", byPosition).
		Where("id IN ?", ids).
		Order("board_id, position, id").
		Find(&columns).Error
	if err != nil {
		return nil, err
	}
	return columns, nil
}

func (r *gormColumnRepository) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return existingIDs(r.db.WithContext(ctx).Model(&domain.Column{}), ids)
}

func (r *gormColumnRepository) ListByBoard(ctx context.Context, boardID uint, withTasks bool) ([]domain.Column, error) {
	q := r.db.WithContext(ctx).Where("board_id = ?", boardID)
	if withTasks {
		q = q.Preload("Tasks", byPosition)
	}
	var columns []domain.Column
	if err := byPosition(q).Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

func (r *gormColumnRepository) Update(ctx context.Context, column *domain.Column) error {
	return r.db.WithContext(ctx).Model(column).Select("title").Updates(column).Error
}

func (r *gormColumnRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("column_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
		return err
	}
	return db.Delete(&domain.Column{}, id).Error
}

func (r *gormColumnRepository) Lock(ctx context.Context, ids ...uint) ([]domain.Column, error) {
	var columns []domain.Column
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&columns).Error
	if err != nil {
		return nil, err
	}
	if len(columns) != len(distinct(ids)) {
		return nil, gorm.ErrRecordNotFound
	}
	return columns, nil
}

// existingIDs plucks the ids of q's model that appear in ids.
func existingIDs(q *gorm.DB, ids []uint) ([]uint, error) {
	found := make([]uint, 0, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	if err := q.Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func distinct(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
