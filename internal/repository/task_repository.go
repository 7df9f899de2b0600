package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/kanban-backend/internal/domain"
	"github.com/Tomlord1122/kanban-backend/internal/reorder"
)

// TaskRepository defines the data operations on tasks.
type TaskRepository interface {
	// Create inserts task, appending it after the last task of its column.
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uint) (*domain.Task, error)
	// ExistingIDs returns the subset of ids that name a task.
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
	// ListByColumn returns the column's tasks ordered by position.
	ListByColumn(ctx context.Context, columnID uint) ([]domain.Task, error)
	// Update writes the descriptive fields of task. Column and position only
	// change through Positions.
	Update(ctx context.Context, task *domain.Task) error
	// Delete removes the task. Sibling positions are left for the caller to
	// close.
	Delete(ctx context.Context, id uint) error
	// Positions returns the task sibling set of a column.
	Positions(columnID uint) reorder.Scope
}

type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM task repository.
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) scope(columnID uint) *positionScope {
	return &positionScope{
		db:           r.db,
		model:        func() interface{} { return &domain.Task{} },
		parentColumn: "column_id",
		parentID:     columnID,
	}
}

func (r *gormTaskRepository) Positions(columnID uint) reorder.Scope {
	return r.scope(columnID)
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	maxPos, err := r.scope(task.ColumnID).maxPosition(ctx)
	if err != nil {
		return err
	}
	task.Position = reorder.Next(maxPos)
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *gormTaskRepository) FindByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return existingIDs(r.db.WithContext(ctx).Model(&domain.Task{}), ids)
}

func (r *gormTaskRepository) ListByColumn(ctx context.Context, columnID uint) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := byPosition(r.db.WithContext(ctx).Where("column_id = ?", columnID)).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *gormTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).
		Model(task).
		Select("title", "description", "tag", "due_date", "assigned_to", "priority").
		Updates(task).Error
}

func (r *gormTaskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, id).Error
}
