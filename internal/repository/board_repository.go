package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/kanban-backend/internal/domain"
)

// BoardRepository defines the data operations on boards.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	FindByID(ctx context.Context, id uint) (*domain.Board, error)
	// FindByIDWithColumns loads the board with its columns and their tasks,
	// both ordered by position.
	FindByIDWithColumns(ctx context.Context, id uint) (*domain.Board, error)
	GetAll(ctx context.Context) ([]domain.Board, error)
	Update(ctx context.Context, board *domain.Board) error
	// Delete removes the board, its columns and their tasks.
	Delete(ctx context.Context, id uint) error
	// Lock takes a row lock on the board for the rest of the transaction,
	// serializing writers to the board's column positions.
	Lock(ctx context.Context, id uint) (*domain.Board, error)
}

type gormBoardRepository struct {
	db *gorm.DB
}

// NewGormBoardRepository creates a new GORM board repository.
func NewGormBoardRepository(db *gorm.DB) BoardRepository {
	return &gormBoardRepository{db: db}
}

func (r *gormBoardRepository) Create(ctx context.Context, board *domain.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *gormBoardRepository) FindByID(ctx context.Context, id uint) (*domain.Board, error) {
	var board domain.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *gormBoardRepository) FindByIDWithColumns(ctx context.Context, id uint) (*domain.Board, error) {
	var board domain.Board
	err := r.db.WithContext(ctx).
		Preload("Columns", byPosition).
		Preload("Columns.Tasks", byPosition).
		First(&board, id).Error
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *gormBoardRepository) GetAll(ctx context.Context) ([]domain.Board, error) {
	var boards []domain.Board
	if err := r.db.WithContext(ctx).Order("id").Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *gormBoardRepository) Update(ctx context.Context, board *domain.Board) error {
	return r.db.WithContext(ctx).Model(board).Select("name", "description").Updates(board).Error
}

func (r *gormBoardRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	columnIDs := db.Model(&domain.Column{}).Select("id").Where("board_id = ?", id)
	if err := db.Where("column_id IN (?)", columnIDs).Delete(&domain.Task{}).Error; err != nil {
		return err
	}
	if err := db.Where("board_id = ?", id).Delete(&domain.Column{}).Error; err != nil {
		return err
	}
	return db.Delete(&domain.Board{}, id).Error
}

func (r *gormBoardRepository) Lock(ctx context.Context, id uint) (*domain.Board, error) {
	var board domain.Board
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&board, id).Error
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// byPosition orders preloaded siblings by rank.
func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}
