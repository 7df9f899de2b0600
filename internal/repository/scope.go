package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Tomlord1122/kanban-backend/internal/reorder"
)

// positionScope is the set of rows in one table that share a parent id. It
// implements reorder.Scope with ranged UPDATE statements.
type positionScope struct {
	db           *gorm.DB
	model        func() interface{}
	parentColumn string
	parentID     uint
}

func (s *positionScope) siblings(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(s.model()).Where(s.parentColumn+" = ?", s.parentID)
}

func (s *positionScope) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.siblings(ctx).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *positionScope) Position(ctx context.Context, id uint) (int, bool, error) {
	var row struct {
		Position int
	}
	err := s.siblings(ctx).Select("position").Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.Position, true, nil
}

func (s *positionScope) Shift(ctx context.Context, sh reorder.Shift) error {
	q := s.siblings(ctx).Where("position >= ?", sh.Min)
	if sh.Max != reorder.Unbounded {
		q = q.Where("position <= ?", sh.Max)
	}
	return q.UpdateColumn("position", gorm.Expr("position + ?", sh.Delta)).Error
}

func (s *positionScope) Place(ctx context.Context, id uint, pos int) error {
	res := s.db.WithContext(ctx).Model(s.model()).Where("id = ?", id).Updates(map[string]interface{}{
		s.parentColumn: s.parentID,
		"position":     pos,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// maxPosition returns the highest position in the scope, or -1 when empty.
func (s *positionScope) maxPosition(ctx context.Context) (int, error) {
	var maxPos int
	err := s.siblings(ctx).Select("COALESCE(MAX(position), -1)").Scan(&maxPos).Error
	return maxPos, err
}
