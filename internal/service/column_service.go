package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Tomlord1122/kanban-backend/internal/domain"
	"github.com/Tomlord1122/kanban-backend/internal/reorder"
	"github.com/Tomlord1122/kanban-backend/internal/repository"
)

// ColumnService defines the operations on the columns of a board. Every
// write keeps the board's column positions dense.
type ColumnService interface {
	// ListColumns returns the board's columns in order, each with its tasks.
	ListColumns(ctx context.Context, boardID uint) ([]ColumnDetailResponse, error)
	// CreateColumn appends a column to the board.
	CreateColumn(ctx context.Context, boardID uint, req CreateColumnRequest) (*ColumnResponse, error)
	GetColumn(ctx context.Context, id uint) (*ColumnDetailResponse, error)
	UpdateColumn(ctx context.Context, id uint, req UpdateColumnRequest) (*ColumnResponse, error)
	// DeleteColumn removes the column and its tasks and closes the gap it
	// leaves in the board.
	DeleteColumn(ctx context.Context, id uint) error
	// MoveColumn moves one column to a new slot in its board.
	MoveColumn(ctx context.Context, id uint, req MoveColumnRequest) (*ColumnDetailResponse, error)
	// ReorderColumns applies a bulk reorder to the board's columns and
	// returns them in their new order.
	ReorderColumns(ctx context.Context, boardID uint, req ReorderColumnsRequest) ([]ColumnDetailResponse, error)
}

type columnService struct {
	store repository.Store
	cache SnapshotCache
}

// NewColumnService creates a ColumnService. cache may be nil.
func NewColumnService(store repository.Store, cache SnapshotCache) ColumnService {
	return &columnService{store: store, cache: orNop(cache)}
}

func (s *columnService) ListColumns(ctx context.Context, boardID uint) ([]ColumnDetailResponse, error) {
	fields := log.Fields{"board_id": boardID}
	if _, err := s.store.Boards().FindByID(ctx, boardID); err != nil {
		return nil, failure(lookupErr("board", boardID, err), "list columns", fields)
	}
	columns, err := s.store.Columns().ListByBoard(ctx, boardID, true)
	if err != nil {
		return nil, failure(err, "list columns", fields)
	}
	return newColumnDetailResponses(columns), nil
}

func (s *columnService) CreateColumn(ctx context.Context, boardID uint, req CreateColumnRequest) (*ColumnResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	column := &domain.Column{BoardID: boardID, Title: req.Title}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Boards().Lock(ctx, boardID); err != nil {
			return lookupErr("board", boardID, err)
		}
		return tx.Columns().Create(ctx, column)
	})
	if err != nil {
		return nil, failure(err, "create column", log.Fields{"board_id": boardID})
	}
	s.cache.Evict(ctx, boardID)

	resp := newColumnResponse(column)
	return &resp, nil
}

func (s *columnService) GetColumn(ctx context.Context, id uint) (*ColumnDetailResponse, error) {
	column, err := s.store.Columns().FindByIDWithTasks(ctx, id)
	if err != nil {
		return nil, failure(lookupErr("column", id, err), "get column", log.Fields{"column_id": id})
	}
	resp := newColumnDetailResponse(column)
	return &resp, nil
}

func (s *columnService) UpdateColumn(ctx context.Context, id uint, req UpdateColumnRequest) (*ColumnResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	fields := log.Fields{"column_id": id}
	column, err := s.store.Columns().FindByID(ctx, id)
	if err != nil {
		return nil, failure(lookupErr("column", id, err), "update column", fields)
	}
	column.Title = req.Title
	if err := s.store.Columns().Update(ctx, column); err != nil {
		return nil, failure(err, "update column", fields)
	}
	s.cache.Evict(ctx, column.BoardID)

	resp := newColumnResponse(column)
	return &resp, nil
}

func (s *columnService) DeleteColumn(ctx context.Context, id uint) error {
	var boardID uint
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		column, err := s.lockedColumn(ctx, tx, id)
		if err != nil {
			return err
		}
		boardID = column.BoardID
		if err := tx.Columns().Delete(ctx, id); err != nil {
			return err
		}
		return reorder.Close(ctx, tx.Columns().Positions(boardID), column.Position)
	})
	if err != nil {
		return failure(err, "delete column", log.Fields{"column_id": id})
	}
	s.cache.Evict(ctx, boardID)
	return nil
}

func (s *columnService) MoveColumn(ctx context.Context, id uint, req MoveColumnRequest) (*ColumnDetailResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var (
		moved  *domain.Column
		plan   reorder.Plan
		fields = log.Fields{"column_id": id, "position": *req.Position}
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		column, err := s.lockedColumn(ctx, tx, id)
		if err != nil {
			return err
		}
		plan, err = reorder.MoveWithin(ctx, tx.Columns().Positions(column.BoardID), id, *req.Position)
		if err != nil {
			return err
		}
		moved, err = tx.Columns().FindByIDWithTasks(ctx, id)
		return err
	})
	if err != nil {
		return nil, failure(err, "move column", fields)
	}
	if !plan.NoOp() {
		s.cache.Evict(ctx, moved.BoardID)
		log.WithFields(fields).WithField("from", plan.From).WithField("to", plan.To).Debug("column moved")
	}

	resp := newColumnDetailResponse(moved)
	return &resp, nil
}

func (s *columnService) ReorderColumns(ctx context.Context, boardID uint, req ReorderColumnsRequest) ([]ColumnDetailResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	entries, err := orderEntries("columns", req.Columns)
	if err != nil {
		return nil, err
	}

	fields := log.Fields{"board_id": boardID}
	var columns []domain.Column
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Boards().Lock(ctx, boardID); err != nil {
			return lookupErr("board", boardID, err)
		}
		ids := entryIDs(entries)
		existing, err := tx.Columns().ExistingIDs(ctx, ids)
		if err != nil {
			return err
		}
		if id, ok := missingID(ids, existing); ok {
			return notFound("column", id)
		}
		if err := applyOrder(ctx, tx.Columns().Positions(boardID), "columns", entries, fields); err != nil {
			return err
		}
		columns, err = tx.Columns().ListByBoard(ctx, boardID, true)
		return err
	})
	if err != nil {
		return nil, failure(err, "reorder columns", fields)
	}
	s.cache.Evict(ctx, boardID)
	return newColumnDetailResponses(columns), nil
}

// lockedColumn loads a column and locks its board, then re-reads the column
// so its position reflects any writer that held the lock before us.
func (s *columnService) lockedColumn(ctx context.Context, tx repository.Store, id uint) (*domain.Column, error) {
	column, err := tx.Columns().FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr("column", id, err)
	}
	if _, err := tx.Boards().Lock(ctx, column.BoardID); err != nil {
		return nil, lookupErr("board", column.BoardID, err)
	}
	column, err = tx.Columns().FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr("column", id, err)
	}
	return column, nil
}
