package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Tomlord1122/kanban-backend/internal/domain"
	"github.com/Tomlord1122/kanban-backend/internal/reorder"
	"github.com/Tomlord1122/kanban-backend/internal/testutil/pgtest"
)

func newStore(t *testing.T) Store {
	t.Helper()
	return NewGormStore(pgtest.Open(t).GetDB())
}

func seedBoard(t *testing.T, s Store, columns int) (*domain.Board, []domain.Column) {
	t.Helper()
	ctx := context.Background()
	board := &domain.Board{Name: "Board"}
	require.NoError(t, s.Boards().Create(ctx, board))
	cols := make([]domain.Column, 0, columns)
	for i := 0; i < columns; i++ {
		c := &domain.Column{BoardID: board.ID, Title: "Column"}
		require.NoError(t, s.Columns().Create(ctx, c))
		cols = append(cols, *c)
	}
	return board, cols
}

func seedTasks(t *testing.T, s Store, columnID uint, n int) []uint {
	t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		task := &domain.Task{ColumnID: columnID, Title: "Task", Priority: domain.PriorityMedium}
		require.NoError(t, s.Tasks().Create(context.Background(), task))
		ids = append(ids, task.ID)
	}
	return ids
}

func taskOrder(t *testing.T, s Store, columnID uint) ([]uint, []int) {
	t.Helper()
	tasks, err := s.Tasks().ListByColumn(context.Background(), columnID)
	require.NoError(t, err)
	var ids []uint
	var positions []int
	for _, task := range tasks {
		ids = append(ids, task.ID)
		positions = append(positions, task.Position)
	}
	return ids, positions
}

func TestCreateAppendsPositions(t *testing.T) {
	s := newStore(t)
	_, cols := seedBoard(t, s, 3)

	for i, c := range cols {
		assert.Equal(t, i, c.Position)
	}
	ids := seedTasks(t, s, cols[0].ID, 3)
	_, positions := taskOrder(t, s, cols[0].ID)
	assert.Len(t, ids, 3)
	assert.Equal(t, []int{0, 1, 2}, positions)
}

func TestScopeShiftTouchesOnlyItsParent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, cols := seedBoard(t, s, 2)
	seedTasks(t, s, cols[0].ID, 4)
	seedTasks(t, s, cols[1].ID, 2)

	err := s.Tasks().Positions(cols[0].ID).Shift(ctx, reorder.Shift{Min: 1, Max: 2, Delta: 1})
	require.NoError(t, err)

	_, a := taskOrder(t, s, cols[0].ID)
	_, b := taskOrder(t, s, cols[1].ID)
	assert.Equal(t, []int{0, 2, 3, 3}, a)
	assert.Equal(t, []int{0, 1}, b)
}

func TestScopePositionIgnoresForeignRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, cols := seedBoard(t, s, 2)
	foreign := seedTasks(t, s, cols[1].ID, 1)[0]

	_, ok, err := s.Tasks().Positions(cols[0].ID).Position(ctx, foreign)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransferInsideTransaction(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, cols := seedBoard(t, s, 2)
	a := seedTasks(t, s, cols[0].ID, 3)
	b := seedTasks(t, s, cols[1].ID, 2)

	err := s.Transaction(ctx, func(tx Store) error {
		_, err := reorder.Transfer(ctx, tx.Tasks().Positions(cols[0].ID), tx.Tasks().Positions(cols[1].ID), a[1], 0)
		return err
	})
	require.NoError(t, err)

	ids, positions := taskOrder(t, s, cols[0].ID)
	assert.Equal(t, []uint{a[0], a[2]}, ids)
	assert.Equal(t, []int{0, 1}, positions)
	ids, positions = taskOrder(t, s, cols[1].ID)
	assert.Equal(t, []uint{a[1], b[0], b[1]}, ids)
	assert.Equal(t, []int{0, 1, 2}, positions)
}

func TestTransactionRollsBackPartialShifts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, cols := seedBoard(t, s, 1)
	ids := seedTasks(t, s, cols[0].ID, 3)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.Tasks().Positions(cols[0].ID).Shift(ctx, reorder.Remove(0)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, positions := taskOrder(t, s, cols[0].ID)
	assert.Equal(t, ids, got)
	assert.Equal(t, []int{0, 1, 2}, positions)
}

func TestBoardDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	board, cols := seedBoard(t, s, 2)
	seedTasks(t, s, cols[0].ID, 2)

	require.NoError(t, s.Boards().Delete(ctx, board.ID))

	_, err := s.Boards().FindByID(ctx, board.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	columns, err := s.Columns().ListByBoard(ctx, board.ID, false)
	require.NoError(t, err)
	assert.Empty(t, columns)
	tasks, err := s.Tasks().ListByColumn(ctx, cols[0].ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFindByIDWithColumnsOrdersNestedRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	board, cols := seedBoard(t, s, 3)
	ids := seedTasks(t, s, cols[1].ID, 3)
	require.NoError(t, s.Transaction(ctx, func(tx Store) error {
		if _, err := reorder.MoveWithin(ctx, tx.Columns().Positions(board.ID), cols[2].ID, 0); err != nil {
			return err
		}
		_, err := reorder.MoveWithin(ctx, tx.Tasks().Positions(cols[1].ID), ids[2], 0)
		return err
	}))

	got, err := s.Boards().FindByIDWithColumns(ctx, board.ID)
	require.NoError(t, err)

	require.Len(t, got.Columns, 3)
	assert.Equal(t, []uint{cols[2].ID, cols[0].ID, cols[1].ID},
		[]uint{got.Columns[0].ID, got.Columns[1].ID, got.Columns[2].ID})
	tasks := got.Columns[2].Tasks
	require.Len(t, tasks, 3)
	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, []uint{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestColumnLockReportsMissingRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, cols := seedBoard(t, s, 1)

	err := s.Transaction(ctx, func(tx Store) error {
		_, err := tx.Columns().Lock(ctx, cols[0].ID, 9999)
		return err
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestExistingIDsReturnsOnlyStoredRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, cols := seedBoard(t, s, 2)
	tasks := seedTasks(t, s, cols[1].ID, 2)

	found, err := s.Tasks().ExistingIDs(ctx, []uint{tasks[0], 424242, tasks[1]})
	require.NoError(t, err)
	assert.ElementsMatch(t, tasks, found)

	found, err = s.Columns().ExistingIDs(ctx, []uint{cols[0].ID, 424242})
	require.NoError(t, err)
	assert.Equal(t, []uint{cols[0].ID}, found)

	found, err = s.Columns().ExistingIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}
