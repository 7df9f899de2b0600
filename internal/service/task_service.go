package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Tomlord1122/kanban-backend/internal/domain"
	"github.com/Tomlord1122/kanban-backend/internal/reorder"
	"github.com/Tomlord1122/kanban-backend/internal/repository"
)

// TaskService defines the operations on tasks. Every write keeps the task
// positions of the columns involved dense.
type TaskService interface {
	// ListTasks returns the column's tasks in order.
	ListTasks(ctx context.Context, columnID uint) ([]TaskResponse, error)
	// CreateTask appends a task to the column.
	CreateTask(ctx context.Context, columnID uint, req CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, id uint) (*TaskResponse, error)
	UpdateTask(ctx context.Context, id uint, req UpdateTaskRequest) (*TaskResponse, error)
	// DeleteTask removes the task and closes the gap it leaves in its column.
	DeleteTask(ctx context.Context, id uint) error
	// MoveTask moves a task to a position in a column, which may be its
	// current one.
	MoveTask(ctx context.Context, id uint, req MoveTaskRequest) (*MoveTaskResponse, error)
	// ReorderTasks applies a bulk reorder to the column's tasks and returns
	// them in their new order.
	ReorderTasks(ctx context.Context, columnID uint, req ReorderTasksRequest) ([]TaskResponse, error)
}

type taskService struct {
	store repository.Store
	cache SnapshotCache
}

// NewTaskService creates a TaskService. cache may be nil.
func NewTaskService(store repository.Store, cache SnapshotCache) TaskService {
	return &taskService{store: store, cache: orNop(cache)}
}

func (s *taskService) ListTasks(ctx context.Context, columnID uint) ([]TaskResponse, error) {
	fields := log.Fields{"column_id": columnID}
	if _, err := s.store.Columns().FindByID(ctx, columnID); err != nil {
		return nil, failure(lookupErr("column", columnID, err), "list tasks", fields)
	}
	tasks, err := s.store.Tasks().ListByColumn(ctx, columnID)
	if err != nil {
		return nil, failure(err, "list tasks", fields)
	}
	return newTaskResponses(tasks), nil
}

func (s *taskService) CreateTask(ctx context.Context, columnID uint, req CreateTaskRequest) (*TaskResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	task := &domain.Task{ColumnID: columnID, Priority: domain.PriorityMedium}
	if err := applyTaskFields(task, UpdateTaskRequest(req)); err != nil {
		return nil, err
	}

	var boardID uint
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		columns, err := tx.Columns().Lock(ctx, columnID)
		if err != nil {
			return lookupErr("column", columnID, err)
		}
		boardID = columns[0].BoardID
		return tx.Tasks().Create(ctx, task)
	})
	if err != nil {
		return nil, failure(err, "create task", log.Fields{"column_id": columnID})
	}
	s.cache.Evict(ctx, boardID)

	resp := newTaskResponse(task)
	return &resp, nil
}

func (s *taskService) GetTask(ctx context.Context, id uint) (*TaskResponse, error) {
	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, failure(lookupErr("task", id, err), "get task", log.Fields{"task_id": id})
	}
	resp := newTaskResponse(task)
	return &resp, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id uint, req UpdateTaskRequest) (*TaskResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	fields := log.Fields{"task_id": id}
	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, failure(lookupErr("task", id, err), "update task", fields)
	}
	if err := applyTaskFields(task, req); err != nil {
		return nil, err
	}
	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, failure(err, "update task", fields)
	}
	s.evictColumnBoards(ctx, task.ColumnID)

	resp := newTaskResponse(task)
	return &resp, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id uint) error {
	var boardID uint
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, columns, err := lockedTask(ctx, tx, id)
		if err != nil {
			return err
		}
		boardID = columns[0].BoardID
		if err := tx.Tasks().Delete(ctx, id); err != nil {
			return err
		}
		return reorder.Close(ctx, tx.Tasks().Positions(task.ColumnID), task.Position)
	})
	if err != nil {
		return failure(err, "delete task", log.Fields{"task_id": id})
	}
	s.cache.Evict(ctx, boardID)
	return nil
}

func (s *taskService) MoveTask(ctx context.Context, id uint, req MoveTaskRequest) (*MoveTaskResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	fields := log.Fields{"task_id": id, "column_id": req.ColumnID, "position": *req.Position}

	var (
		moved    *domain.Task
		affected []domain.Column
		plan     reorder.Plan
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindByID(ctx, id)
		if err != nil {
			return lookupErr("task", id, err)
		}
		oldColumnID := task.ColumnID
		if _, err := tx.Columns().Lock(ctx, oldColumnID, req.ColumnID); err != nil {
			if _, ferr := tx.Columns().FindByID(ctx, req.ColumnID); ferr != nil {
				return lookupErr("column", req.ColumnID, ferr)
			}
			return lookupErr("column", oldColumnID, err)
		}
		if task, err = tx.Tasks().FindByID(ctx, id); err != nil {
			return lookupErr("task", id, err)
		}
		if task.ColumnID != oldColumnID {
			return movedConcurrently(id, oldColumnID)
		}

		from := tx.Tasks().Positions(oldColumnID)
		if oldColumnID == req.ColumnID {
			plan, err = reorder.MoveWithin(ctx, from, id, *req.Position)
		} else {
			plan, err = reorder.Transfer(ctx, from, tx.Tasks().Positions(req.ColumnID), id, *req.Position)
		}
		if err != nil {
			return err
		}

		if moved, err = tx.Tasks().FindByID(ctx, id); err != nil {
			return err
		}
		affected, err = tx.Columns().FindByIDs(ctx, []uint{oldColumnID, req.ColumnID})
		return err
	})
	if err != nil {
		return nil, failure(err, "move task", fields)
	}

	if !plan.NoOp() {
		boards := make([]uint, 0, len(affected))
		for _, c := range affected {
			boards = append(boards, c.BoardID)
		}
		s.cache.Evict(ctx, boards...)
		log.WithFields(fields).WithField("from", plan.From).WithField("to", plan.To).Debug("task moved")
	}

	return &MoveTaskResponse{
		Message:         "Task moved successfully",
		Task:            newTaskResponse(moved),
		AffectedColumns: newColumnDetailResponses(affected),
	}, nil
}

func (s *taskService) ReorderTasks(ctx context.Context, columnID uint, req ReorderTasksRequest) ([]TaskResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	entries, err := orderEntries("tasks", req.Tasks)
	if err != nil {
		return nil, err
	}

	fields := log.Fields{"column_id": columnID}
	var (
		boardID uint
		tasks   []domain.Task
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		columns, err := tx.Columns().Lock(ctx, columnID)
		if err != nil {
			return lookupErr("column", columnID, err)
		}
		boardID = columns[0].BoardID
		ids := entryIDs(entries)
		existing, err := tx.Tasks().ExistingIDs(ctx, ids)
		if err != nil {
			return err
		}
		if id, ok := missingID(ids, existing); ok {
			return notFound("task", id)
		}
		if err := applyOrder(ctx, tx.Tasks().Positions(columnID), "tasks", entries, fields); err != nil {
			return err
		}
		tasks, err = tx.Tasks().ListByColumn(ctx, columnID)
		return err
	})
	if err != nil {
		return nil, failure(err, "reorder tasks", fields)
	}
	s.cache.Evict(ctx, boardID)
	return newTaskResponses(tasks), nil
}

func (s *taskService) evictColumnBoards(ctx context.Context, columnID uint) {
	column, err := s.store.Columns().FindByID(ctx, columnID)
	if err != nil {
		return
	}
	s.cache.Evict(ctx, column.BoardID)
}

// lockedTask locks the column of task id and returns the task as seen after
// the lock was taken. A task moved to another column before the lock was
// granted is reported as a conflict.
func lockedTask(ctx context.Context, tx repository.Store, id uint) (*domain.Task, []domain.Column, error) {
	task, err := tx.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, nil, lookupErr("task", id, err)
	}
	columnID := task.ColumnID
	columns, err := tx.Columns().Lock(ctx, columnID)
	if err != nil {
		return nil, nil, lookupErr("column", columnID, err)
	}
	task, err = tx.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, nil, lookupErr("task", id, err)
	}
	if task.ColumnID != columnID {
		return nil, nil, movedConcurrently(id, columnID)
	}
	return task, columns, nil
}

// applyTaskFields copies a validated request onto task. Optional fields left
// nil keep their current value and an empty due date clears it. An empty
// priority means medium on a new task and no change on an existing one.
func applyTaskFields(task *domain.Task, req UpdateTaskRequest) error {
	task.Title = req.Title
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Tag != nil {
		task.Tag = req.Tag
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else {
			due, err := parseDueDate(req.DueDate)
			if err != nil {
				return err
			}
			task.DueDate = due
		}
	}
	if req.AssignedTo != nil {
		task.AssignedTo = req.AssignedTo
	}
	if req.Priority != nil && *req.Priority != "" {
		task.Priority = domain.Priority(*req.Priority)
	}
	return nil
}
