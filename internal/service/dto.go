package service

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Tomlord1122/kanban-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// --- Requests ---

// CreateBoardRequest holds the data needed to create a board.
type CreateBoardRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// UpdateBoardRequest replaces the name of a board. A nil description leaves
// the current one untouched.
type UpdateBoardRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

type CreateColumnRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type UpdateColumnRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// MoveColumnRequest asks for a column to take a new slot in its board.
// Positions past the last slot are clamped.
type MoveColumnRequest struct {
	Position *int `json:"position" validate:"required,min=0"`
}

// CreateTaskRequest holds the data needed to create a task. The task is
// appended to the end of its column.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	Tag         *string `json:"tag" validate:"omitempty,max=50"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,max=255"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest carries the same fields as CreateTaskRequest. Omitted
// optional fields keep their current value.
type UpdateTaskRequest CreateTaskRequest

// MoveTaskRequest moves a task to a position in a column, possibly a
// different one.
type MoveTaskRequest struct {
	ColumnID uint `json:"column_id" validate:"required,gt=0"`
	Position *int `json:"position" validate:"required,min=0"`
}

// PositionUpdate is one entry of a bulk reorder.
type PositionUpdate struct {
	ID       uint `json:"id" validate:"required,gt=0"`
	Position *int `json:"position" validate:"required,min=0"`
}

type ReorderColumnsRequest struct {
	Columns []PositionUpdate `json:"columns" validate:"required,min=1,dive"`
}

type ReorderTasksRequest struct {
	Tasks []PositionUpdate `json:"tasks" validate:"required,min=1,dive"`
}

// --- Responses ---

type BoardResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// BoardDetailResponse is a board with its columns and their tasks, all in
// position order.
type BoardDetailResponse struct {
	BoardResponse
	Columns []ColumnDetailResponse `json:"columns"`
}

type ColumnResponse struct {
	ID        uint   `json:"id"`
	BoardID   uint   `json:"board_id"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ColumnDetailResponse struct {
	ColumnResponse
	Tasks []TaskResponse `json:"tasks"`
}

type TaskResponse struct {
	ID          uint    `json:"id"`
	ColumnID    uint    `json:"column_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Tag         *string `json:"tag"`
	DueDate     *string `json:"due_date"`
	AssignedTo  *string `json:"assigned_to"`
	Priority    string  `json:"priority"`
	Position    int     `json:"position"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// MoveTaskResponse reports the moved task and every column whose task
// positions changed.
type MoveTaskResponse struct {
	Message         string                 `json:"message"`
	Task            TaskResponse           `json:"task"`
	AffectedColumns []ColumnDetailResponse `json:"affected_columns"`
}

// --- Conversions ---

func newBoardResponse(b *domain.Board) BoardResponse {
	return BoardResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
}

func newBoardDetailResponse(b *domain.Board) BoardDetailResponse {
	return BoardDetailResponse{
		BoardResponse: newBoardResponse(b),
		Columns:       newColumnDetailResponses(b.Columns),
	}
}

func newColumnResponse(c *domain.Column) ColumnResponse {
	return ColumnResponse{
		ID:        c.ID,
		BoardID:   c.BoardID,
		Title:     c.Title,
		Position:  c.Position,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func newColumnDetailResponse(c *domain.Column) ColumnDetailResponse {
	return ColumnDetailResponse{
		ColumnResponse: newColumnResponse(c),
		Tasks:          newTaskResponses(c.Tasks),
	}
}

func newColumnDetailResponses(columns []domain.Column) []ColumnDetailResponse {
	out := make([]ColumnDetailResponse, 0, len(columns))
	for i := range columns {
		out = append(out, newColumnDetailResponse(&columns[i]))
	}
	return out
}

func newTaskResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		ColumnID:    t.ColumnID,
		Title:       t.Title,
		Description: t.Description,
		Tag:         t.Tag,
		AssignedTo:  t.AssignedTo,
		Priority:    string(t.Priority),
		Position:    t.Position,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		d := time.Time(*t.DueDate).Format(dateLayout)
		resp.DueDate = &d
	}
	return resp
}

func newTaskResponses(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, newTaskResponse(&tasks[i]))
	}
	return out
}

// parseDueDate converts an already validated YYYY-MM-DD string.
func parseDueDate(s *string) (*datatypes.Date, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, invalid("due_date", "must be a date formatted YYYY-MM-DD")
	}
	d := datatypes.Date(t)
	return &d, nil
}
