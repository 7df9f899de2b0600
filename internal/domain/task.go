package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is ranked among the tasks of its column by Position.
type Task struct {
	ID          uint   `gorm:"primarykey"`
	ColumnID    uint   `gorm:"not null;index"`
	Title       string `gorm:"size:255;not null"`
	Description *string
	Tag         *string `gorm:"size:50"`
	DueDate     *datatypes.Date
	AssignedTo  *string  `gorm:"size:255"`
	Priority    Priority `gorm:"size:10;not null;default:medium"`
	Position    int      `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{&Board{}, &Column{}, &Task{}}
}
