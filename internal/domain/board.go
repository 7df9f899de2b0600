package domain

import "time"

// Board owns an ordered list of columns. Deleting a board removes its columns
// and their tasks.
type Board struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"size:255;not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Columns []Column `gorm:"constraint:OnDelete:CASCADE"`
}
