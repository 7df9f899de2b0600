package domain

import "time"

// Column is ranked among the columns of its board by Position.
type Column struct {
	ID        uint   `gorm:"primarykey"`
	BoardID   uint   `gorm:"not null;index"`
	Title     string `gorm:"size:255;not null"`
	Position  int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tasks []Task `gorm:"constraint:OnDelete:CASCADE"`
}
