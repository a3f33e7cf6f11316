package model

import "time"

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status of a task. Complete is terminal for the read views.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
)

// Visibility controls whether other users see the task in their views.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Task represents a single item in the to-do list.
type Task struct {
	ID           uint  `gorm:"primaryKey"`
	UserID       uint  `gorm:"index"`
	CategoryID   *uint `gorm:"index"`
	Title        string
	Description  string
	Priority     Priority   `gorm:"default:'medium'"`
	Status       Status     `gorm:"default:'pending';index"`
	Visibility   Visibility `gorm:"default:'private'"`
	DueDate      *time.Time `gorm:"index"`
	ReminderAt   *time.Time `gorm:"index"`
	ReminderSent bool       `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	User         User       `gorm:"foreignKey:UserID"`
	Category     *Category  `gorm:"foreignKey:CategoryID"`
	Files        []TaskFile `gorm:"foreignKey:TaskID"`
}
