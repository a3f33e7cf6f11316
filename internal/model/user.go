package model

import "time"

// User is an account holder. Tasks and categories belong to exactly one user.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsVerified   bool   `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
