package model

import "time"

// TaskFile is attachment metadata; the bytes live on disk at FilePath.
type TaskFile struct {
	ID           uint `gorm:"primaryKey"`
	TaskID       uint `gorm:"index"`
	FilePath     string
	OriginalName string
	MimeType     string
	Size         int64
	CreatedAt    time.Time
}
