package model

import "time"

// EmailType tags audit log rows by the kind of mail that was sent.
type EmailType string

const EmailTypeDeadlineReminder EmailType = "deadline_reminder"

// EmailLog records every reminder email that actually went out.
type EmailLog struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	TaskID    uint `gorm:"index"`
	Type      EmailType
	CreatedAt time.Time
}
