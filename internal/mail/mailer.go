package mail

import "time"

// ReminderData carries the task fields rendered into a reminder email.
type ReminderData struct {
	Title        string
	Description  string
	DueDate      *time.Time
	Priority     string
	CategoryName string
}

// Mailer sends the two kinds of mail this system produces. Implementations
// report failure with an error; callers decide whether that is fatal.
type Mailer interface {
	SendOTP(to, otp string) error
	SendReminder(to, recipientName string, data ReminderData) error
}
