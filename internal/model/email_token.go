package model

import "time"

// EmailVerificationToken is a one-shot OTP code issued at registration.
type EmailVerificationToken struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	OTPCode   string
	ExpiresAt time.Time
	Used      bool `gorm:"default:false"`
	CreatedAt time.Time
}
