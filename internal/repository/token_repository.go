package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"todolist/internal/model"
)

// TokenRepository manages email verification OTP tokens.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *model.EmailVerificationToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// FindValid returns the newest unused, unexpired token matching the code.
func (r *TokenRepository) FindValid(ctx context.Context, userID uint, code string, now time.Time) (*model.EmailVerificationToken, error) {
	var token model.EmailVerificationToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND otp_code = ? AND used = ? AND expires_at > ?", userID, code, false, now).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// InvalidateAll marks every unused token of the user as used, so a resend
// leaves only the newest code working.
func (r *TokenRepository) InvalidateAll(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.EmailVerificationToken{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error; err != nil {
		return fmt.Errorf("invalidate tokens: %w", err)
	}
	return nil
}
