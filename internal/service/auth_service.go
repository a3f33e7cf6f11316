package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"todolist/internal/mail"
	"todolist/internal/model"
	"todolist/internal/repository"
)

const (
	otpTTL     = 10 * time.Minute
	bcryptCost = 10
)

// Claims defines the information stored in the JWT.
type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService handles registration, email OTP verification and login.
type AuthService struct {
	userRepo    *repository.UserRepository
	tokenRepo   *repository.TokenRepository
	categorySvc *CategoryService
	mailer      mail.Mailer
	log         *slog.Logger

	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, tokenRepo *repository.TokenRepository, categorySvc *CategoryService, mailer mail.Mailer, log *slog.Logger, jwtSecret string, jwtTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		categorySvc: categorySvc,
		mailer:      mailer,
		log:         log,
		jwtSecret:   []byte(jwtSecret),
		jwtTTL:      jwtTTL,
	}
}

// Register creates an unverified account and emails a verification code. A
// failed OTP mail is logged but does not fail registration; the user can ask
// for a resend.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case errors.Is(err, gorm.ErrRecordNotFound):
		// free to register
	default:
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyOTP consumes a valid code, marks the account verified and creates the
// default "Home" category.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokenRepo.FindValid(ctx, user.ID, otp, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID, token.ID); err != nil {
		return err
	}
	return s.categorySvc.EnsureDefault(ctx, user.ID)
}

// ResendOTP invalidates every outstanding code and issues a fresh one.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	if err := s.tokenRepo.InvalidateAll(ctx, user.ID); err != nil {
		return err
	}
	return s.issueOTP(ctx, user)
}

// Login checks credentials and returns a signed bearer token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", ErrNotVerified
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns the user id it carries.
func (s *AuthService) ParseToken(tokenStr string) (uint, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	return claims.UserID, nil
}

func (s *AuthService) findUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueOTP(ctx context.Context, user *model.User) error {
	otp, err := generateOTP()
	if err != nil {
		return err
	}

	token := model.EmailVerificationToken{
		UserID:    user.ID,
		OTPCode:   otp,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := s.tokenRepo.Create(ctx, &token); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(user.Email, otp); err != nil {
		s.log.Error("otp mail failed", slog.String("email", user.Email), slog.Any("err", err))
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
