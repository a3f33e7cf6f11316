package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newAuthService(e *testEnv, mailer *fakeMailer) *AuthService {
	return NewAuthService(e.userRepo, e.tokenRepo, newCategoryService(e), mailer, discardLogger(), "test-secret", time.Hour)
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	mailer := newFakeMailer()
	svc := newAuthService(env, mailer)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.IsVerified {
		t.Error("fresh account already verified")
	}

	// Login is refused until the email is verified.
	if _, err := svc.Login(ctx, "alice@example.com", "s3cret-pw"); !errors.Is(err, ErrNotVerified) {
		t.Errorf("unverified login: got %v, want ErrNotVerified", err)
	}

	otp := mailer.lastOTP(t, "alice@example.com")
	if len(otp) != 6 {
		t.Errorf("otp %q is not six digits", otp)
	}
	if err := svc.VerifyOTP(ctx, "alice@example.com", "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("wrong code: got %v, want ErrInvalidOTP", err)
	}
	if err := svc.VerifyOTP(ctx, "alice@example.com", otp); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Verification seeds the default category.
	categories, err := env.catRepo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != defaultCategoryName {
		t.Errorf("categories after verify = %+v, want single %q", categories, defaultCategoryName)
	}

	// A used code cannot be replayed.
	if err := svc.VerifyOTP(ctx, "alice@example.com", otp); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("replayed code: got %v, want ErrInvalidOTP", err)
	}

	token, err := svc.Login(ctx, "alice@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != user.ID {
		t.Errorf("token user id = %d, want %d", userID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	mailer := newFakeMailer()
	svc := newAuthService(env, mailer)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "pw-one"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "Impostor", "alice@example.com", "pw-two"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	mailer := newFakeMailer()
	svc := newAuthService(env, mailer)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "right-pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.VerifyOTP(ctx, "alice@example.com", mailer.lastOTP(t, "alice@example.com")); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "right-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestResendInvalidatesOldOTP(t *testing.T) {
	env := newTestEnv(t)
	mailer := newFakeMailer()
	svc := newAuthService(env, mailer)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	first := mailer.lastOTP(t, "alice@example.com")

	if err := svc.ResendOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	second := mailer.lastOTP(t, "alice@example.com")

	if first != second {
		if err := svc.VerifyOTP(ctx, "alice@example.com", first); !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("stale code: got %v, want ErrInvalidOTP", err)
		}
	}
	if err := svc.VerifyOTP(ctx, "alice@example.com", second); err != nil {
		t.Fatalf("verify with fresh code: %v", err)
	}

	if err := svc.ResendOTP(ctx, "alice@example.com"); !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("resend after verify: got %v, want ErrAlreadyVerified", err)
	}
	if err := svc.ResendOTP(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("resend unknown user: got %v, want ErrUserNotFound", err)
	}
}

func TestRegistrationSurvivesMailFailure(t *testing.T) {
	env := newTestEnv(t)
	mailer := newFakeMailer()
	svc := newAuthService(env, mailer)
	ctx := context.Background()

	mailer.setFail("alice@example.com", true)
	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register with broken smtp: %v", err)
	}

	// Once mail recovers, a resend gets a working code through.
	mailer.setFail("alice@example.com", false)
	if err := svc.ResendOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if err := svc.VerifyOTP(ctx, "alice@example.com", mailer.lastOTP(t, "alice@example.com")); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
