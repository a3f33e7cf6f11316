package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todolist/internal/mail"
	"todolist/internal/model"
	"todolist/internal/repository"
)

type testEnv struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	tokenRepo *repository.TokenRepository
	catRepo   *repository.CategoryRepository
	taskRepo  *repository.TaskRepository
	fileRepo  *repository.FileRepository
	logRepo   *repository.EmailLogRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	// One connection keeps the in-memory database alive and private.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Task{},
		&model.TaskFile{},
		&model.EmailVerificationToken{},
		&model.EmailLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return &testEnv{
		db:        db,
		userRepo:  repository.NewUserRepository(db),
		tokenRepo: repository.NewTokenRepository(db),
		catRepo:   repository.NewCategoryRepository(db),
		taskRepo:  repository.NewTaskRepository(db),
		fileRepo:  repository.NewFileRepository(db),
		logRepo:   repository.NewEmailLogRepository(db),
	}
}

func (e *testEnv) mustCreateUser(t *testing.T, name, email string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, PasswordHash: "x", IsVerified: true}
	if err := e.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) mustCreateTask(t *testing.T, task *model.Task) *model.Task {
	t.Helper()
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if task.Visibility == "" {
		task.Visibility = model.VisibilityPrivate
	}
	if err := e.taskRepo.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

// setUpdatedAt pins updated_at without triggering gorm's auto-touch.
func (e *testEnv) setUpdatedAt(t *testing.T, taskID uint, at time.Time) {
	t.Helper()
	if err := e.db.Model(&model.Task{}).Where("id = ?", taskID).
		UpdateColumn("updated_at", at).Error; err != nil {
		t.Fatalf("pin updated_at: %v", err)
	}
}

func (e *testEnv) reloadTask(t *testing.T, taskID uint) *model.Task {
	t.Helper()
	var task model.Task
	if err := e.db.First(&task, taskID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	return &task
}

type sentMail struct {
	To   string
	Name string
	Data mail.ReminderData
}

// fakeMailer records every send and can be told to fail per recipient.
type fakeMailer struct {
	mu        sync.Mutex
	otps      map[string][]string
	reminders []sentMail
	failFor   map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		otps:    make(map[string][]string),
		failFor: make(map[string]bool),
	}
}

func (m *fakeMailer) SendOTP(to, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[to] {
		return errors.New("smtp unavailable")
	}
	m.otps[to] = append(m.otps[to], otp)
	return nil
}

func (m *fakeMailer) SendReminder(to, name string, data mail.ReminderData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[to] {
		return errors.New("smtp unavailable")
	}
	m.reminders = append(m.reminders, sentMail{To: to, Name: name, Data: data})
	return nil
}

func (m *fakeMailer) setFail(to string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[to] = fail
}

func (m *fakeMailer) lastOTP(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := m.otps[to]
	if len(codes) == 0 {
		t.Fatalf("no otp recorded for %s", to)
	}
	return codes[len(codes)-1]
}

func (m *fakeMailer) sentReminders() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.reminders))
	copy(out, m.reminders)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func timePtr(t time.Time) *time.Time { return &t }

func uintPtr(v uint) *uint { return &v }
