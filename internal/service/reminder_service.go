package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"todolist/internal/mail"
	"todolist/internal/model"
	"todolist/internal/repository"
)

// ReminderService runs the reminder poll: find every task whose reminder time
// has arrived, send one email, flip the sent flag. A failed send leaves the
// task due, so the next tick retries it; that is the only retry mechanism.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	logRepo  *repository.EmailLogRepository
	mailer   mail.Mailer
	log      *slog.Logger
}

func NewReminderService(taskRepo *repository.TaskRepository, logRepo *repository.EmailLogRepository, mailer mail.Mailer, log *slog.Logger) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, logRepo: logRepo, mailer: mailer, log: log}
}

// ProcessDue executes one tick. A storage failure aborts the whole tick with
// no partial side effects; per-task mail failures are logged and skipped so
// one bad address cannot starve the rest of the batch.
func (s *ReminderService) ProcessDue(ctx context.Context, now time.Time) error {
	tasks, err := s.taskRepo.ListDueReminders(ctx, now)
	if err != nil {
		return fmt.Errorf("list due reminders: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	s.log.Info("due reminders found", slog.Int("count", len(tasks)))

	for _, task := range tasks {
		if err := s.remindOne(ctx, task); err != nil {
			s.log.Error("reminder failed",
				slog.Uint64("task_id", uint64(task.ID)),
				slog.String("email", task.User.Email),
				slog.Any("err", err))
		}
	}
	return nil
}

func (s *ReminderService) remindOne(ctx context.Context, task model.Task) error {
	data := mail.ReminderData{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Priority:    string(task.Priority),
	}
	if task.Category != nil {
		data.CategoryName = task.Category.Name
	}

	if err := s.mailer.SendReminder(task.User.Email, task.User.Name, data); err != nil {
		return err
	}

	// Send succeeded: the flag write is an idempotent boolean set, so even a
	// racing duplicate tick converges on sent.
	if err := s.taskRepo.MarkReminderSent(ctx, task.ID); err != nil {
		return err
	}
	if err := s.logRepo.Create(ctx, &model.EmailLog{
		UserID: task.UserID,
		TaskID: task.ID,
		Type:   model.EmailTypeDeadlineReminder,
	}); err != nil {
		return err
	}

	s.log.Info("reminder sent",
		slog.Uint64("task_id", uint64(task.ID)),
		slog.String("email", task.User.Email))
	return nil
}
