package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"todolist/internal/model"
)

// TaskRepository handles CRUD and the filtered reads behind the task views.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Category").Preload("Files").Preload("User").
		Where("user_id = ? AND id = ?", userID, taskID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateFields applies a partial update; nil map values clear the column.
func (r *TaskRepository) UpdateFields(ctx context.Context, taskID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// visibleTo scopes a query to the user's own tasks plus other users' public ones.
func visibleTo(db *gorm.DB, userID uint) *gorm.DB {
	return db.Where("(user_id = ? OR (user_id <> ? AND visibility = ?))",
		userID, userID, model.VisibilityPublic)
}

func (r *TaskRepository) withViewPreloads(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").Preload("Files").Preload("User")
}

// ListVisibleDueBefore returns non-complete visible tasks with a due date at
// or before the given instant, ordered by due date ascending.
func (r *TaskRepository) ListVisibleDueBefore(ctx context.Context, userID uint, before time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := visibleTo(r.withViewPreloads(ctx), userID).
		Where("status <> ?", model.StatusComplete).
		Where("due_date IS NOT NULL AND due_date <= ?", before).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListVisibleOverdue returns non-complete visible tasks due strictly before
// the start of the current day.
func (r *TaskRepository) ListVisibleOverdue(ctx context.Context, userID uint, startOfToday time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := visibleTo(r.withViewPreloads(ctx), userID).
		Where("status <> ?", model.StatusComplete).
		Where("due_date IS NOT NULL AND due_date < ?", startOfToday).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListVisibleDueBetween returns non-complete visible tasks due in (after, until].
func (r *TaskRepository) ListVisibleDueBetween(ctx context.Context, userID uint, after, until time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := visibleTo(r.withViewPreloads(ctx), userID).
		Where("status <> ?", model.StatusComplete).
		Where("due_date IS NOT NULL AND due_date > ? AND due_date <= ?", after, until).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListCompleted returns the user's own completed tasks, most recently
// touched first.
func (r *TaskRepository) ListCompleted(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := r.withViewPreloads(ctx).
		Where("user_id = ? AND status = ?", userID, model.StatusComplete).
		Order("updated_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Search matches the query against title and description of visible tasks.
func (r *TaskRepository) Search(ctx context.Context, userID uint, query string, limit int) ([]model.Task, error) {
	pattern := "%" + query + "%"
	var tasks []model.Task
	err := visibleTo(r.withViewPreloads(ctx), userID).
		Where("(title LIKE ? OR description LIKE ?)", pattern, pattern).
		Order("due_date ASC").
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Order("updated_at DESC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListPendingByCategory returns the user's own non-complete tasks in one category.
func (r *TaskRepository) ListPendingByCategory(ctx context.Context, userID, categoryID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := r.withViewPreloads(ctx).
		Where("user_id = ? AND category_id = ? AND status <> ?", userID, categoryID, model.StatusComplete).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountPendingDueWithin counts the user's own non-complete tasks due in [from, until].
func (r *TaskRepository) CountPendingDueWithin(ctx context.Context, userID uint, from, until time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND status <> ?", userID, model.StatusComplete).
		Where("due_date IS NOT NULL AND due_date >= ? AND due_date <= ?", from, until).
		Count(&count).Error
	return count, err
}

// CountPendingDueAfter counts the user's own non-complete tasks due in (after, until].
func (r *TaskRepository) CountPendingDueAfter(ctx context.Context, userID uint, after, until time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND status <> ?", userID, model.StatusComplete).
		Where("due_date IS NOT NULL AND due_date > ? AND due_date <= ?", after, until).
		Count(&count).Error
	return count, err
}

func (r *TaskRepository) CountCompleted(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND status = ?", userID, model.StatusComplete).
		Count(&count).Error
	return count, err
}

// CountPendingPerCategory returns non-complete task counts keyed by category id.
func (r *TaskRepository) CountPendingPerCategory(ctx context.Context, userID uint) (map[uint]int64, error) {
	type row struct {
		CategoryID uint
		Count      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("category_id, COUNT(*) AS count").
		Where("user_id = ? AND status <> ? AND category_id IS NOT NULL", userID, model.StatusComplete).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}

func (r *TaskRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// ListDueReminders returns tasks in the Due reminder state: reminder time
// passed, not yet notified, still pending. Owner and category come preloaded
// for the mail body.
func (r *TaskRepository) ListDueReminders(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Category").
		Where("reminder_at IS NOT NULL AND reminder_at <= ?", now).
		Where("reminder_sent = ? AND status = ?", false, model.StatusPending).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkReminderSent flips the sent flag; setting a boolean true is idempotent.
func (r *TaskRepository) MarkReminderSent(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("reminder_sent", true).Error; err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}
