package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"todolist/internal/model"
	"todolist/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	Priority    model.Priority
	Visibility  model.Visibility
	DueDate     *time.Time
	ReminderAt  *time.Time
	CategoryID  *uint
}

// TaskPatch is a partial update. Pointer fields are applied when non-nil;
// nullable columns use the Set flags so they can be cleared explicitly.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	Visibility  *model.Visibility

	DueDate    *time.Time
	DueDateSet bool

	CategoryID  *uint
	CategorySet bool

	ReminderAt    *time.Time
	ReminderAtSet bool
}

// TaskFileView is attachment metadata as surfaced to clients.
type TaskFileView struct {
	ID           uint   `json:"id"`
	FilePath     string `json:"file_path"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
}

// TaskView is a task record shaped for the read views. IsOverdue is derived
// from the due date at query time, never stored.
type TaskView struct {
	ID           uint           `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Priority     model.Priority `json:"priority"`
	Status       model.Status   `json:"status"`
	DueDate      *time.Time     `json:"due_date"`
	CategoryName string         `json:"category_name"`
	IsOverdue    bool           `json:"is_overdue"`
	OwnerID      uint           `json:"owner_id"`
	OwnerName    string         `json:"owner_name"`
	Files        []TaskFileView `json:"files"`
}

// TodayView splits today's visible workload from what already slipped.
type TodayView struct {
	Today   []TaskView `json:"today"`
	Overdue []TaskView `json:"overdue"`
}

// UpcomingView is everything overdue plus the next seven days keyed by
// calendar date (YYYY-MM-DD).
type UpcomingView struct {
	Overdue []TaskView            `json:"overdue"`
	Grouped map[string][]TaskView `json:"grouped"`
}

// CategorySummary is one sidebar row: a category with its pending task count.
type CategorySummary struct {
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	TaskCount    int64  `json:"task_count"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
}

// SidebarSummary backs the navigation counters.
type SidebarSummary struct {
	TodayCount     int64             `json:"today_count"`
	UpcomingCount  int64             `json:"upcoming_count"`
	CompletedCount int64             `json:"completed_count"`
	Categories     []CategorySummary `json:"categories"`
}

// CategoryTasksView is the per-category listing with its display metadata.
type CategoryTasksView struct {
	Tasks         []TaskView `json:"tasks"`
	Overdue       []TaskView `json:"overdue"`
	CategoryName  string     `json:"category_name"`
	CategoryColor string     `json:"category_color"`
	CategoryIcon  string     `json:"category_icon"`
}

const searchLimit = 50
const upcomingDays = 7

// TaskService wraps task CRUD and the time-bucketed read views. All reads
// take an explicit now so callers (and tests) control the clock.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

func (s *TaskService) Create(ctx context.Context, userID uint, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, userID, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	task := model.Task{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Title:       title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      model.StatusPending,
		Visibility:  input.Visibility,
		DueDate:     input.DueDate,
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Visibility == "" {
		task.Visibility = model.VisibilityPrivate
	}
	if input.ReminderAt != nil {
		task.ReminderAt = input.ReminderAt
		task.ReminderSent = false
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update applies a partial edit. Giving ReminderAt any non-null value re-arms
// the reminder: reminder_sent goes back to false and the scheduler will fire
// again once the new time passes.
func (s *TaskService) Update(ctx context.Context, userID, taskID uint, patch TaskPatch) (*model.Task, error) {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		fields["title"] = title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	if patch.Visibility != nil {
		fields["visibility"] = *patch.Visibility
	}
	if patch.DueDateSet {
		fields["due_date"] = patch.DueDate
	}
	if patch.CategorySet {
		if patch.CategoryID != nil {
			if _, err := s.categoryRepo.FindByID(ctx, userID, *patch.CategoryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrCategoryNotFound
				}
				return nil, err
			}
		}
		fields["category_id"] = patch.CategoryID
	}
	if patch.ReminderAtSet {
		fields["reminder_at"] = patch.ReminderAt
		fields["reminder_sent"] = false
	}

	if err := s.taskRepo.UpdateFields(ctx, taskID, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, taskID)
}

// Complete marks a task done. Complete is terminal for the read views.
func (s *TaskService) Complete(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}
	if err := s.taskRepo.UpdateFields(ctx, taskID, map[string]interface{}{
		"status": model.StatusComplete,
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, taskID)
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, userID, taskID)
}

// Today returns the user's visible workload for now's calendar day, split
// into due-today and overdue. Tasks without a due date never show up here.
func (s *TaskService) Today(ctx context.Context, userID uint, now time.Time) (*TodayView, error) {
	start := startOfDay(now)
	end := endOfDay(now)

	tasks, err := s.taskRepo.ListVisibleDueBefore(ctx, userID, end)
	if err != nil {
		return nil, err
	}

	view := &TodayView{Today: []TaskView{}, Overdue: []TaskView{}}
	for _, task := range tasks {
		tv := toView(task, start)
		if tv.IsOverdue {
			view.Overdue = append(view.Overdue, tv)
		} else {
			view.Today = append(view.Today, tv)
		}
	}
	return view, nil
}

// Upcoming returns all currently-overdue visible tasks plus tasks due within
// the next seven days after today, grouped by due date.
func (s *TaskService) Upcoming(ctx context.Context, userID uint, now time.Time) (*UpcomingView, error) {
	start := startOfDay(now)
	end := endOfDay(now)

	overdueTasks, err := s.taskRepo.ListVisibleOverdue(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	aheadTasks, err := s.taskRepo.ListVisibleDueBetween(ctx, userID, end, end.AddDate(0, 0, upcomingDays))
	if err != nil {
		return nil, err
	}

	view := &UpcomingView{Overdue: []TaskView{}, Grouped: map[string][]TaskView{}}
	for _, task := range overdueTasks {
		view.Overdue = append(view.Overdue, toView(task, start))
	}
	for _, task := range aheadTasks {
		key := dateKey(*task.DueDate, now.Location())
		view.Grouped[key] = append(view.Grouped[key], toView(task, start))
	}
	return view, nil
}

// Completed returns the user's own completed tasks grouped by the calendar
// date they were last touched, newest first within each day.
func (s *TaskService) Completed(ctx context.Context, userID uint, now time.Time) (map[string][]TaskView, error) {
	tasks, err := s.taskRepo.ListCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := startOfDay(now)
	grouped := map[string][]TaskView{}
	for _, task := range tasks {
		key := dateKey(task.UpdatedAt, now.Location())
		grouped[key] = append(grouped[key], toView(task, start))
	}
	return grouped, nil
}

// Search matches title and description over the visible task set.
func (s *TaskService) Search(ctx context.Context, userID uint, query string, now time.Time) ([]TaskView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []TaskView{}, nil
	}

	tasks, err := s.taskRepo.Search(ctx, userID, query, searchLimit)
	if err != nil {
		return nil, err
	}

	start := startOfDay(now)
	results := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		results = append(results, toView(task, start))
	}
	return results, nil
}

// Sidebar produces the navigation counters and per-category pending counts.
func (s *TaskService) Sidebar(ctx context.Context, userID uint, now time.Time) (*SidebarSummary, error) {
	start := startOfDay(now)
	end := endOfDay(now)
	endOfNextWeek := end.AddDate(0, 0, upcomingDays)

	todayCount, err := s.taskRepo.CountPendingDueWithin(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	upcomingCount, err := s.taskRepo.CountPendingDueAfter(ctx, userID, end, endOfNextWeek)
	if err != nil {
		return nil, err
	}
	completedCount, err := s.taskRepo.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.taskRepo.CountPendingPerCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &SidebarSummary{
		TodayCount:     todayCount,
		UpcomingCount:  upcomingCount,
		CompletedCount: completedCount,
		Categories:     make([]CategorySummary, 0, len(categories)),
	}
	for _, cat := range categories {
		summary.Categories = append(summary.Categories, CategorySummary{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			TaskCount:    counts[cat.ID],
			Color:        cat.Color,
			Icon:         cat.Icon,
		})
	}
	return summary, nil
}

// TasksByCategory lists the user's pending tasks in one category, split by
// overdue. A missing category yields an empty view, not an error.
func (s *TaskService) TasksByCategory(ctx context.Context, userID, categoryID uint, now time.Time) (*CategoryTasksView, error) {
	view := &CategoryTasksView{
		Tasks:         []TaskView{},
		Overdue:       []TaskView{},
		CategoryName:  "Unknown",
		CategoryColor: "#6b7280",
		CategoryIcon:  "folder",
	}

	category, err := s.categoryRepo.FindByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, nil
		}
		return nil, err
	}
	view.CategoryName = category.Name
	view.CategoryColor = category.Color
	view.CategoryIcon = category.Icon

	tasks, err := s.taskRepo.ListPendingByCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	start := startOfDay(now)
	for _, task := range tasks {
		tv := toView(task, start)
		if tv.IsOverdue {
			view.Overdue = append(view.Overdue, tv)
		} else {
			view.Tasks = append(view.Tasks, tv)
		}
	}
	return view, nil
}

func toView(task model.Task, startOfToday time.Time) TaskView {
	view := TaskView{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		IsOverdue:   task.DueDate != nil && task.Status != model.StatusComplete && task.DueDate.Before(startOfToday),
		OwnerID:     task.UserID,
		OwnerName:   task.User.Name,
		Files:       make([]TaskFileView, 0, len(task.Files)),
	}
	if task.Category != nil {
		view.CategoryName = task.Category.Name
	}
	for _, f := range task.Files {
		view.Files = append(view.Files, TaskFileView{
			ID:           f.ID,
			FilePath:     f.FilePath,
			OriginalName: f.OriginalName,
			MimeType:     f.MimeType,
			Size:         f.Size,
		})
	}
	return view
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
