package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"todolist/internal/model"
	"todolist/internal/service"
)

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Visibility  string     `json:"visibility"`
	DueDate     *time.Time `json:"dueDate"`
	ReminderAt  *time.Time `json:"reminderAt"`
	CategoryID  *uint      `json:"categoryId"`
}

// updateTaskRequest distinguishes absent fields from explicit nulls: a raw
// message that is nil was not sent, "null" clears the column.
type updateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority"`
	Visibility  *string         `json:"visibility"`
	DueDate     json.RawMessage `json:"dueDate"`
	ReminderAt  json.RawMessage `json:"reminderAt"`
	CategoryID  json.RawMessage `json:"categoryId"`
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		return c.JSON(http.StatusBadRequest, errorBody("invalid priority"))
	}
	if req.Visibility != "" && !validVisibility(req.Visibility) {
		return c.JSON(http.StatusBadRequest, errorBody("invalid visibility"))
	}

	task, err := s.tasks.Create(c.Request().Context(), currentUserID(c), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		Visibility:  model.Visibility(req.Visibility),
		DueDate:     req.DueDate,
		ReminderAt:  req.ReminderAt,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid task id"))
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.Priority != nil && !validPriority(*req.Priority) {
		return c.JSON(http.StatusBadRequest, errorBody("invalid priority"))
	}
	if req.Visibility != nil && !validVisibility(*req.Visibility) {
		return c.JSON(http.StatusBadRequest, errorBody("invalid visibility"))
	}

	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		priority := model.Priority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Visibility != nil {
		visibility := model.Visibility(*req.Visibility)
		patch.Visibility = &visibility
	}
	if patch.DueDateSet, patch.DueDate, err = timeField(req.DueDate); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid dueDate"))
	}
	if patch.ReminderAtSet, patch.ReminderAt, err = timeField(req.ReminderAt); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid reminderAt"))
	}
	if patch.CategorySet, patch.CategoryID, err = uintField(req.CategoryID); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid categoryId"))
	}

	task, err := s.tasks.Update(c.Request().Context(), currentUserID(c), taskID, patch)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleCompleteTask(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid task id"))
	}

	task, err := s.tasks.Complete(c.Request().Context(), currentUserID(c), taskID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid task id"))
	}

	if err := s.tasks.Delete(c.Request().Context(), currentUserID(c), taskID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleToday(c echo.Context) error {
	view, err := s.tasks.Today(c.Request().Context(), currentUserID(c), time.Now())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleUpcoming(c echo.Context) error {
	view, err := s.tasks.Upcoming(c.Request().Context(), currentUserID(c), time.Now())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleCompleted(c echo.Context) error {
	grouped, err := s.tasks.Completed(c.Request().Context(), currentUserID(c), time.Now())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"grouped": grouped})
}

func (s *Server) handleSearch(c echo.Context) error {
	results, err := s.tasks.Search(c.Request().Context(), currentUserID(c), c.QueryParam("q"), time.Now())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleSidebar(c echo.Context) error {
	summary, err := s.tasks.Sidebar(c.Request().Context(), currentUserID(c), time.Now())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) handleTasksByCategory(c echo.Context) error {
	categoryID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid category id"))
	}

	view, err := s.tasks.TasksByCategory(c.Request().Context(), currentUserID(c), categoryID, time.Now())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleAttachFiles(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid task id"))
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("multipart form required"))
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody("no files uploaded"))
	}

	uploads := make([]service.Upload, 0, len(headers))
	opened := make([]interface{ Close() error }, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, h := range headers {
		src, err := h.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("cannot read upload"))
		}
		opened = append(opened, src)
		uploads = append(uploads, service.Upload{
			OriginalName: h.Filename,
			MimeType:     h.Header.Get("Content-Type"),
			Size:         h.Size,
			Content:      src,
		})
	}

	created, err := s.files.Attach(c.Request().Context(), currentUserID(c), taskID, uploads)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"uploaded": len(created),
		"files":    created,
	})
}

func (s *Server) handleDeleteFile(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid task id"))
	}
	fileID, err := pathID(c, "fileID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid file id"))
	}

	if err := s.files.Delete(c.Request().Context(), currentUserID(c), taskID, fileID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func validPriority(value string) bool {
	switch model.Priority(value) {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		return true
	}
	return false
}

func validVisibility(value string) bool {
	switch model.Visibility(value) {
	case model.VisibilityPrivate, model.VisibilityPublic:
		return true
	}
	return false
}

func timeField(raw json.RawMessage) (bool, *time.Time, error) {
	if raw == nil {
		return false, nil, nil
	}
	if string(raw) == "null" {
		return true, nil, nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return false, nil, err
	}
	return true, &t, nil
}

func uintField(raw json.RawMessage) (bool, *uint, error) {
	if raw == nil {
		return false, nil, nil
	}
	if string(raw) == "null" {
		return true, nil, nil
	}
	var v uint
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, nil, err
	}
	return true, &v, nil
}
