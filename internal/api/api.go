package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"todolist/internal/repository"
	"todolist/internal/service"
)

// Server holds the HTTP handlers over the service layer.
type Server struct {
	log        *slog.Logger
	auth       *service.AuthService
	tasks      *service.TaskService
	categories *service.CategoryService
	files      *service.FileService
	userRepo   *repository.UserRepository
}

func NewServer(log *slog.Logger, auth *service.AuthService, tasks *service.TaskService, categories *service.CategoryService, files *service.FileService, userRepo *repository.UserRepository) *Server {
	return &Server{
		log:        log,
		auth:       auth,
		tasks:      tasks,
		categories: categories,
		files:      files,
		userRepo:   userRepo,
	}
}

// Register wires all routes. Auth endpoints are public; everything else
// requires a bearer token.
func (s *Server) Register(e *echo.Echo) {
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin)
	auth.POST("/verify-otp", s.handleVerifyOTP)
	auth.POST("/resend-otp", s.handleResendOTP)

	secured := api.Group("", s.requireAuth)
	secured.GET("/users/me", s.handleProfile)

	secured.GET("/categories", s.handleListCategories)
	secured.POST("/categories", s.handleCreateCategory)
	secured.DELETE("/categories/:id", s.handleDeleteCategory)

	secured.POST("/tasks", s.handleCreateTask)
	secured.GET("/tasks/today", s.handleToday)
	secured.GET("/tasks/upcoming", s.handleUpcoming)
	secured.GET("/tasks/completed", s.handleCompleted)
	secured.GET("/tasks/search", s.handleSearch)
	secured.GET("/tasks/summary", s.handleSidebar)
	secured.GET("/tasks/category/:id", s.handleTasksByCategory)
	secured.PATCH("/tasks/:id", s.handleUpdateTask)
	secured.POST("/tasks/:id/complete", s.handleCompleteTask)
	secured.DELETE("/tasks/:id", s.handleDeleteTask)
	secured.POST("/tasks/:id/files", s.handleAttachFiles)
	secured.DELETE("/tasks/:id/files/:fileID", s.handleDeleteFile)
}

const userIDKey = "userID"

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, errorBody("missing bearer token"))
		}
		userID, err := s.auth.ParseToken(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("invalid token"))
		}
		c.Set(userIDKey, userID)
		return next(c)
	}
}

func currentUserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}

func pathID(c echo.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// fail maps service errors onto HTTP status codes.
func (s *Server) fail(c echo.Context, err error) error {
	var code int
	switch {
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrFileNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrCategoryHasTasks):
		code = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotVerified):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrCategoryNameRequired):
		code = http.StatusBadRequest
	default:
		s.log.Error("internal error", slog.String("path", c.Path()), slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
	return c.JSON(code, errorBody(err.Error()))
}
