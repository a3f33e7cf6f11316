package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"todolist/internal/model"
	"todolist/internal/repository"
)

const defaultCategoryName = "Home"

// CategoryInput carries the user-supplied category fields.
type CategoryInput struct {
	Name  string
	Color string
	Icon  string
}

// CategoryService provides helpers around categories.
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	taskRepo     *repository.TaskRepository
}

func NewCategoryService(categoryRepo *repository.CategoryRepository, taskRepo *repository.TaskRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, taskRepo: taskRepo}
}

func (s *CategoryService) List(ctx context.Context, userID uint) ([]model.Category, error) {
	return s.categoryRepo.ListByUser(ctx, userID)
}

// Create adds a category. Names are unique per owner, compared
// case-insensitively but stored as given.
func (s *CategoryService) Create(ctx context.Context, userID uint, input CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	_, err := s.categoryRepo.FindByNameFold(ctx, userID, name)
	switch {
	case err == nil:
		return nil, ErrCategoryExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		// free to create
	default:
		return nil, err
	}

	category := model.Category{
		UserID: userID,
		Name:   name,
		Color:  input.Color,
		Icon:   input.Icon,
	}
	if category.Color == "" {
		category.Color = "#6b7280"
	}
	if category.Icon == "" {
		category.Icon = "folder"
	}

	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category only when no tasks reference it.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID uint) error {
	if _, err := s.categoryRepo.FindByID(ctx, userID, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	count, err := s.taskRepo.CountByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryHasTasks
	}

	return s.categoryRepo.Delete(ctx, userID, categoryID)
}

// EnsureDefault creates the "Home" category for a freshly verified user.
// Idempotent.
func (s *CategoryService) EnsureDefault(ctx context.Context, userID uint) error {
	_, err := s.categoryRepo.FindByNameFold(ctx, userID, defaultCategoryName)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.categoryRepo.Create(ctx, &model.Category{
			UserID: userID,
			Name:   defaultCategoryName,
		})
	default:
		return err
	}
}
