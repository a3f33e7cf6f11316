package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"todolist/internal/model"
)

// FileRepository manages attachment metadata rows.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *model.TaskFile) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("create task file: %w", err)
	}
	return nil
}

func (r *FileRepository) FindByID(ctx context.Context, taskID, fileID uint) (*model.TaskFile, error) {
	var file model.TaskFile
	if err := r.db.WithContext(ctx).Where("task_id = ? AND id = ?", taskID, fileID).
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) ListByTask(ctx context.Context, taskID uint) ([]model.TaskFile, error) {
	var files []model.TaskFile
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *FileRepository) Delete(ctx context.Context, fileID uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.TaskFile{}, fileID).Error; err != nil {
		return fmt.Errorf("delete task file: %w", err)
	}
	return nil
}
