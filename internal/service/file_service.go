package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todolist/internal/model"
	"todolist/internal/repository"
)

// Upload is one incoming attachment.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
	Content      io.Reader
}

// FileService stores attachment bytes on disk and their metadata in the
// database. Uploaded files get generated names; the original name survives
// only as metadata.
type FileService struct {
	taskRepo  *repository.TaskRepository
	fileRepo  *repository.FileRepository
	uploadDir string
}

func NewFileService(taskRepo *repository.TaskRepository, fileRepo *repository.FileRepository, uploadDir string) *FileService {
	return &FileService{taskRepo: taskRepo, fileRepo: fileRepo, uploadDir: uploadDir}
}

// Attach writes each upload under the upload dir and records a metadata row.
// The task must belong to the caller.
func (s *FileService) Attach(ctx context.Context, userID, taskID uint, uploads []Upload) ([]model.TaskFile, error) {
	if _, err := s.taskRepo.FindByID(ctx, userID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	created := make([]model.TaskFile, 0, len(uploads))
	for _, up := range uploads {
		stored := uuid.NewString() + filepath.Ext(up.OriginalName)
		path := filepath.Join(s.uploadDir, stored)

		if err := writeUpload(path, up.Content); err != nil {
			return created, err
		}

		file := model.TaskFile{
			TaskID:       taskID,
			FilePath:     filepath.ToSlash(path),
			OriginalName: up.OriginalName,
			MimeType:     up.MimeType,
			Size:         up.Size,
		}
		if err := s.fileRepo.Create(ctx, &file); err != nil {
			return created, err
		}
		created = append(created, file)
	}
	return created, nil
}

// Delete removes the stored object and the metadata row. A missing object on
// disk is tolerated; the row goes away either way.
func (s *FileService) Delete(ctx context.Context, userID, taskID, fileID uint) error {
	if _, err := s.taskRepo.FindByID(ctx, userID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	file, err := s.fileRepo.FindByID(ctx, taskID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}

	if err := os.Remove(filepath.FromSlash(file.FilePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return s.fileRepo.Delete(ctx, fileID)
}

func writeUpload(path string, content io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload %q: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		return fmt.Errorf("write upload %q: %w", path, err)
	}
	return nil
}
