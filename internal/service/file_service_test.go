package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todolist/internal/model"
)

func TestAttachAndDeleteFile(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	svc := NewFileService(env.taskRepo, env.fileRepo, dir)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "Alice", "alice@example.com")
	bob := env.mustCreateUser(t, "Bob", "bob@example.com")

	task := env.mustCreateTask(t, &model.Task{UserID: alice.ID, Title: "with attachment"})

	uploads := []Upload{{
		OriginalName: "notes.txt",
		MimeType:     "text/plain",
		Size:         5,
		Content:      strings.NewReader("hello"),
	}}

	if _, err := svc.Attach(ctx, bob.ID, task.ID, uploads); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("foreign attach: got %v, want ErrTaskNotFound", err)
	}

	created, err := svc.Attach(ctx, alice.ID, task.ID, uploads)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d files, want 1", len(created))
	}
	file := created[0]
	if file.OriginalName != "notes.txt" || file.MimeType != "text/plain" || file.Size != 5 {
		t.Errorf("metadata = %+v", file)
	}
	if filepath.Ext(file.FilePath) != ".txt" {
		t.Errorf("stored name lost the extension: %q", file.FilePath)
	}
	if filepath.Base(file.FilePath) == "notes.txt" {
		t.Errorf("stored name should be generated, got original: %q", file.FilePath)
	}
	content, err := os.ReadFile(filepath.FromSlash(file.FilePath))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("stored content = %q", content)
	}

	if err := svc.Delete(ctx, alice.ID, task.ID, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.FromSlash(file.FilePath)); !os.IsNotExist(err) {
		t.Errorf("stored file still on disk: %v", err)
	}
	if err := svc.Delete(ctx, alice.ID, task.ID, file.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("double delete: got %v, want ErrFileNotFound", err)
	}
}

func TestDeleteFileToleratesMissingObject(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	svc := NewFileService(env.taskRepo, env.fileRepo, dir)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "Alice", "alice@example.com")

	task := env.mustCreateTask(t, &model.Task{UserID: alice.ID, Title: "with attachment"})
	created, err := svc.Attach(ctx, alice.ID, task.ID, []Upload{{
		OriginalName: "photo.png",
		MimeType:     "image/png",
		Size:         3,
		Content:      strings.NewReader("png"),
	}})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	// Object vanished out from under us; the metadata row still goes away.
	if err := os.Remove(filepath.FromSlash(created[0].FilePath)); err != nil {
		t.Fatalf("remove object: %v", err)
	}
	if err := svc.Delete(ctx, alice.ID, task.ID, created[0].ID); err != nil {
		t.Fatalf("delete with missing object: %v", err)
	}
}
