package service

import (
	"context"
	"errors"
	"testing"

	"todolist/internal/model"
)

func newCategoryService(e *testEnv) *CategoryService {
	return NewCategoryService(e.catRepo, e.taskRepo)
}

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(env)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "Alice", "alice@example.com")

	category, err := svc.Create(ctx, alice.ID, CategoryInput{Name: " Work "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if category.Name != "Work" {
		t.Errorf("name not trimmed: %q", category.Name)
	}
	if category.Color != "#6b7280" || category.Icon != "folder" {
		t.Errorf("defaults not applied: color=%q icon=%q", category.Color, category.Icon)
	}

	if _, err := svc.Create(ctx, alice.ID, CategoryInput{Name: ""}); !errors.Is(err, ErrCategoryNameRequired) {
		t.Errorf("blank name: got %v, want ErrCategoryNameRequired", err)
	}
}

func TestCreateCategoryDuplicateNameFolds(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(env)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "Alice", "alice@example.com")
	bob := env.mustCreateUser(t, "Bob", "bob@example.com")

	if _, err := svc.Create(ctx, alice.ID, CategoryInput{Name: "Work"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, alice.ID, CategoryInput{Name: "work"}); !errors.Is(err, ErrCategoryExists) {
		t.Errorf("case-folded duplicate: got %v, want ErrCategoryExists", err)
	}
	if _, err := svc.Create(ctx, alice.ID, CategoryInput{Name: "WORK"}); !errors.Is(err, ErrCategoryExists) {
		t.Errorf("upper-cased duplicate: got %v, want ErrCategoryExists", err)
	}

	// Uniqueness is per owner, not global.
	if _, err := svc.Create(ctx, bob.ID, CategoryInput{Name: "Work"}); err != nil {
		t.Errorf("other user's same name: %v", err)
	}
}

func TestDeleteCategoryBlockedByTasks(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(env)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "Alice", "alice@example.com")

	category, err := svc.Create(ctx, alice.ID, CategoryInput{Name: "Errands"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	task := env.mustCreateTask(t, &model.Task{
		UserID: alice.ID, Title: "post office", CategoryID: &category.ID,
	})

	if err := svc.Delete(ctx, alice.ID, category.ID); !errors.Is(err, ErrCategoryHasTasks) {
		t.Errorf("delete with tasks: got %v, want ErrCategoryHasTasks", err)
	}

	if err := env.taskRepo.Delete(ctx, alice.ID, task.ID); err != nil {
		t.Fatalf("remove task: %v", err)
	}
	if err := svc.Delete(ctx, alice.ID, category.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
	if err := svc.Delete(ctx, alice.ID, category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("double delete: got %v, want ErrCategoryNotFound", err)
	}
}

func TestEnsureDefaultIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(env)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "Alice", "alice@example.com")

	if err := svc.EnsureDefault(ctx, alice.ID); err != nil {
		t.Fatalf("ensure default: %v", err)
	}
	if err := svc.EnsureDefault(ctx, alice.ID); err != nil {
		t.Fatalf("second ensure default: %v", err)
	}

	categories, err := svc.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != defaultCategoryName {
		t.Errorf("categories = %+v, want single %q", categories, defaultCategoryName)
	}
}
