package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/MaX-NeO/atom-q-10/internal/events"
	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

func newTestQuizService(repo repositories.Repository) (QuizService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewQuizService(repo, nil, logger, validator.New(), publisher), publisher
}

func TestQuizService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("requires admin role", func(t *testing.T) {
		repo := newMockRepository()
		repo.users["u1"] = &models.User{ID: "u1", Role: models.RoleUser}

		service, _ := newTestQuizService(repo)
		_, err := service.Create(ctx, &CreateQuizRequest{Title: "Capitals"}, "u1")
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("creates draft with defaults", func(t *testing.T) {
		repo := newMockRepository()
		repo.users["admin"] = &models.User{ID: "admin", Role: models.RoleAdmin}

		service, _ := newTestQuizService(repo)
		resp, err := service.Create(ctx, &CreateQuizRequest{Title: "Capitals"}, "admin")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.Status != models.QuizDraft {
			t.Errorf("expected draft status, got %s", resp.Status)
		}
		if resp.Difficulty != models.DifficultyMedium {
			t.Errorf("expected default medium difficulty, got %s", resp.Difficulty)
		}
	})

	t.Run("rejects missing title", func(t *testing.T) {
		repo := newMockRepository()
		repo.users["admin"] = &models.User{ID: "admin", Role: models.RoleAdmin}

		service, _ := newTestQuizService(repo)
		if _, err := service.Create(ctx, &CreateQuizRequest{}, "admin"); err == nil {
			t.Error("expected validation error for empty title")
		}
	})
}

func TestQuizService_GetByID(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.users["admin"] = &models.User{ID: "admin", Role: models.RoleAdmin}
	repo.users["u1"] = &models.User{ID: "u1", Role: models.RoleUser}
	repo.quizzes["draft-quiz"] = &models.Quiz{ID: "draft-quiz", Status: models.QuizDraft}
	repo.quizzes["live-quiz"] = &models.Quiz{ID: "live-quiz", Status: models.QuizActive}

	service, _ := newTestQuizService(repo)

	t.Run("drafts hidden from takers", func(t *testing.T) {
		_, err := service.GetByID(ctx, "draft-quiz", "u1")
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("drafts visible to admins", func(t *testing.T) {
		resp, err := service.GetByID(ctx, "draft-quiz", "admin")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !resp.CanEdit {
			t.Error("expected admin to be able to edit")
		}
	})

	t.Run("active quizzes visible to takers", func(t *testing.T) {
		resp, err := service.GetByID(ctx, "live-quiz", "u1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if resp.CanEdit {
			t.Error("takers must not be able to edit")
		}
		if !resp.CanTake {
			t.Error("expected active quiz to be takeable")
		}
	})

	t.Run("can_take honors the attempt limit", func(t *testing.T) {
		limit := 1
		repo.quizzes["capped-quiz"] = &models.Quiz{ID: "capped-quiz", Status: models.QuizActive, MaxAttempts: &limit}
		repo.submittedCount = 1
		defer func() { repo.submittedCount = 0 }()

		resp, err := service.GetByID(ctx, "capped-quiz", "u1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if resp.CanTake {
			t.Error("expected CanTake false once the attempt limit is reached")
		}
	})
}

func TestQuizService_Update(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.users["admin"] = &models.User{ID: "admin", Role: models.RoleAdmin}
	repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Title: "Capitals", Status: models.QuizDraft}

	service, publisher := newTestQuizService(repo)

	active := models.QuizActive
	resp, err := service.Update(ctx, "quiz-1", &UpdateQuizRequest{Status: &active}, "admin")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if resp.Status != models.QuizActive {
		t.Errorf("expected active status, got %s", resp.Status)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventQuizPublished {
		t.Errorf("expected one quiz.published event, got %+v", published)
	}

	// A second activation of an already-active quiz publishes nothing.
	publisher.Reset()
	if _, err := service.Update(ctx, "quiz-1", &UpdateQuizRequest{Status: &active}, "admin"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("re-activating must not republish")
	}
}

func TestQuizService_Delete(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.users["admin"] = &models.User{ID: "admin", Role: models.RoleAdmin}
	repo.quizzes["tried"] = &models.Quiz{ID: "tried", Status: models.QuizActive, AttemptCount: 3}
	repo.quizzes["untried"] = &models.Quiz{ID: "untried", Status: models.QuizDraft}

	service, _ := newTestQuizService(repo)

	if err := service.Delete(ctx, "tried", "admin"); !errors.Is(err, ErrQuizHasAttempts) {
		t.Errorf("expected ErrQuizHasAttempts, got %v", err)
	}
	if err := service.Delete(ctx, "untried", "admin"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
}
