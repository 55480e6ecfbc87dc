package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

func newTestQuestionService(repo repositories.Repository) QuestionService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewQuestionService(repo, nil, logger, validator.New())
}

func TestQuestionService_Create(t *testing.T) {
	ctx := context.Background()

	adminRepo := func() *mockRepository {
		repo := newMockRepository()
		repo.users["admin"] = &models.User{ID: "admin", Role: models.RoleAdmin}
		return repo
	}

	t.Run("requires admin role", func(t *testing.T) {
		repo := newMockRepository()
		repo.users["u1"] = &models.User{ID: "u1", Role: models.RoleUser}

		service := newTestQuestionService(repo)
		_, err := service.Create(ctx, &CreateQuestionRequest{
			Type:          models.ShortAnswer,
			Title:         "Capital of France?",
			CorrectAnswer: "Paris",
		}, "u1")
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("defaults points to one", func(t *testing.T) {
		service := newTestQuestionService(adminRepo())
		question, err := service.Create(ctx, &CreateQuestionRequest{
			Type:          models.ShortAnswer,
			Title:         "Capital of France?",
			CorrectAnswer: "Paris",
		}, "admin")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if question.Points != 1 {
			t.Errorf("expected 1 point default, got %d", question.Points)
		}
	})

	t.Run("multiple choice needs two options", func(t *testing.T) {
		service := newTestQuestionService(adminRepo())
		_, err := service.Create(ctx, &CreateQuestionRequest{
			Type:          models.MultipleChoice,
			Title:         "Pick one",
			CorrectAnswer: "a",
			Options:       []string{"a"},
		}, "admin")
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("multiple choice answer must be an option", func(t *testing.T) {
		service := newTestQuestionService(adminRepo())
		_, err := service.Create(ctx, &CreateQuestionRequest{
			Type:          models.MultipleChoice,
			Title:         "Pick one",
			CorrectAnswer: "c",
			Options:       []string{"a", "b"},
		}, "admin")
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("option match is case insensitive", func(t *testing.T) {
		service := newTestQuestionService(adminRepo())
		question, err := service.Create(ctx, &CreateQuestionRequest{
			Type:          models.MultipleChoice,
			Title:         "Pick one",
			CorrectAnswer: "PARIS",
			Options:       []string{"Paris", "London"},
			Points:        2,
		}, "admin")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if got := question.OptionList(); len(got) != 2 {
			t.Errorf("expected 2 stored options, got %v", got)
		}
	})

	t.Run("true false accepts only booleans", func(t *testing.T) {
		service := newTestQuestionService(adminRepo())
		_, err := service.Create(ctx, &CreateQuestionRequest{
			Type:          models.TrueFalse,
			Title:         "Water is wet",
			CorrectAnswer: "maybe",
		}, "admin")
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
