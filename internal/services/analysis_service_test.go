package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

func newTestAnalysisService(repo repositories.Repository) AnalysisService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewAnalysisService(repo, nil, logger, validator.New())
}

func TestAnalysisService_GetLeaderboard(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.users["admin"] = &models.User{ID: "admin", Role: models.RoleAdmin}
	repo.users["u1"] = &models.User{ID: "u1", Role: models.RoleUser}
	repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive}

	service := newTestAnalysisService(repo)

	t.Run("requires admin role", func(t *testing.T) {
		_, err := service.GetLeaderboard(ctx, "quiz-1", "u1")
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("unknown quiz", func(t *testing.T) {
		_, err := service.GetLeaderboard(ctx, "missing", "admin")
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("empty leaderboard", func(t *testing.T) {
		board, err := service.GetLeaderboard(ctx, "quiz-1", "admin")
		if err != nil {
			t.Fatalf("GetLeaderboard failed: %v", err)
		}
		if board.QuizID != "quiz-1" || len(board.Entries) != 0 {
			t.Errorf("expected empty board for quiz-1, got %+v", board)
		}
	})
}

func TestAnalysisService_ExportResults(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.users["admin"] = &models.User{ID: "admin", Role: models.RoleAdmin}
	repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Title: "Capitals", Status: models.QuizActive}
	repo.links["quiz-1"] = []*models.QuizQuestion{
		{QuizID: "quiz-1", QuestionID: "q1", Order: 1, Question: models.Question{ID: "q1", Title: "First", CorrectAnswer: "a", Points: 2}},
	}

	service := newTestAnalysisService(repo)

	data, filename, err := service.ExportResults(ctx, "quiz-1", "admin")
	if err != nil {
		t.Fatalf("ExportResults failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty workbook")
	}
	if filename == "" {
		t.Error("expected a filename")
	}
}
