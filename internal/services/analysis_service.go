package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

type analysisService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAnalysisService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) AnalysisService {
	return &analysisService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== LEADERBOARD =====

func (s *analysisService) GetLeaderboard(ctx context.Context, quizID, userID string) (*LeaderboardResponse, error) {
	if err := s.requireAdmin(ctx, userID, quizID, "view_leaderboard"); err != nil {
		return nil, err
	}

	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	attempts, err := s.repo.Attempt().GetSubmittedByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submitted attempts: %w", err)
	}

	return &LeaderboardResponse{
		QuizID:  quizID,
		Entries: RankLeaderboard(attempts),
	}, nil
}

// ===== RESULT MATRIX =====

func (s *analysisService) GetResultMatrix(ctx context.Context, quizID, userID string) (*ResultMatrix, error) {
	if err := s.requireAdmin(ctx, userID, quizID, "view_result_matrix"); err != nil {
		return nil, err
	}

	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	links, err := s.repo.QuizQuestion().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}

	attempts, err := s.repo.Attempt().GetSubmittedByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submitted attempts: %w", err)
	}

	return BuildResultMatrix(quizID, links, attempts), nil
}

// ===== EXPORT =====

// ExportResults renders the leaderboard and result matrix into an xlsx
// workbook. Returns the file bytes and a suggested filename.
func (s *analysisService) ExportResults(ctx context.Context, quizID, userID string) ([]byte, string, error) {
	if err := s.requireAdmin(ctx, userID, quizID, "export_results"); err != nil {
		return nil, "", err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrQuizNotFound
		}
		return nil, "", fmt.Errorf("failed to get quiz: %w", err)
	}

	links, err := s.repo.QuizQuestion().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get quiz questions: %w", err)
	}

	attempts, err := s.repo.Attempt().GetSubmittedByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get submitted attempts: %w", err)
	}

	entries := RankLeaderboard(attempts)
	matrix := BuildResultMatrix(quizID, links, attempts)

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeLeaderboardSheet(f, quiz, entries); err != nil {
		return nil, "", err
	}
	if err := s.writeMatrixSheet(f, matrix); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("quiz-results-%s-%s.xlsx", quizID, time.Now().Format("2006-01-02"))
	s.logger.Info("Exported quiz results", "quiz_id", quizID, "rows", len(entries))
	return buf.Bytes(), filename, nil
}

func (s *analysisService) writeLeaderboardSheet(f *excelize.File, quiz *models.Quiz, entries []*LeaderboardEntry) error {
	const sheet = "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []interface{}{"Rank", "Name", "Email", "Score", "Total Points", "Percentage", "Time Taken (s)", "Submitted At"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, entry := range entries {
		values := []interface{}{
			entry.Rank,
			entry.User.Name,
			entry.User.Email,
			entry.Score,
			entry.TotalPoints,
			entry.Percentage,
			entry.TimeTaken,
			entry.SubmittedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	return nil
}

func (s *analysisService) writeMatrixSheet(f *excelize.File, matrix *ResultMatrix) error {
	const sheet = "Result Matrix"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	// Header row: user columns then one column per question, success rates
	// in the final row.
	if err := f.SetCellValue(sheet, "A1", "Name"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "B1", "Score"); err != nil {
		return err
	}
	for i, question := range matrix.Questions {
		cell, _ := excelize.CoordinatesToCellName(i+3, 1)
		if err := f.SetCellValue(sheet, cell, fmt.Sprintf("Q%d: %s", question.Order, question.Title)); err != nil {
			return err
		}
	}

	for row, entry := range matrix.Rows {
		nameCell, _ := excelize.CoordinatesToCellName(1, row+2)
		if err := f.SetCellValue(sheet, nameCell, entry.User.Name); err != nil {
			return err
		}
		scoreCell, _ := excelize.CoordinatesToCellName(2, row+2)
		if err := f.SetCellValue(sheet, scoreCell, entry.Score); err != nil {
			return err
		}
		for col, cell := range entry.Cells {
			mark := "-"
			if cell.Answered {
				verdict := "incorrect"
				if cell.IsCorrect {
					verdict = "correct"
				}
				mark = fmt.Sprintf("%s (%s)", *cell.UserAnswer, verdict)
			}
			cellName, _ := excelize.CoordinatesToCellName(col+3, row+2)
			if err := f.SetCellValue(sheet, cellName, mark); err != nil {
				return err
			}
		}
	}

	summaryRow := len(matrix.Rows) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	if err := f.SetCellValue(sheet, labelCell, "Success Rate"); err != nil {
		return err
	}
	for i, question := range matrix.Questions {
		cell, _ := excelize.CoordinatesToCellName(i+3, summaryRow)
		if err := f.SetCellValue(sheet, cell, fmt.Sprintf("%d%%", question.SuccessRate)); err != nil {
			return err
		}
	}

	return nil
}

// ===== USERS =====

func (s *analysisService) GetAvailableUsers(ctx context.Context, query string, userID string) ([]*models.UserSummary, error) {
	if err := s.requireAdmin(ctx, userID, "", "list_users"); err != nil {
		return nil, err
	}

	users, err := s.repo.User().Search(ctx, query, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	summaries := make([]*models.UserSummary, len(users))
	for i, user := range users {
		summaries[i] = &models.UserSummary{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			AvatarURL: user.AvatarURL,
		}
	}
	return summaries, nil
}

// ===== HELPERS =====

func (s *analysisService) requireAdmin(ctx context.Context, userID, resourceID, action string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil || user.Role != models.RoleAdmin {
		return NewPermissionError(userID, resourceID, "analysis", action, "insufficient role permissions")
	}
	return nil
}
