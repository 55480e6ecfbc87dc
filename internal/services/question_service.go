package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error) {
	s.logger.Info("Creating question", "type", req.Type, "creator_id", creatorID)

	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}
	if errs := validateQuestionContent(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.requireAdmin(ctx, creatorID, "", "create"); err != nil {
		return nil, err
	}

	question := &models.Question{
		Type:          req.Type,
		Title:         req.Title,
		Content:       req.Content,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Points:        req.Points,
		Difficulty:    req.Difficulty,
		CreatedBy:     creatorID,
	}
	if question.Points <= 0 {
		question.Points = 1
	}
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyMedium
	}

	if len(req.Options) > 0 {
		data, err := json.Marshal(req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		question.Options = data
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID)
	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id, userID string) (*models.Question, error) {
	if err := s.requireAdmin(ctx, userID, id, "read"); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, id string, req *UpdateQuestionRequest, userID string) (*models.Question, error) {
	s.logger.Info("Updating question", "question_id", id, "user_id", userID)

	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	if err := s.requireAdmin(ctx, userID, id, "update"); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.Title != nil {
		question.Title = *req.Title
	}
	if req.Content != nil {
		question.Content = *req.Content
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Explanation != nil {
		question.Explanation = req.Explanation
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.Options != nil {
		data, err := json.Marshal(req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		question.Options = data
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id, userID string) error {
	s.logger.Info("Deleting question", "question_id", id, "user_id", userID)

	if err := s.requireAdmin(ctx, userID, id, "delete"); err != nil {
		return err
	}

	if _, err := s.repo.Question().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	return s.repo.Question().Delete(ctx, nil, id)
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, userID string) ([]*models.Question, int64, error) {
	if err := s.requireAdmin(ctx, userID, "", "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.Question().List(ctx, nil, filters)
}

// ===== HELPERS =====

func (s *questionService) requireAdmin(ctx context.Context, userID, resourceID, action string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil || user.Role != models.RoleAdmin {
		return NewPermissionError(userID, resourceID, "question", action, "insufficient role permissions")
	}
	return nil
}

// validateQuestionContent enforces per-type rules the struct tags cannot.
func validateQuestionContent(req *CreateQuestionRequest) ValidationErrors {
	var errs ValidationErrors

	switch req.Type {
	case models.MultipleChoice:
		if len(req.Options) < 2 {
			errs = append(errs, NewValidationError("options", "multiple choice questions need at least two options", len(req.Options)))
		} else if !containsAnswer(req.Options, req.CorrectAnswer) {
			errs = append(errs, NewValidationError("correct_answer", "correct answer must be one of the options", req.CorrectAnswer))
		}
	case models.TrueFalse:
		if !AnswersMatch(req.CorrectAnswer, "true") && !AnswersMatch(req.CorrectAnswer, "false") {
			errs = append(errs, NewValidationError("correct_answer", "true/false questions accept only true or false", req.CorrectAnswer))
		}
	}

	return errs
}

func containsAnswer(options []string, answer string) bool {
	for _, option := range options {
		if AnswersMatch(option, answer) {
			return true
		}
	}
	return false
}
