package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/events"
	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

type quizService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewQuizService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) QuizService {
	return &quizService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CRUD =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*QuizResponse, error) {
	s.logger.Info("Creating quiz", "title", req.Title, "creator_id", creatorID)

	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	if err := s.requireAdmin(ctx, creatorID, "", "create"); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Status:      models.QuizDraft,
		TimeLimit:   req.TimeLimit,
		MaxAttempts: req.MaxAttempts,
		CreatedBy:   creatorID,
	}
	if quiz.Difficulty == "" {
		quiz.Difficulty = models.DifficultyMedium
	}

	if err := s.repo.Quiz().Create(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID)
	return s.buildQuizResponse(ctx, quiz, creatorID, true), nil
}

func (s *quizService) GetByID(ctx context.Context, id, userID string) (*QuizResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	isAdmin := s.isAdmin(ctx, userID)
	if quiz.Status != models.QuizActive && !isAdmin {
		return nil, ErrQuizNotFound
	}

	return s.buildQuizResponse(ctx, quiz, userID, isAdmin), nil
}

func (s *quizService) GetByIDWithQuestions(ctx context.Context, id, userID string) (*QuizResponse, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	isAdmin := s.isAdmin(ctx, userID)
	if quiz.Status != models.QuizActive && !isAdmin {
		return nil, ErrQuizNotFound
	}

	return s.buildQuizResponse(ctx, quiz, userID, isAdmin), nil
}

func (s *quizService) Update(ctx context.Context, id string, req *UpdateQuizRequest, userID string) (*QuizResponse, error) {
	s.logger.Info("Updating quiz", "quiz_id", id, "user_id", userID)

	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	if err := s.requireAdmin(ctx, userID, id, "update"); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	wasActive := quiz.Status == models.QuizActive

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.Difficulty != nil {
		quiz.Difficulty = *req.Difficulty
	}
	if req.Status != nil {
		quiz.Status = *req.Status
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = req.TimeLimit
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = req.MaxAttempts
	}

	if err := s.repo.Quiz().Update(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	if !wasActive && quiz.Status == models.QuizActive {
		s.publishEvent(ctx, events.EventQuizPublished, events.QuizPublishedPayload{
			QuizID:    quiz.ID,
			Title:     quiz.Title,
			CreatedBy: quiz.CreatedBy,
		})
	}

	return s.buildQuizResponse(ctx, quiz, userID, true), nil
}

func (s *quizService) Delete(ctx context.Context, id, userID string) error {
	s.logger.Info("Deleting quiz", "quiz_id", id, "user_id", userID)

	if err := s.requireAdmin(ctx, userID, id, "delete"); err != nil {
		return err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.AttemptCount > 0 {
		return ErrQuizHasAttempts
	}

	return s.repo.Quiz().Delete(ctx, nil, id)
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters, userID string) (*QuizListResponse, error) {
	isAdmin := s.isAdmin(ctx, userID)

	// Takers only see active quizzes.
	if !isAdmin {
		active := models.QuizActive
		filters.Status = &active
	}

	quizzes, total, err := s.repo.Quiz().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	responses := make([]*QuizResponse, len(quizzes))
	for i, quiz := range quizzes {
		responses[i] = s.buildQuizResponse(ctx, quiz, userID, isAdmin)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &QuizListResponse{
		Quizzes: responses,
		Total:   total,
		Page:    page,
		Size:    len(responses),
	}, nil
}

// ===== QUESTION MANAGEMENT =====

func (s *quizService) AddQuestion(ctx context.Context, quizID string, req *AddQuestionRequest, userID string) error {
	s.logger.Info("Adding question to quiz",
		"quiz_id", quizID,
		"question_id", req.QuestionID,
		"user_id", userID)

	if errs := s.validator.Validate(req); errs != nil {
		return fmt.Errorf("validation failed: %w", errs)
	}

	if err := s.requireAdmin(ctx, userID, quizID, "add_question"); err != nil {
		return err
	}

	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if _, err := s.repo.Question().GetByID(ctx, nil, req.QuestionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if _, err := s.repo.QuizQuestion().GetByQuizAndQuestion(ctx, nil, quizID, req.QuestionID); err == nil {
		return ErrQuestionAlreadyAdded
	} else if !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to check quiz question: %w", err)
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		links, err := s.repo.QuizQuestion().GetByQuiz(ctx, nil, quizID)
		if err != nil {
			return fmt.Errorf("failed to get quiz questions: %w", err)
		}
		order = len(links) + 1
	}

	link := &models.QuizQuestion{
		QuizID:     quizID,
		QuestionID: req.QuestionID,
		Order:      order,
		Points:     req.Points,
	}
	return s.repo.QuizQuestion().Add(ctx, nil, link)
}

func (s *quizService) RemoveQuestion(ctx context.Context, quizID, questionID, userID string) error {
	s.logger.Info("Removing question from quiz",
		"quiz_id", quizID,
		"question_id", questionID,
		"user_id", userID)

	if err := s.requireAdmin(ctx, userID, quizID, "remove_question"); err != nil {
		return err
	}

	if err := s.repo.QuizQuestion().Remove(ctx, nil, quizID, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}
	return nil
}

func (s *quizService) UpdateQuestion(ctx context.Context, quizID, questionID string, req *UpdateQuizQuestionRequest, userID string) error {
	if errs := s.validator.Validate(req); errs != nil {
		return fmt.Errorf("validation failed: %w", errs)
	}

	if err := s.requireAdmin(ctx, userID, quizID, "update_question"); err != nil {
		return err
	}

	link, err := s.repo.QuizQuestion().GetByQuizAndQuestion(ctx, nil, quizID, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get quiz question: %w", err)
	}

	if req.Points != nil {
		link.Points = req.Points
	}
	if req.Order != nil {
		link.Order = *req.Order
	}

	return s.repo.QuizQuestion().Update(ctx, nil, link)
}

func (s *quizService) ReorderQuestions(ctx context.Context, quizID string, req *ReorderQuestionsRequest, userID string) error {
	if errs := s.validator.Validate(req); errs != nil {
		return fmt.Errorf("validation failed: %w", errs)
	}

	if err := s.requireAdmin(ctx, userID, quizID, "reorder_questions"); err != nil {
		return err
	}

	if err := s.repo.QuizQuestion().Reorder(ctx, nil, quizID, req.QuestionOrders); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}
	return nil
}

func (s *quizService) GetStats(ctx context.Context, quizID, userID string) (*repositories.QuizStats, error) {
	if err := s.requireAdmin(ctx, userID, quizID, "view_stats"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Quiz().GetStats(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz stats: %w", err)
	}
	return stats, nil
}

// ===== HELPERS =====

func (s *quizService) isAdmin(ctx context.Context, userID string) bool {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return user.Role == models.RoleAdmin
}

func (s *quizService) requireAdmin(ctx context.Context, userID, resourceID, action string) error {
	if !s.isAdmin(ctx, userID) {
		return NewPermissionError(userID, resourceID, "quiz", action, "insufficient role permissions")
	}
	return nil
}

func (s *quizService) buildQuizResponse(ctx context.Context, quiz *models.Quiz, userID string, isAdmin bool) *QuizResponse {
	// CanTake follows the start-attempt policy, attempt limit included.
	canTake, err := canStartAttempt(ctx, s.repo, quiz, userID)
	if err != nil {
		s.logger.Error("Failed to evaluate attempt policy", "quiz_id", quiz.ID, "error", err)
		canTake = false
	}
	return &QuizResponse{
		Quiz:      quiz,
		CanEdit:   isAdmin,
		CanDelete: isAdmin && quiz.AttemptCount == 0,
		CanTake:   canTake,
	}
}

func (s *quizService) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
