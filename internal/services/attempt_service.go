package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/events"
	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewAttemptService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) AttemptService {
	return &attemptService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE ATTEMPT LIFECYCLE =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest, userID string) (*AttemptResponse, error) {
	s.logger.Info("Starting quiz attempt",
		"quiz_id", req.QuizID,
		"user_id", userID)

	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.Status != models.QuizActive {
		return nil, ErrQuizNotActive
	}

	// Resume an existing active attempt instead of opening a second one.
	if active, err := s.repo.Attempt().GetActiveAttempt(ctx, nil, req.QuizID, userID); err == nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", active.ID)
		return s.buildAttemptResponse(ctx, active, quiz)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}

	if quiz.MaxAttempts != nil {
		count, err := s.repo.Attempt().CountSubmitted(ctx, nil, req.QuizID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count attempts: %w", err)
		}
		if count >= *quiz.MaxAttempts {
			return nil, ErrAttemptLimitReached
		}
	}

	attempt := &models.QuizAttempt{
		QuizID:    req.QuizID,
		UserID:    userID,
		Status:    models.AttemptInProgress,
		StartedAt: time.Now(),
	}

	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", req.QuizID,
		"user_id", userID)

	s.publishEvent(ctx, events.EventAttemptStarted, events.AttemptStartedPayload{
		AttemptID: attempt.ID,
		QuizID:    req.QuizID,
		UserID:    userID,
	})

	return s.buildAttemptResponse(ctx, attempt, quiz)
}

func (s *attemptService) GetActive(ctx context.Context, quizID, userID string) (*AttemptResponse, error) {
	attempt, err := s.repo.Attempt().GetActiveAttempt(ctx, nil, quizID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get active attempt: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	// A timed-out attempt is finalized with whatever was recorded.
	if s.isExpired(attempt, quiz) {
		s.logger.Info("Attempt time expired, auto-submitting", "attempt_id", attempt.ID)
		if _, err := s.Submit(ctx, &SubmitAttemptRequest{
			AttemptID:  attempt.ID,
			AutoSubmit: true,
		}, userID); err != nil && !errors.Is(err, ErrAttemptAlreadySubmitted) {
			return nil, err
		}
		return nil, ErrAttemptTimeExpired
	}

	return s.buildAttemptResponse(ctx, attempt, quiz)
}

// RecordAnswer grades and stores a single answer while the attempt is open.
// Re-answering a question replaces the previous answer. An empty answer is a
// no-op rather than an error.
func (s *attemptService) RecordAnswer(ctx context.Context, attemptID string, req *RecordAnswerRequest, userID string) error {
	if errs := s.validator.Validate(req); errs != nil {
		return fmt.Errorf("validation failed: %w", errs)
	}
	if req.Answer == "" {
		return nil
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.UserID != userID {
		return NewPermissionError(userID, attemptID, "attempt", "record_answer", "not owned by user")
	}
	if attempt.Status != models.AttemptInProgress {
		return ErrAttemptNotActive
	}

	link, err := s.repo.QuizQuestion().GetByQuizAndQuestion(ctx, nil, attempt.QuizID, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get quiz question: %w", err)
	}

	isCorrect, pointsEarned := GradeAnswer(link, req.Answer)

	existing, err := s.repo.Answer().GetByAttemptAndQuestion(ctx, nil, attemptID, req.QuestionID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to get existing answer: %w", err)
	}

	if existing != nil && err == nil {
		existing.UserAnswer = req.Answer
		existing.IsCorrect = isCorrect
		existing.PointsEarned = pointsEarned
		if err := s.repo.Answer().Update(ctx, nil, existing); err != nil {
			return fmt.Errorf("failed to update answer: %w", err)
		}
		return nil
	}

	answer := &models.QuizAnswer{
		AttemptID:    attemptID,
		QuestionID:   req.QuestionID,
		UserAnswer:   req.Answer,
		IsCorrect:    isCorrect,
		PointsEarned: pointsEarned,
	}
	if err := s.repo.Answer().Create(ctx, nil, answer); err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}

	return nil
}

// Submit finalizes an attempt: any answers in the request are applied, every
// recorded answer is regraded against the current question set, and the
// attempt transitions to SUBMITTED exactly once.
func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest, userID string) (*AttemptResultResponse, error) {
	s.logger.Info("Submitting quiz attempt",
		"attempt_id", req.AttemptID,
		"user_id", userID,
		"auto_submit", req.AutoSubmit)

	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, nil, req.AttemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.UserID != userID {
		return nil, NewPermissionError(userID, req.AttemptID, "attempt", "submit", "not owned by user")
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptAlreadySubmitted
	}

	links, err := s.repo.QuizQuestion().GetByQuiz(ctx, nil, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}

	var finalized bool
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.applySubmittedAnswers(ctx, tx, attempt, links, req.Answers); err != nil {
			return err
		}

		answers, err := s.repo.Answer().GetByAttempt(ctx, tx, attempt.ID)
		if err != nil {
			return fmt.Errorf("failed to load answers: %w", err)
		}

		score, regraded := s.regradeAnswers(links, answers)
		if len(regraded) > 0 {
			if err := s.repo.Answer().UpdateBatch(ctx, tx, regraded); err != nil {
				return fmt.Errorf("failed to persist regraded answers: %w", err)
			}
		}

		now := time.Now()
		attempt.Score = score
		attempt.TotalPoints = totalPoints(links)
		attempt.TotalQuestions = len(links)
		attempt.SubmittedAt = &now
		attempt.TimeTaken = s.resolveTimeTaken(attempt, req.TimeTaken, now)

		finalized, err = s.repo.Attempt().FinalizeSubmission(ctx, tx, attempt)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	if !finalized {
		return nil, ErrAttemptAlreadySubmitted
	}
	attempt.Status = models.AttemptSubmitted

	s.logger.Info("Quiz attempt submitted",
		"attempt_id", attempt.ID,
		"score", attempt.Score,
		"total_points", attempt.TotalPoints)

	s.publishEvent(ctx, events.EventAttemptSubmitted, events.AttemptSubmittedPayload{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		UserID:         attempt.UserID,
		Score:          attempt.Score,
		TotalPoints:    attempt.TotalPoints,
		Percentage:     Percentage(attempt.Score, attempt.TotalPoints),
		TimeTaken:      attempt.TimeTaken,
		AutoSubmitted:  req.AutoSubmit,
		TotalQuestions: attempt.TotalQuestions,
	})

	return s.buildResultResponse(ctx, attempt, links)
}

// ===== READ OPERATIONS =====

func (s *attemptService) GetResult(ctx context.Context, attemptID, userID string) (*AttemptResultResponse, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.UserID != userID {
		user, uerr := s.repo.User().GetByID(ctx, userID)
		if uerr != nil || user.Role != models.RoleAdmin {
			return nil, NewPermissionError(userID, attemptID, "attempt", "read", "not owner or insufficient permissions")
		}
	}

	if attempt.Status != models.AttemptSubmitted {
		return nil, ErrAttemptNotActive
	}

	links, err := s.repo.QuizQuestion().GetByQuiz(ctx, nil, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}

	return s.buildResultResponse(ctx, attempt, links)
}

// GetLatestResult returns the result view of the caller's most recently
// submitted attempt for a quiz.
func (s *attemptService) GetLatestResult(ctx context.Context, quizID, userID string) (*AttemptResultResponse, error) {
	attempt, err := s.repo.Attempt().GetLatestSubmitted(ctx, nil, quizID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}

	links, err := s.repo.QuizQuestion().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}

	return s.buildResultResponse(ctx, attempt, links)
}

func (s *attemptService) GetHistory(ctx context.Context, quizID, userID string) (*AttemptHistoryResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	attempts, err := s.repo.Attempt().GetByQuizAndUser(ctx, nil, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}

	resp := &AttemptHistoryResponse{
		QuizID:   quizID,
		Attempts: []*AttemptResponse{},
	}
	for _, attempt := range attempts {
		entry := &AttemptResponse{
			QuizAttempt: attempt,
			Percentage:  Percentage(attempt.Score, attempt.TotalPoints),
			CanSubmit:   attempt.Status == models.AttemptInProgress,
		}
		if attempt.Status == models.AttemptInProgress {
			resp.ActiveAttempt = entry
			continue
		}
		resp.Attempts = append(resp.Attempts, entry)
		if resp.BestScore == nil || attempt.Score > *resp.BestScore {
			score := attempt.Score
			resp.BestScore = &score
		}
	}
	resp.AttemptCount = len(resp.Attempts)

	underLimit, err := canStartAttempt(ctx, s.repo, quiz, userID)
	if err != nil {
		return nil, err
	}
	resp.CanTake = underLimit && resp.ActiveAttempt == nil

	return resp, nil
}

func (s *attemptService) List(ctx context.Context, filters repositories.AttemptFilters, userID string) ([]*AttemptResponse, int64, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get user: %w", err)
	}

	// Non-admins only see their own attempts.
	if user.Role != models.RoleAdmin {
		filters.UserID = &userID
	}

	attempts, total, err := s.repo.Attempt().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}

	responses := make([]*AttemptResponse, len(attempts))
	for i, attempt := range attempts {
		responses[i] = &AttemptResponse{
			QuizAttempt: attempt,
			Percentage:  Percentage(attempt.Score, attempt.TotalPoints),
			CanSubmit:   attempt.Status == models.AttemptInProgress,
		}
	}
	return responses, total, nil
}

// ===== VALIDATION =====

func (s *attemptService) CanStart(ctx context.Context, quizID, userID string) (bool, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrQuizNotFound
		}
		return false, fmt.Errorf("failed to get quiz: %w", err)
	}

	return canStartAttempt(ctx, s.repo, quiz, userID)
}
