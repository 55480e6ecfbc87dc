package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/models"
)

type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error)
	Update(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error

	// GetActiveAttempt returns the single IN_PROGRESS attempt for the
	// (quiz, user) pair, answers preloaded.
	GetActiveAttempt(ctx context.Context, tx *gorm.DB, quizID, userID string) (*models.QuizAttempt, error)
	// GetLatestSubmitted returns the most recently submitted attempt for the
	// pair, answers preloaded.
	GetLatestSubmitted(ctx context.Context, tx *gorm.DB, quizID, userID string) (*models.QuizAttempt, error)

	GetByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID, userID string) ([]*models.QuizAttempt, error)
	// GetSubmittedByQuiz returns submitted attempts for a quiz with users and
	// answers preloaded, ordered score desc then submitted_at asc.
	GetSubmittedByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.QuizAttempt, error)
	CountSubmitted(ctx context.Context, tx *gorm.DB, quizID, userID string) (int, error)
	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)

	// FinalizeSubmission conditionally transitions the attempt from
	// IN_PROGRESS to SUBMITTED, persisting score, total points, total
	// questions, submission time and time taken in the same statement.
	// Returns false when the attempt was no longer IN_PROGRESS (lost race or
	// double submit).
	FinalizeSubmission(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) (bool, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, answer *models.QuizAnswer) error
	Update(ctx context.Context, tx *gorm.DB, answer *models.QuizAnswer) error
	UpdateBatch(ctx context.Context, tx *gorm.DB, answers []*models.QuizAnswer) error

	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID string) ([]*models.QuizAnswer, error)
	GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID string) (*models.QuizAnswer, error)
}
