package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/models"
)

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	// GetByIDWithQuestions preloads the ordered question links and their
	// questions.
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetStats(ctx context.Context, tx *gorm.DB, quizID string) (*QuizStats, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
}

type QuizQuestionRepository interface {
	Add(ctx context.Context, tx *gorm.DB, link *models.QuizQuestion) error
	Remove(ctx context.Context, tx *gorm.DB, quizID, questionID string) error
	Update(ctx context.Context, tx *gorm.DB, link *models.QuizQuestion) error

	// GetByQuiz returns links ordered by display order, questions preloaded.
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.QuizQuestion, error)
	GetByQuizAndQuestion(ctx context.Context, tx *gorm.DB, quizID, questionID string) (*models.QuizQuestion, error)
	Reorder(ctx context.Context, tx *gorm.DB, quizID string, orders []QuestionOrder) error
}
