package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every domain repository behind a single dependency.
type Repository interface {
	// Quiz domain
	Quiz() QuizRepository
	Question() QuestionRepository
	QuizQuestion() QuizQuestionRepository

	// Attempt domain
	Attempt() AttemptRepository
	Answer() AnswerRepository

	// User domain (read-only for the quiz service)
	User() UserRepository

	// WithTransaction runs fn inside a database transaction. The tx handle
	// is passed to repository methods that accept one.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
