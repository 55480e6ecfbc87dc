package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/cache"
	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
)

type QuizQuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuizQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuizQuestionRepository {
	return &QuizQuestionPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *QuizQuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *QuizQuestionPostgreSQL) Add(ctx context.Context, tx *gorm.DB, link *models.QuizQuestion) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("failed to add question to quiz: %w", err)
	}
	r.invalidateQuiz(ctx, link.QuizID)
	return nil
}

func (r *QuizQuestionPostgreSQL) Remove(ctx context.Context, tx *gorm.DB, quizID, questionID string) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Where("quiz_id = ? AND question_id = ?", quizID, questionID).
		Delete(&models.QuizQuestion{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove question from quiz: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateQuiz(ctx, quizID)
	return nil
}

func (r *QuizQuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, link *models.QuizQuestion) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(link).Error; err != nil {
		return fmt.Errorf("failed to update quiz question: %w", err)
	}
	r.invalidateQuiz(ctx, link.QuizID)
	return nil
}

// GetByQuiz returns the quiz's question links in display order with the
// underlying questions preloaded.
func (r *QuizQuestionPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.QuizQuestion, error) {
	db := r.getDB(tx)
	var links []*models.QuizQuestion
	if err := db.WithContext(ctx).
		Preload("Question").
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *QuizQuestionPostgreSQL) GetByQuizAndQuestion(ctx context.Context, tx *gorm.DB, quizID, questionID string) (*models.QuizQuestion, error) {
	db := r.getDB(tx)
	var link models.QuizQuestion
	if err := db.WithContext(ctx).
		Preload("Question").
		Where("quiz_id = ? AND question_id = ?", quizID, questionID).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *QuizQuestionPostgreSQL) Reorder(ctx context.Context, tx *gorm.DB, quizID string, orders []repositories.QuestionOrder) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		for _, order := range orders {
			result := inner.Model(&models.QuizQuestion{}).
				Where("quiz_id = ? AND question_id = ?", quizID, order.QuestionID).
				Update("position", order.Order)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("question %s is not part of quiz %s: %w", order.QuestionID, quizID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.invalidateQuiz(ctx, quizID)
	return nil
}

func (r *QuizQuestionPostgreSQL) invalidateQuiz(ctx context.Context, quizID string) {
	_ = r.cacheManager.Quiz.InvalidatePattern(ctx, fmt.Sprintf("*%s*", quizID))
	_ = r.cacheManager.Stats.Delete(ctx, fmt.Sprintf("quiz_stats:%s", quizID))
}
