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

type QuizPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuizPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (r *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	db := r.getDB(tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := r.loadComputedFields(ctx, db, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	db := r.getDB(tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).
		Preload("QuizQuestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_questions.position ASC")
		}).
		Preload("QuizQuestions.Question").
		First(&quiz, "id = ?", id).Error; err != nil {
		return nil, err
	}

	quiz.QuestionsCount = len(quiz.QuizQuestions)
	for i := range quiz.QuizQuestions {
		quiz.TotalPoints += quiz.QuizQuestions[i].PointValue()
	}
	return &quiz, nil
}

func (r *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(quiz).Error; err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	// Stale quiz summaries must not outlive the edit.
	_ = r.cacheManager.Quiz.InvalidatePattern(ctx, fmt.Sprintf("*%s*", quiz.ID))
	return nil
}

func (r *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Quiz{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	_ = r.cacheManager.Quiz.InvalidatePattern(ctx, fmt.Sprintf("*%s*", id))
	return nil
}

func (r *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	db := r.getDB(tx)
	var quizzes []*models.Quiz
	var total int64

	query := db.WithContext(ctx).Model(&models.Quiz{})
	query = r.helpers.ApplyQuizFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	for _, quiz := range quizzes {
		if err := r.loadComputedFields(ctx, db, quiz); err != nil {
			return nil, 0, err
		}
	}

	return quizzes, total, nil
}

func (r *QuizPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, quizID string) (*repositories.QuizStats, error) {
	db := r.getDB(tx)
	cacheKey := fmt.Sprintf("quiz_stats:%s", quizID)
	var stats repositories.QuizStats

	err := r.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var dbStats repositories.QuizStats

		var totalAttempts int64
		if err := db.WithContext(ctx).Model(&models.QuizAttempt{}).
			Where("quiz_id = ?", quizID).
			Count(&totalAttempts).Error; err != nil {
			return nil, err
		}
		dbStats.TotalAttempts = int(totalAttempts)

		type aggRow struct {
			Submitted int64
			AvgScore  float64
			AvgTime   float64
		}
		var agg aggRow
		if err := db.WithContext(ctx).Model(&models.QuizAttempt{}).
			Select("COUNT(*) AS submitted, COALESCE(AVG(score), 0) AS avg_score, COALESCE(AVG(time_taken), 0) AS avg_time").
			Where("quiz_id = ? AND status = ?", quizID, models.AttemptSubmitted).
			Scan(&agg).Error; err != nil {
			return nil, err
		}
		dbStats.SubmittedAttempts = int(agg.Submitted)
		dbStats.AverageScore = agg.AvgScore
		dbStats.AverageTimeTaken = int(agg.AvgTime)

		var links []*models.QuizQuestion
		if err := db.WithContext(ctx).
			Preload("Question").
			Where("quiz_id = ?", quizID).
			Find(&links).Error; err != nil {
			return nil, err
		}
		dbStats.QuestionCount = len(links)
		for _, link := range links {
			dbStats.TotalPoints += link.PointValue()
		}

		return &dbStats, nil
	})

	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *QuizPostgreSQL) loadComputedFields(ctx context.Context, db *gorm.DB, quiz *models.Quiz) error {
	var questionCount int64
	if err := db.WithContext(ctx).Model(&models.QuizQuestion{}).
		Where("quiz_id = ?", quiz.ID).
		Count(&questionCount).Error; err != nil {
		return err
	}
	quiz.QuestionsCount = int(questionCount)

	var attemptCount int64
	if err := db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", quiz.ID).
		Count(&attemptCount).Error; err != nil {
		return err
	}
	quiz.AttemptCount = int(attemptCount)

	return nil
}
