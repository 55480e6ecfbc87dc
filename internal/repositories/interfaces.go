package repositories

import (
	"time"

	"github.com/MaX-NeO/atom-q-10/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status     *models.QuizStatus      `json:"status"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	CreatedBy  *string                 `json:"created_by"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`    // "created_at", "title"
	SortOrder  string                  `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	CreatedBy  *string                 `json:"created_by"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}

type AttemptFilters struct {
	Status   *models.AttemptStatus `json:"status"`
	UserID   *string               `json:"user_id"`
	DateFrom *time.Time            `json:"date_from"`
	DateTo   *time.Time            `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionOrder struct {
	QuestionID string `json:"question_id"`
	Order      int    `json:"order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type QuizStats struct {
	TotalAttempts     int     `json:"total_attempts"`
	SubmittedAttempts int     `json:"submitted_attempts"`
	AverageScore      float64 `json:"average_score"`
	AverageTimeTaken  int     `json:"average_time_taken"`
	QuestionCount     int     `json:"question_count"`
	TotalPoints       int     `json:"total_points"`
}
