package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizDraft    QuizStatus = "draft"
	QuizActive   QuizStatus = "active"
	QuizArchived QuizStatus = "archived"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type Quiz struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Title       string  `json:"title" gorm:"not null;size:255" validate:"required,max=255"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`

	Difficulty DifficultyLevel `json:"difficulty" gorm:"default:medium;index" validate:"omitempty,oneof=easy medium hard"`
	Status     QuizStatus      `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft active archived"`

	// TimeLimit is in minutes; nil means untimed.
	TimeLimit *int `json:"time_limit" validate:"omitempty,min=1,max=600"`
	// MaxAttempts nil means unlimited.
	MaxAttempts *int `json:"max_attempts" validate:"omitempty,min=1,max=100"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	QuizQuestions []QuizQuestion `json:"quiz_questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Attempts      []QuizAttempt  `json:"attempts,omitempty" gorm:"foreignKey:QuizID"`
	Creator       User           `json:"creator" gorm:"foreignKey:CreatedBy"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
	TotalPoints    int `json:"total_points" gorm:"-"`
	AttemptCount   int `json:"attempt_count" gorm:"-"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion links a question into a quiz with ordering and an optional
// per-quiz point override.
type QuizQuestion struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	QuizID     string `json:"quiz_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_question"`
	QuestionID string `json:"question_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_question"`

	// Order determines display and result-matrix column position.
	Order int `json:"order" gorm:"column:position;not null;index"`

	// Points overrides the question's default point value when set.
	Points *int `json:"points" validate:"omitempty,min=1,max=100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz     Quiz     `json:"-" gorm:"foreignKey:QuizID"`
	Question Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (qq *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if qq.ID == "" {
		qq.ID = uuid.NewString()
	}
	return nil
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// PointValue resolves the effective point value for this question within
// the quiz. Missing or non-positive values fall back to 1.
func (qq *QuizQuestion) PointValue() int {
	if qq.Points != nil && *qq.Points > 0 {
		return *qq.Points
	}
	if qq.Question.Points > 0 {
		return qq.Question.Points
	}
	return 1
}
