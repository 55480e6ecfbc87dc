package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
)

type QuizAttempt struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	QuizID string `json:"quiz_id" gorm:"not null;size:36;index"`
	UserID string `json:"user_id" gorm:"not null;size:255;index"`

	Status AttemptStatus `json:"status" gorm:"default:IN_PROGRESS;index"`

	// Timing
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	TimeTaken   int        `json:"time_taken"` // seconds

	// Scoring
	Score          int `json:"score"`
	TotalPoints    int `json:"total_points"`
	TotalQuestions int `json:"total_questions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    Quiz         `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	User    User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Answers []QuizAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

type QuizAnswer struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	AttemptID  string `json:"attempt_id" gorm:"not null;size:36;uniqueIndex:idx_attempt_question"`
	QuestionID string `json:"question_id" gorm:"not null;size:36;uniqueIndex:idx_attempt_question"`

	UserAnswer   string `json:"user_answer" gorm:"type:text"`
	IsCorrect    bool   `json:"is_correct"`
	PointsEarned int    `json:"points_earned"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Attempt  QuizAttempt `json:"-" gorm:"foreignKey:AttemptID"`
	Question Question    `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (a *QuizAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
