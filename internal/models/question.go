package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillInBlank    QuestionType = "fill_blank"
	ShortAnswer    QuestionType = "short_answer"
)

type Question struct {
	ID      string       `json:"id" gorm:"primaryKey;size:36"`
	Type    QuestionType `json:"type" gorm:"not null;index" validate:"required,oneof=multiple_choice true_false fill_blank short_answer"`
	Title   string       `json:"title" gorm:"not null;size:500" validate:"required,max=500"`
	Content string       `json:"content" gorm:"type:text"`

	// CorrectAnswer is the canonical answer; grading compares against it after
	// trimming and case-folding.
	CorrectAnswer string  `json:"correct_answer" gorm:"not null;type:text" validate:"required"`
	Explanation   *string `json:"explanation" gorm:"type:text" validate:"omitempty,max=1000"`

	// Options is a serialized []string (JSONB). Empty for non-choice types.
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	// Points is the default point value; QuizQuestion.Points overrides it
	// per quiz.
	Points int `json:"points" gorm:"default:1" validate:"min=1,max=100"`

	Difficulty DifficultyLevel `json:"difficulty" gorm:"default:medium;index"`

	// Metadata
	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Creator User `json:"creator" gorm:"foreignKey:CreatedBy"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the serialized option list. A missing or malformed
// column yields an empty slice rather than an error.
func (q *Question) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
