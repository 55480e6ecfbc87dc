package models

import "time"

// ===== SUMMARY DTOs =====

type QuizSummary struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	Status         QuizStatus      `json:"status"`
	TimeLimit      *int            `json:"time_limit"`
	MaxAttempts    *int            `json:"max_attempts"`
	QuestionsCount int             `json:"questions_count"`
	TotalPoints    int             `json:"total_points"`
	CreatedAt      time.Time       `json:"created_at"`
}

type UserSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ===== ERROR RESPONSES =====

type ErrorResponse struct {
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
