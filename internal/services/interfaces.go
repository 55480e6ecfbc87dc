package services

import (
	"context"
	"time"

	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
)

// ===== QUIZ RELATED DTOs =====

type CreateQuizRequest struct {
	Title       string                  `json:"title" validate:"required,max=255"`
	Description *string                 `json:"description" validate:"omitempty,max=2000"`
	Difficulty  models.DifficultyLevel  `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	TimeLimit   *int                    `json:"time_limit" validate:"omitempty,min=1,max=600"`
	MaxAttempts *int                    `json:"max_attempts" validate:"omitempty,min=1,max=100"`
}

type UpdateQuizRequest struct {
	Title       *string                 `json:"title" validate:"omitempty,max=255"`
	Description *string                 `json:"description" validate:"omitempty,max=2000"`
	Difficulty  *models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Status      *models.QuizStatus      `json:"status" validate:"omitempty,oneof=draft active archived"`
	TimeLimit   *int                    `json:"time_limit" validate:"omitempty,min=1,max=600"`
	MaxAttempts *int                    `json:"max_attempts" validate:"omitempty,min=1,max=100"`
}

type QuizResponse struct {
	*models.Quiz
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanTake   bool `json:"can_take"`
}

type QuizListResponse struct {
	Quizzes []*QuizResponse `json:"quizzes"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Size    int             `json:"size"`
}

type AddQuestionRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Order      *int   `json:"order" validate:"omitempty,min=1"`
	Points     *int   `json:"points" validate:"omitempty,min=1,max=100"`
}

type UpdateQuizQuestionRequest struct {
	Points *int `json:"points" validate:"omitempty,min=1,max=100"`
	Order  *int `json:"order" validate:"omitempty,min=1"`
}

type ReorderQuestionsRequest struct {
	QuestionOrders []repositories.QuestionOrder `json:"question_orders" validate:"required,min=1"`
}

// ===== QUESTION RELATED DTOs =====

type CreateQuestionRequest struct {
	Type          models.QuestionType    `json:"type" validate:"required,oneof=multiple_choice true_false fill_blank short_answer"`
	Title         string                 `json:"title" validate:"required,max=500"`
	Content       string                 `json:"content" validate:"omitempty,max=5000"`
	CorrectAnswer string                 `json:"correct_answer" validate:"required"`
	Explanation   *string                `json:"explanation" validate:"omitempty,max=1000"`
	Options       []string               `json:"options" validate:"omitempty,max=10,dive,max=500"`
	Points        int                    `json:"points" validate:"omitempty,min=1,max=100"`
	Difficulty    models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type UpdateQuestionRequest struct {
	Title         *string                 `json:"title" validate:"omitempty,max=500"`
	Content       *string                 `json:"content" validate:"omitempty,max=5000"`
	CorrectAnswer *string                 `json:"correct_answer"`
	Explanation   *string                 `json:"explanation" validate:"omitempty,max=1000"`
	Options       []string                `json:"options" validate:"omitempty,max=10,dive,max=500"`
	Points        *int                    `json:"points" validate:"omitempty,min=1,max=100"`
	Difficulty    *models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// ===== ATTEMPT RELATED DTOs =====

type StartAttemptRequest struct {
	QuizID string `json:"quiz_id" validate:"required"`
}

type RecordAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

type SubmitAttemptRequest struct {
	AttemptID string `json:"attempt_id" validate:"required"`
	// Answers maps question IDs to answer text; entries replace previously
	// recorded answers for those questions.
	Answers   map[string]string `json:"answers"`
	TimeTaken *int              `json:"time_taken" validate:"omitempty,min=0"`
	// AutoSubmit marks submissions triggered by the timer rather than the
	// user.
	AutoSubmit bool `json:"auto_submit"`
}

type AttemptResponse struct {
	*models.QuizAttempt
	Percentage int  `json:"percentage"`
	CanSubmit  bool `json:"can_submit"`
	// TimeRemaining is in seconds; nil for untimed quizzes.
	TimeRemaining *int                 `json:"time_remaining,omitempty"`
	Questions     []QuestionForAttempt `json:"questions,omitempty"`
}

// QuestionForAttempt is a question as shown to the taker: no correct answer,
// no explanation.
type QuestionForAttempt struct {
	ID       string              `json:"id"`
	Type     models.QuestionType `json:"type"`
	Title    string              `json:"title"`
	Content  string              `json:"content"`
	Options  []string            `json:"options,omitempty"`
	Points   int                 `json:"points"`
	Order    int                 `json:"order"`
	Answered bool                `json:"answered"`
	// Answer echoes the taker's recorded answer, if any.
	Answer *string `json:"answer,omitempty"`
}

// AttemptHistoryResponse is the taker's view of their attempts on one quiz:
// submitted attempts newest first, the open attempt if one exists, and
// whether a fresh attempt may be started.
type AttemptHistoryResponse struct {
	QuizID        string             `json:"quiz_id"`
	Attempts      []*AttemptResponse `json:"attempts"`
	ActiveAttempt *AttemptResponse   `json:"active_attempt,omitempty"`
	AttemptCount  int                `json:"attempt_count"`
	CanTake       bool               `json:"can_take"`
	BestScore     *int               `json:"best_score,omitempty"`
}

// AttemptResultResponse is the post-submission view, correct answers included.
type AttemptResultResponse struct {
	*models.QuizAttempt
	Percentage int                 `json:"percentage"`
	Answers    []AnswerResultEntry `json:"answers"`
}

type AnswerResultEntry struct {
	QuestionID    string              `json:"question_id"`
	QuestionTitle string              `json:"question_title"`
	Type          models.QuestionType `json:"type"`
	Order         int                 `json:"order"`
	UserAnswer    *string             `json:"user_answer"`
	CorrectAnswer string              `json:"correct_answer"`
	Explanation   *string             `json:"explanation,omitempty"`
	IsCorrect     bool                `json:"is_correct"`
	PointsEarned  int                 `json:"points_earned"`
	Points        int                 `json:"points"`
}

// ===== ANALYSIS DTOs =====

type LeaderboardEntry struct {
	Rank        int                `json:"rank"`
	User        models.UserSummary `json:"user"`
	AttemptID   string             `json:"attempt_id"`
	Score       int                `json:"score"`
	TotalPoints int                `json:"total_points"`
	Percentage  int                `json:"percentage"`
	TimeTaken   int                `json:"time_taken"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

type LeaderboardResponse struct {
	QuizID  string              `json:"quiz_id"`
	Entries []*LeaderboardEntry `json:"entries"`
}

// ResultMatrixQuestion is one column of the matrix with its aggregate stats.
type ResultMatrixQuestion struct {
	QuestionID     string `json:"question_id"`
	Title          string `json:"title"`
	Order          int    `json:"order"`
	Points         int    `json:"points"`
	CorrectCount   int    `json:"correct_count"`
	IncorrectCount int    `json:"incorrect_count"`
	SuccessRate    int    `json:"success_rate"`
}

// ResultMatrixCell is a single user/question intersection. UserAnswer is nil
// when the question went unanswered.
type ResultMatrixCell struct {
	QuestionID   string  `json:"question_id"`
	UserAnswer   *string `json:"user_answer,omitempty"`
	Answered     bool    `json:"answered"`
	IsCorrect    bool    `json:"is_correct"`
	PointsEarned int     `json:"points_earned"`
}

type ResultMatrixRow struct {
	User       models.UserSummary `json:"user"`
	AttemptID  string             `json:"attempt_id"`
	Score      int                `json:"score"`
	Percentage int                `json:"percentage"`
	Cells      []ResultMatrixCell `json:"cells"`
}

type ResultMatrix struct {
	QuizID    string                  `json:"quiz_id"`
	Questions []*ResultMatrixQuestion `json:"questions"`
	Rows      []*ResultMatrixRow      `json:"rows"`
}

// ===== SERVICE INTERFACES =====

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*QuizResponse, error)
	GetByID(ctx context.Context, id, userID string) (*QuizResponse, error)
	GetByIDWithQuestions(ctx context.Context, id, userID string) (*QuizResponse, error)
	Update(ctx context.Context, id string, req *UpdateQuizRequest, userID string) (*QuizResponse, error)
	Delete(ctx context.Context, id, userID string) error
	List(ctx context.Context, filters repositories.QuizFilters, userID string) (*QuizListResponse, error)

	// Question management
	AddQuestion(ctx context.Context, quizID string, req *AddQuestionRequest, userID string) error
	RemoveQuestion(ctx context.Context, quizID, questionID, userID string) error
	UpdateQuestion(ctx context.Context, quizID, questionID string, req *UpdateQuizQuestionRequest, userID string) error
	ReorderQuestions(ctx context.Context, quizID string, req *ReorderQuestionsRequest, userID string) error

	GetStats(ctx context.Context, quizID, userID string) (*repositories.QuizStats, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error)
	GetByID(ctx context.Context, id, userID string) (*models.Question, error)
	Update(ctx context.Context, id string, req *UpdateQuestionRequest, userID string) (*models.Question, error)
	Delete(ctx context.Context, id, userID string) error
	List(ctx context.Context, filters repositories.QuestionFilters, userID string) ([]*models.Question, int64, error)
}

type AttemptService interface {
	// Core attempt lifecycle
	Start(ctx context.Context, req *StartAttemptRequest, userID string) (*AttemptResponse, error)
	GetActive(ctx context.Context, quizID, userID string) (*AttemptResponse, error)
	RecordAnswer(ctx context.Context, attemptID string, req *RecordAnswerRequest, userID string) error
	Submit(ctx context.Context, req *SubmitAttemptRequest, userID string) (*AttemptResultResponse, error)

	// Read operations
	GetResult(ctx context.Context, attemptID, userID string) (*AttemptResultResponse, error)
	GetLatestResult(ctx context.Context, quizID, userID string) (*AttemptResultResponse, error)
	GetHistory(ctx context.Context, quizID, userID string) (*AttemptHistoryResponse, error)
	List(ctx context.Context, filters repositories.AttemptFilters, userID string) ([]*AttemptResponse, int64, error)

	// Validation
	CanStart(ctx context.Context, quizID, userID string) (bool, error)
}

type AnalysisService interface {
	GetLeaderboard(ctx context.Context, quizID, userID string) (*LeaderboardResponse, error)
	GetResultMatrix(ctx context.Context, quizID, userID string) (*ResultMatrix, error)
	ExportResults(ctx context.Context, quizID, userID string) ([]byte, string, error)
	GetAvailableUsers(ctx context.Context, query string, userID string) ([]*models.UserSummary, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Quiz() QuizService
	Question() QuestionService
	Attempt() AttemptService
	Analysis() AnalysisService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
