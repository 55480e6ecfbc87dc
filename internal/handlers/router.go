package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MaX-NeO/atom-q-10/internal/config"
	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/services"
	"github.com/MaX-NeO/atom-q-10/internal/utils"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

type HandlerManager struct {
	quizHandler     *QuizHandler
	questionHandler *QuestionHandler
	attemptHandler  *AttemptHandler
	analysisHandler *AnalysisHandler
	userHandler     *UserHandler
	authMiddleware  *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		quizHandler:     NewQuizHandler(serviceManager.Quiz(), validator, logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), validator, logger),
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), validator, logger),
		analysisHandler: NewAnalysisHandler(serviceManager.Analysis(), logger),
		userHandler:     NewUserHandler(userRepo, logger),
		authMiddleware:  authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			// Create/modify quizzes - Admins only
			quizzes.POST("", adminOnly, hm.quizHandler.CreateQuiz)
			quizzes.PUT("/:id", adminOnly, hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", adminOnly, hm.quizHandler.DeleteQuiz)

			// View quizzes - All authenticated users
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:id/questions", hm.quizHandler.GetQuizWithQuestions)

			// Stats - Admins only
			quizzes.GET("/:id/stats", adminOnly, hm.quizHandler.GetQuizStats)

			// Quiz question management - Admins only
			quizzes.POST("/:id/questions", adminOnly, hm.quizHandler.AddQuestion)
			quizzes.PUT("/:id/questions/reorder", adminOnly, hm.quizHandler.ReorderQuestions)
			quizzes.PUT("/:id/questions/:question_id", adminOnly, hm.quizHandler.UpdateQuizQuestion)
			quizzes.DELETE("/:id/questions/:question_id", adminOnly, hm.quizHandler.RemoveQuestion)

			// Attempt lifecycle - All authenticated users
			quizzes.POST("/:id/attempts", hm.attemptHandler.StartAttempt)
			quizzes.GET("/:id/attempts/active", hm.attemptHandler.GetActiveAttempt)
			quizzes.GET("/:id/attempts/history", hm.attemptHandler.GetHistory)
			quizzes.GET("/:id/result", hm.attemptHandler.GetLatestResult)

			// Analysis - Admins only
			quizzes.GET("/:id/leaderboard", adminOnly, hm.analysisHandler.GetLeaderboard)
			quizzes.GET("/:id/results/matrix", adminOnly, hm.analysisHandler.GetResultMatrix)
			quizzes.GET("/:id/results/export", adminOnly, hm.analysisHandler.ExportResults)
		}

		// Question bank routes - Admins only
		questions := v1.Group("/questions")
		questions.Use(adminOnly)
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.PUT("/:id/answers", hm.attemptHandler.RecordAnswer)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/:id/result", hm.attemptHandler.GetResult)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetMe)
			users.GET("/search", adminOnly, hm.analysisHandler.GetAvailableUsers)
			users.GET("", adminOnly, hm.userHandler.ListUsers)
			users.GET("/:id", adminOnly, hm.userHandler.GetUser)
		}
	}
}
