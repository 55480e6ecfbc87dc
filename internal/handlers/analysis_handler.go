package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MaX-NeO/atom-q-10/internal/services"
	"github.com/MaX-NeO/atom-q-10/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalysisHandler struct {
	BaseHandler
	analysisService services.AnalysisService
}

func NewAnalysisHandler(analysisService services.AnalysisService, logger utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		BaseHandler:     NewBaseHandler(logger),
		analysisService: analysisService,
	}
}

// GetLeaderboard returns the ranked best attempts for a quiz.
// @Summary Quiz leaderboard
// @Tags analysis
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} services.LeaderboardResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/leaderboard [get]
func (h *AnalysisHandler) GetLeaderboard(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == "" {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	leaderboard, err := h.analysisService.GetLeaderboard(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}

// GetResultMatrix returns the per-user, per-question correctness grid.
func (h *AnalysisHandler) GetResultMatrix(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == "" {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	matrix, err := h.analysisService.GetResultMatrix(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, matrix)
}

// ExportResults streams the quiz results workbook as an xlsx download.
// @Summary Export quiz results
// @Tags analysis
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Quiz ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /quizzes/{id}/export [get]
func (h *AnalysisHandler) ExportResults(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == "" {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", quizID)

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	data, filename, err := h.analysisService.ExportResults(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetAvailableUsers searches users for result filtering and assignment.
func (h *AnalysisHandler) GetAvailableUsers(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	users, err := h.analysisService.GetAvailableUsers(c.Request.Context(), c.Query("q"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
