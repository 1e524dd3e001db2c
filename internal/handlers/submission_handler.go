package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepworks/scoring-service/internal/services"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/prepworks/scoring-service/internal/validator"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	validator         *validator.Validator
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		validator:         validator,
	}
}

// SubmitTest grades a completed attempt and persists it to the user's history
// @Summary Submit test attempt
// @Description Grades submitted answers, converts raw scores to scaled scores and saves the result
// @Tags submissions
// @Accept json
// @Produce json
// @Param submission body services.SubmitTestRequest true "Test submission"
// @Success 200 {object} services.SubmitTestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /submissions [post]
func (h *SubmissionHandler) SubmitTest(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	var req services.SubmitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting test attempt",
		"test_type", req.TestType,
		"practice_set", req.PracticeSet,
		"answers_count", len(req.Answers))

	result, err := h.submissionService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SubmissionHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	// An exhausted save is not an internal error: the attempt was graded, only
	// persistence failed. The payload tells the client it is safe to retry.
	var saveFailed *services.SaveFailedError
	if errors.As(err, &saveFailed) {
		h.LogError(c, err, "Test history save exhausted retries",
			"backup_id", saveFailed.BackupID,
			"attempts", saveFailed.Attempts)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":   false,
			"errorCode": "SAVE_FAILED",
			"message":   "Your results could not be saved. Please try submitting again.",
			"retryable": true,
			"backupId":  saveFailed.BackupID,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuestionSetNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Question set not found",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	case errors.Is(err, services.ErrInvalidSection), errors.Is(err, services.ErrInvalidTestType):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid test or section type",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrGradingTimeout):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Grading took too long, please try again",
			Code:    "GRADING_TIMEOUT",
		})
	default:
		h.LogError(c, err, "Failed to process test submission")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to process test submission",
		})
	}
}
