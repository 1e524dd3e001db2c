package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepworks/scoring-service/internal/services"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/prepworks/scoring-service/internal/validator"
)

type HandlerManager struct {
	submissionHandler *SubmissionHandler
	questionHandler   *QuestionHandler
	historyHandler    *HistoryHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), validator, logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), validator, logger),
		historyHandler:    NewHistoryHandler(serviceManager.History(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "scoring-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(UserIdentityMiddleware())
	{
		// Question set routes
		v1.GET("/question-sets", hm.questionHandler.GetQuestionSet)

		// Submission routes
		v1.POST("/submissions", hm.submissionHandler.SubmitTest)

		// History routes
		history := v1.Group("/history")
		{
			history.GET("", hm.historyHandler.GetHistory)
			history.GET("/stats", hm.historyHandler.GetStats)
			history.GET("/categories", hm.historyHandler.GetCategoryPerformance)
			history.GET("/export", hm.historyHandler.ExportHistory)
			history.DELETE("/:entry_id", AdminMiddleware(), hm.historyHandler.DeleteEntry)
		}
	}
}

// UserIdentityMiddleware reads the caller identity forwarded by the gateway.
// Authentication itself happens upstream.
func UserIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

// AdminMiddleware gates destructive routes on the gateway-forwarded role.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-Role") != "admin" {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
