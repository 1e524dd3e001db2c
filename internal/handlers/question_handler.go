package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/services"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/prepworks/scoring-service/internal/validator"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	validator       *validator.Validator
}

type getQuestionSetQuery struct {
	TestType    string `form:"test_type" validate:"required,test_type"`
	PracticeSet string `form:"practice_set" validate:"required"`
	SectionType string `form:"section_type" validate:"omitempty,section_type"`
}

func NewQuestionHandler(
	questionService services.QuestionService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		validator:       validator,
	}
}

// GetQuestionSet returns a practice test without its answer keys
// @Summary Get question set
// @Description Returns the questions of a practice set with answer keys stripped
// @Tags questions
// @Produce json
// @Param test_type query string true "Test type (shsat, sat, psat, statetest)"
// @Param practice_set query string true "Practice set identifier"
// @Param section_type query string false "Section filter"
// @Success 200 {object} models.QuestionSet
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /question-sets [get]
func (h *QuestionHandler) GetQuestionSet(c *gin.Context) {
	var query getQuestionSetQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Fetching question set",
		"test_type", query.TestType,
		"practice_set", query.PracticeSet,
		"section_type", query.SectionType)

	set, err := h.questionService.GetQuestionSet(
		c.Request.Context(),
		models.TestType(query.TestType),
		query.PracticeSet,
		query.SectionType,
	)
	if err != nil {
		if errors.Is(err, services.ErrQuestionSetNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Message: "Question set not found",
			})
			return
		}
		h.LogError(c, err, "Failed to load question set")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to load question set",
		})
		return
	}

	c.JSON(http.StatusOK, set)
}
