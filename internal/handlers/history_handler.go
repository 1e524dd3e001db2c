package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prepworks/scoring-service/internal/services"
	"github.com/prepworks/scoring-service/internal/utils"
)

type HistoryHandler struct {
	BaseHandler
	historyService services.HistoryService
	exportService  services.ExportService
}

func NewHistoryHandler(
	historyService services.HistoryService,
	exportService services.ExportService,
	logger utils.Logger,
) *HistoryHandler {
	return &HistoryHandler{
		BaseHandler:    NewBaseHandler(logger),
		historyService: historyService,
		exportService:  exportService,
	}
}

// GetHistory returns the caller's test history
// @Summary Get test history
// @Tags history
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Fetching test history")

	history, err := h.historyService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// GetStats returns the caller's rolling per-family statistics
// @Summary Get test statistics
// @Tags history
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /history/stats [get]
func (h *HistoryHandler) GetStats(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.historyService.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetCategoryPerformance returns the caller's per-category mastery counters
// @Summary Get category performance
// @Tags history
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /history/categories [get]
func (h *HistoryHandler) GetCategoryPerformance(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	performance, err := h.historyService.GetCategoryPerformance(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category_performance": performance})
}

// DeleteEntry removes one history entry by id
// @Summary Delete history entry
// @Tags history
// @Produce json
// @Param entry_id path string true "History entry ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /history/{entry_id} [delete]
func (h *HistoryHandler) DeleteEntry(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	entryID := ParseStringIDParam(c, "entry_id")
	if entryID == "" {
		return
	}

	h.LogRequest(c, "Deleting history entry", "entry_id", entryID)

	if err := h.historyService.DeleteEntry(c.Request.Context(), userID, entryID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "History entry deleted",
	})
}

// ExportHistory streams the caller's history as an xlsx workbook
// @Summary Export test history
// @Tags history
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /history/export [get]
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Exporting test history")

	data, err := h.exportService.ExportHistoryToExcel(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("test-history-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *HistoryHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	case errors.Is(err, services.ErrHistoryEntryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "History entry not found",
		})
	default:
		h.LogError(c, err, "History request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
