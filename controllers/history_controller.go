package controllers

import (
	"net/http"
	"strconv"

	"querygateapi/services"
	"querygateapi/utils"

	"github.com/gin-gonic/gin"
)

var historySrv = services.NewHistoryService()

// SetHistoryService initializes the history service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetHistoryService(s services.HistoryService) {
	historySrv = s
}

// GetHistory lists a user's recent query audit entries
// @Summary Get query history
// @Description Returns a user's audit entries from the last N days, newest first
// @Tags History
// @Produce json
// @Param user_id query int true "User ID"
// @Param days query int false "Look-back window in days (default 7)"
// @Param limit query int false "Maximum entries (default 50, cap 500)"
// @Param status query string false "Filter to one status, e.g. success or permission_denied"
// @Success 200 {object} map[string]interface{} "Audit entries"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Router /api/history [get]
func getHistory(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil || userID == 0 {
		utils.JSONResponse(c, http.StatusBadRequest, gin.H{
			"error": "user_id must be a positive integer",
		})
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	status := c.Query("status")

	entries, err := historySrv.GetRecent(uint(userID), days, limit, status)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"count": len(entries),
		"data":  entries,
	})
}

// RegisterHistoryRoutes registers the audit trail endpoints.
func RegisterHistoryRoutes(rg *gin.RouterGroup) {
	history := rg.Group("/history")
	{
		history.GET("", getHistory)
	}
}
