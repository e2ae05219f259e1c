package controllers

import (
	"net/http"
	"strconv"

	"querygateapi/services"
	"querygateapi/services/dto"
	"querygateapi/utils"

	"github.com/gin-gonic/gin"
)

var savedQuerySrv = services.NewSavedQueryService()

// SetSavedQueryService initializes the saved query service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetSavedQueryService(s services.SavedQueryService) {
	savedQuerySrv = s
}

// ListSavedQueries lists a user's saved queries
// @Summary List saved queries
// @Description Returns all saved queries of one user, newest first
// @Tags Saved Queries
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} map[string]interface{} "Saved queries"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Router /api/saved-queries [get]
func listSavedQueries(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil || userID == 0 {
		utils.JSONResponse(c, http.StatusBadRequest, gin.H{
			"error": "user_id must be a positive integer",
		})
		return
	}

	queries, err := savedQuerySrv.List(uint(userID))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"count": len(queries),
		"data":  queries,
	})
}

// GetSavedQuery returns one saved query
// @Summary Get a saved query
// @Description Returns a saved query by ID
// @Tags Saved Queries
// @Produce json
// @Param id path int true "Saved query ID"
// @Success 200 {object} models.SavedQuery "Saved query"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/saved-queries/{id} [get]
func getSavedQuery(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	sq, err := savedQuerySrv.Get(uint(id))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, sq)
}

// CreateSavedQuery stores a named query
// @Summary Save a query
// @Description Validates the statement and stores it under a name for reuse; execution is still authorized per run
// @Tags Saved Queries
// @Accept json
// @Produce json
// @Param request body dto.SaveQueryRequest true "Query to save"
// @Success 201 {object} map[string]interface{} "Query saved"
// @Failure 400 {object} map[string]interface{} "Invalid request or statement rejected"
// @Router /api/saved-queries [post]
func createSavedQuery(c *gin.Context) {
	var req dto.SaveQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	sq, err := savedQuerySrv.Save(&req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Query saved successfully",
		"id":      sq.ID,
	})
}

// DeleteSavedQuery removes a saved query
// @Summary Delete a saved query
// @Description Deletes a saved query owned by the given user
// @Tags Saved Queries
// @Produce json
// @Param id path int true "Saved query ID"
// @Param user_id query int true "Owning user ID"
// @Success 200 {object} map[string]interface{} "Query deleted"
// @Failure 404 {object} map[string]interface{} "Not found or not owned by user"
// @Router /api/saved-queries/{id} [delete]
func deleteSavedQuery(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil || userID == 0 {
		utils.JSONResponse(c, http.StatusBadRequest, gin.H{
			"error": "user_id must be a positive integer",
		})
		return
	}

	if err := savedQuerySrv.Delete(uint(id), uint(userID)); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "Saved query deleted successfully",
	})
}

// RegisterSavedQueryRoutes registers the saved query endpoints.
func RegisterSavedQueryRoutes(rg *gin.RouterGroup) {
	saved := rg.Group("/saved-queries")
	{
		saved.GET("", listSavedQueries)
		saved.GET("/:id", getSavedQuery)
		saved.POST("", createSavedQuery)
		saved.DELETE("/:id", deleteSavedQuery)
	}
}
