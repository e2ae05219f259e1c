package controllers

import (
	"net/http"
	"strconv"

	"querygateapi/pkg/logger"
	"querygateapi/services"
	"querygateapi/services/dto"
	"querygateapi/utils"

	"github.com/gin-gonic/gin"
)

var permissionSrv services.PermissionService

// SetPermissionService initializes the permission service instance.
// Wired in main once the cache manager exists.
func SetPermissionService(s services.PermissionService) {
	permissionSrv = s
}

// GrantPermission upserts one permission record
// @Summary Grant table access
// @Description Creates or replaces the permission record for (user, schema, table) and invalidates the affected cache tiers
// @Tags Permissions
// @Accept json
// @Produce json
// @Param request body dto.GrantRequest true "Grant to apply"
// @Success 200 {object} map[string]interface{} "Permission stored"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Router /api/permissions/grant [post]
func grantPermission(c *gin.Context) {
	var req dto.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	perm, err := permissionSrv.Grant(c.Request.Context(), &req)
	if err != nil {
		logger.Errorf("Grant failed for user %d on %s: %v", req.UserID, req.TableName, err)
		utils.ErrorResponse(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "Permission granted successfully",
		"data":    perm,
	})
}

// RevokePermission deletes one permission record
// @Summary Revoke table access
// @Description Deletes the permission record for (user, schema, table) and invalidates the affected cache tiers
// @Tags Permissions
// @Accept json
// @Produce json
// @Param request body dto.RevokeRequest true "Grant to remove"
// @Success 200 {object} map[string]interface{} "Permission revoked"
// @Failure 404 {object} map[string]interface{} "No matching record"
// @Router /api/permissions/revoke [post]
func revokePermission(c *gin.Context) {
	var req dto.RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := permissionSrv.Revoke(c.Request.Context(), &req); err != nil {
		logger.Errorf("Revoke failed for user %d on %s: %v", req.UserID, req.TableName, err)
		utils.ErrorResponse(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "Permission revoked successfully",
	})
}

// ListPermissions lists one user's permission records
// @Summary List a user's permissions
// @Description Returns all permission records of one user
// @Tags Permissions
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]interface{} "Permission records"
// @Failure 400 {object} map[string]interface{} "Invalid user ID"
// @Router /api/permissions/{user_id} [get]
func listPermissions(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil || userID == 0 {
		utils.JSONResponse(c, http.StatusBadRequest, gin.H{
			"error": "user_id must be a positive integer",
		})
		return
	}

	perms, err := permissionSrv.ListForUser(uint(userID))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"count": len(perms),
		"data":  perms,
	})
}

// RegisterPermissionRoutes registers the permission administration endpoints.
func RegisterPermissionRoutes(rg *gin.RouterGroup) {
	permissions := rg.Group("/permissions")
	{
		permissions.POST("/grant", grantPermission)
		permissions.POST("/revoke", revokePermission)
		permissions.GET("/:user_id", listPermissions)
	}
}
