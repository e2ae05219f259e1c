package controllers

import (
	"net/http"

	"querygateapi/services"
	"querygateapi/utils"

	"github.com/gin-gonic/gin"
)

var schemaSrv services.SchemaService

// SetSchemaService initializes the schema service instance.
// Wired in main once the schema cache tier exists.
func SetSchemaService(s services.SchemaService) {
	schemaSrv = s
}

// ListTables lists the tables of the configured schema
// @Summary List tables
// @Description Returns the table names of the query schema, served through the schema cache tier
// @Tags Schema
// @Produce json
// @Success 200 {object} map[string]interface{} "Table names"
// @Failure 500 {object} map[string]interface{} "Metadata query failed"
// @Router /api/schema/tables [get]
func listTables(c *gin.Context) {
	tables, err := schemaSrv.ListTables(c.Request.Context())
	if err != nil {
		utils.JSONResponse(c, http.StatusInternalServerError, gin.H{
			"error": "failed to list tables",
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"count": len(tables),
		"data":  tables,
	})
}

// DescribeTable returns one table's column metadata
// @Summary Describe a table
// @Description Returns column names, types and nullability for one table, served through the schema cache tier
// @Tags Schema
// @Produce json
// @Param table path string true "Table name"
// @Success 200 {object} schema.Table "Table metadata"
// @Failure 404 {object} map[string]interface{} "Unknown table"
// @Router /api/schema/tables/{table} [get]
func describeTable(c *gin.Context) {
	table := c.Param("table")

	tbl, err := schemaSrv.DescribeTable(c.Request.Context(), table)
	if err != nil {
		utils.JSONResponse(c, http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, tbl)
}

// RegisterSchemaRoutes registers the schema browsing endpoints.
func RegisterSchemaRoutes(rg *gin.RouterGroup) {
	schemaGroup := rg.Group("/schema")
	{
		schemaGroup.GET("/tables", listTables)
		schemaGroup.GET("/tables/:table", describeTable)
	}
}
