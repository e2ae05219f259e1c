package controllers

import (
	"net/http"

	"querygateapi/pkg/logger"
	"querygateapi/pkg/qerror"
	"querygateapi/services/dto"
	"querygateapi/services/pipeline"
	"querygateapi/utils"

	"github.com/gin-gonic/gin"
)

var queryPipe *pipeline.Pipeline

// SetQueryPipeline initializes the pipeline instance the query endpoints
// run requests through. Wired in main after the stores are connected.
func SetQueryPipeline(p *pipeline.Pipeline) {
	queryPipe = p
}

// PostQuery executes a SQL statement through the secured pipeline
// @Summary Execute a query
// @Description Validates, authorizes and executes a SELECT statement for the given user, serving repeated queries from cache
// @Tags Query
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Query to execute"
// @Success 200 {object} dto.QueryResponse "Query executed"
// @Failure 400 {object} dto.QueryResponse "Rejected by validation or the database"
// @Failure 403 {object} dto.QueryResponse "Permission denied"
// @Failure 429 {object} dto.QueryResponse "Rate limit exceeded"
// @Failure 504 {object} dto.QueryResponse "Query timed out"
// @Failure 500 {object} dto.QueryResponse "Internal error"
// @Router /api/query [post]
func postQuery(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Query request from user %d", req.UserID)
	resp := queryPipe.Run(c.Request.Context(), &req)
	utils.JSONResponse(c, envelopeStatus(resp.Status, resp.Error), resp)
}

// PostExplain returns the execution plan a statement would run with
// @Summary Explain a query
// @Description Runs the same gate sequence as execution and returns the database's plan for the rewritten statement instead of rows
// @Tags Query
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Query to explain"
// @Success 200 {object} dto.ExplainResponse "Plan produced"
// @Failure 400 {object} dto.ExplainResponse "Rejected by validation or the database"
// @Failure 403 {object} dto.ExplainResponse "Permission denied"
// @Failure 429 {object} dto.ExplainResponse "Rate limit exceeded"
// @Failure 504 {object} dto.ExplainResponse "Query timed out"
// @Failure 500 {object} dto.ExplainResponse "Internal error"
// @Router /api/query/explain [post]
func postExplain(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Explain request from user %d", req.UserID)
	resp := queryPipe.Explain(c.Request.Context(), &req)
	utils.JSONResponse(c, envelopeStatus(resp.Status, resp.Error), resp)
}

// envelopeStatus maps an envelope to its HTTP status. The envelope body is
// returned unchanged either way; the code mirrors the error kind.
func envelopeStatus(status string, rec *dto.ErrorRecord) int {
	if status == dto.StatusSuccess {
		return http.StatusOK
	}
	if rec != nil {
		return qerror.HTTPStatus(qerror.Kind(rec.Kind))
	}
	return http.StatusInternalServerError
}

// RegisterQueryRoutes registers the query execution endpoints.
func RegisterQueryRoutes(rg *gin.RouterGroup) {
	query := rg.Group("/query")
	{
		query.POST("", postQuery)
		query.POST("/explain", postExplain)
	}
}
