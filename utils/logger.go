package utils

import (
	"errors"
	"net/http"
	"time"

	"querygateapi/pkg/logger"
	"querygateapi/pkg/qerror"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InitLoggerWithConfig initializes the structured logger with full config.
func InitLoggerWithConfig(filePath, level string, maxSize, maxBackups, maxAge int, compress bool) {
	logLevel := logger.ParseLogLevel(level)
	logger.InitWithConfig(filePath, logLevel, maxSize, maxBackups, maxAge, compress)
	logger.Infof("Logger initialized with level %s at: %s", level, filePath)
}

// LoggerMiddleware logs one line per request with status-based level.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		if status >= 500 {
			logger.Errorf("HTTP %s %s - Status: %d, Duration: %v, IP: %s",
				c.Request.Method, c.Request.URL.Path, status, elapsed, c.ClientIP())
		} else if status >= 400 {
			logger.Warnf("HTTP %s %s - Status: %d, Duration: %v, IP: %s",
				c.Request.Method, c.Request.URL.Path, status, elapsed, c.ClientIP())
		} else {
			logger.Infof("HTTP %s %s - Status: %d, Duration: %v, IP: %s",
				c.Request.Method, c.Request.URL.Path, status, elapsed, c.ClientIP())
		}
	}
}

// JSONResponse sends a JSON response with the specified HTTP status code.
func JSONResponse(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// ErrorResponse logs and sends a standardized error response. Pipeline
// errors map through their kind, missing records map to 404, anything else
// is treated as a bad request.
func ErrorResponse(c *gin.Context, err error) {
	logger.Errorf("API Error: %v", err)

	status := http.StatusBadRequest
	var qe *qerror.Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		status = http.StatusNotFound
	} else if errors.As(err, &qe) {
		status = qerror.HTTPStatus(qe.Kind)
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}
