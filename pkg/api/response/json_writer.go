package response

import (
	"github.com/gin-gonic/gin"
)

type JSONResponseWriter struct{}

func (j *JSONResponseWriter) WriteSuccessResponse(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func (j *JSONResponseWriter) WriteErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Error: message})
}

type ErrorResponse struct {
	Error string `json:"error"`
}
