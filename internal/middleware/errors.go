package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/stockchat/internal/domain/dto"
	"github.com/guttosm/stockchat/internal/logger"
)

// ErrorHandler is a Gin middleware that converts errors attached to the
// context (via c.Error or AbortWithError) into a standardized JSON response.
//
// Behavior:
//   - Runs the rest of the chain first.
//   - If any handler recorded errors, logs the last one and writes a 500
//     response with dto.NewErrorResponse, unless a response was already written.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	err := c.Errors.Last().Err
	logger.L().Error().Err(err).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
}

// AbortWithError records err on the context and writes a standardized
// error response with the given status and message.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
