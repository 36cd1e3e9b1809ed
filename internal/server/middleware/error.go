package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbergo/guardrails/internal/platform/logger"
	"github.com/mbergo/guardrails/pkg/api"
)

// ErrorHandler converts errors attached by handlers into RFC 9457
// problem+json responses. Only transport-level failures travel this way;
// upstream AI failures are value-level CallResults and never reach here.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if problem, ok := err.(*api.Problem); ok {
			if problem.Log != nil {
				logger.Error("Request failed",
					zap.Int("status", problem.Status),
					zap.String("title", problem.Title),
					zap.Error(problem.Log))
			}

			c.Header("Content-Type", "application/problem+json")
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		logger.Error("Unhandled error", zap.Error(err))

		c.Header("Content-Type", "application/problem+json")
		c.JSON(http.StatusInternalServerError, api.NewProblem(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred.",
		))
		c.Abort()
	}
}
