// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"peopledesk/internal/core/apperror"
	appctx "peopledesk/internal/core/context"
	"peopledesk/pkg/logger"
)

// Recovery turns a panic in a list handler into a 500 response. It runs
// outside ErrorHandler, so it writes the error body itself. The stack is
// logged with the route and screen, never returned to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			screen := c.Param("screen")
			ctx := c.Request.Context()
			if screen != "" && appctx.GetScreen(ctx) == "" {
				ctx = appctx.WithScreen(ctx, screen)
			}
			logger.Error(ctx, "handler panicked",
				"method", c.Request.Method,
				"route", c.FullPath(),
				"path", c.Request.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)

			appErr := apperror.NewInternal(fmt.Errorf("panic: %v", rec))
			details := map[string]any{"request_id": c.GetString("request_id")}
			if screen != "" {
				details["screen"] = screen
			}
			_ = c.Error(appErr)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": details,
			})
		}()
		c.Next()
	}
}
