package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard-api/internal/transport/dto"
)

// Recovery answers a panicking request with 500 and then calls onPanic,
// which is expected to stop the process.
func Recovery(logger *zap.Logger, onPanic func(recovered any)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic while handling request",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("panic", fmt.Sprint(r)),
					zap.ByteString("stack", debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Error("Internal Server Error"))
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		c.Next()
	}
}
