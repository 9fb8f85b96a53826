package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dskvich/networker-bot/pkg/api/handler"
	"github.com/dskvich/networker-bot/pkg/api/response"
)

func NewRouter(statsProvider handler.StatsProvider) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(requestLogger(), gin.CustomRecovery(recovery))

	stats := handler.NewStats(statsProvider)
	r.GET("/healthz", stats.Health)
	r.GET("/stats", stats.Stats)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.DebugContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func recovery(c *gin.Context, p any) {
	slog.ErrorContext(c.Request.Context(), "Recovered from panic in http handler", "path", c.Request.URL.Path, "panic", p)
	w := response.JSONResponseWriter{}
	w.WriteErrorResponse(c, http.StatusInternalServerError, "internal error")
}
