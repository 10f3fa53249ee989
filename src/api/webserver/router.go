package webserver

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"go.uber.org/zap"
)

func attachRoutes(r *gin.Engine, opts Options, logger *zap.Logger) {
	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Retry-After"},
	}))

	checks := NewChecks(opts.Checker, pipeline.NewLatest(), logger)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", checks.Page)

	limited := r.Group("")
	if opts.Limiter != nil {
		limited.Use(RateLimitMiddleware(opts.Limiter, logger))
	}
	limited.POST("/", checks.Submit)

	v1 := limited.Group("/v1")
	{
		v1.POST("/check", checks.Check)
		v1.GET("/check/stream", checks.Stream)
	}
	r.GET("/v1/check/latest", checks.Latest)
}
