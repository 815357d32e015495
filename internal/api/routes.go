package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravenstack/ticket-classifier/internal/telemetry"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler, tp *telemetry.Provider) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	if tp != nil {
		router.GET("/metrics", gin.WrapH(tp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/classify", h.Classify)
		v1.POST("/classify/batch", h.ClassifyBatch)
		v1.GET("/stats", h.Stats)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
