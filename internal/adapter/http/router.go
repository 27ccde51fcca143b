package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darkangel00016/Voice-Ordering2/internal/adapter/http/middleware"
	"github.com/darkangel00016/Voice-Ordering2/internal/logging"
)

func NewRouter(h *ConversationHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/conversations", h.Create)
		v1.GET("/conversations/:id", h.Get)
		v1.POST("/conversations/:id/messages", h.PostMessage)
		v1.GET("/conversations/:id/order", h.GetOrder)
		v1.POST("/conversations/:id/order/validate", h.ValidateOrder)
		v1.POST("/conversations/:id/submit", h.Submit)
	}

	return r
}
