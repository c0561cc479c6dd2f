package transport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/internal/transport/middleware"
)

func InitRoutes(handler *TransformHandler, logger logrus.FieldLogger, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(logger))

	transform := router.Group("/transform", middleware.Timeout(requestTimeout))
	transform.GET("", handler.Transform)
	transform.POST("", handler.Transform)
	transform.PUT("", handler.Transform)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "image-resizer",
		})
	})
	return router
}
