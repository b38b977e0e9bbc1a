package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. metrics may be nil.
func SetupRoutes(router *gin.Engine, handler *Handler, metrics http.Handler) {
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/classify", handler.Classify)

		reviews := v1.Group("/reviews")
		{
			reviews.POST("", handler.CreateReview)
			reviews.GET("/:id", handler.GetReview)
			reviews.PUT("/:id", handler.UpdateReview)
		}

		v1.GET("/moderation/queue", handler.ModerationQueue)
	}
}
