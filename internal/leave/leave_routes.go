package leave

import (
	"github.com/R-M-Tejaswini/slack-leave-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(jwtSecret))
	{
		leaves.GET("/calendar", handler.Calendar)
		leaves.GET("/:id", handler.GetByID)
		leaves.GET("/:id/history", handler.History)
	}
}
