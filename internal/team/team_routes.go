package team

import (
	"github.com/R-M-Tejaswini/slack-leave-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	teams := r.Group("/teams")
	teams.Use(middleware.AuthMiddleware(jwtSecret))
	{
		teams.GET("", handler.GetAll)
		teams.GET("/:id", handler.GetById)
		teams.POST("", handler.Create)
		teams.PUT("/:id", handler.Update)
		teams.DELETE("/:id", handler.Delete)
	}
}
