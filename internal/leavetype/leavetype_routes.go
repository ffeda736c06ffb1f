package leavetype

import (
	"github.com/R-M-Tejaswini/slack-leave-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	types := r.Group("/leave-types")
	types.Use(middleware.AuthMiddleware(jwtSecret))
	{
		types.GET("", handler.GetAll)
		types.GET("/:id", handler.GetById)
		types.POST("", handler.Create)
		types.PUT("/:id", handler.Update)
		types.DELETE("/:id", handler.Delete)
	}
}
