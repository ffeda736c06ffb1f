package employee

import (
	"github.com/R-M-Tejaswini/slack-leave-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware(jwtSecret))
	{
		employees.GET("", handler.GetAll)
		employees.GET("/:id", handler.GetById)
		employees.POST("", handler.Create)
		employees.PUT("/:id", handler.Update)
		employees.DELETE("/:id", handler.Delete)
	}
}
