package holiday

import (
	"github.com/R-M-Tejaswini/slack-leave-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	holidays := r.Group("/holidays")
	holidays.Use(middleware.AuthMiddleware(jwtSecret))
	{
		holidays.GET("", handler.GetAll)
		holidays.POST("", handler.Create)
		holidays.DELETE("/:id", handler.Delete)
	}
}
