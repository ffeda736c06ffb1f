package auth

import (
	"github.com/R-M-Tejaswini/slack-leave-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.5, 5), handler.Login)
		auth.POST("/refresh", handler.RefreshToken)
		auth.GET("/me", middleware.AuthMiddleware(jwtSecret), handler.Me)
		auth.POST("/register", middleware.AuthMiddleware(jwtSecret), handler.Register)
	}
}
