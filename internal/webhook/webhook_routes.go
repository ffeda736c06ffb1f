package webhook

import (
	"github.com/R-M-Tejaswini/slack-leave-app/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, signingSecret string, logger *zap.Logger) {
	slackGroup := r.Group("/slack")
	slackGroup.Use(middleware.VerifySlackSignature(signingSecret, logger))
	slackGroup.Use(middleware.RateLimitByIP(10, 20))
	slackGroup.Use(middleware.RateLimitBySlackUser(5, 10))
	{
		slackGroup.POST("/commands", handler.SlashCommand)
		slackGroup.POST("/interactions", handler.Interactions)
	}
}
