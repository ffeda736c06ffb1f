package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// VerifySlackSignature authenticates inbound Slack traffic with the
// signing secret. The verifier also rejects requests whose timestamp
// is older than five minutes, which closes the replay window. The body
// is restored afterwards so handlers can parse it normally, and the
// Slack user id is stashed in the gin context for per-user limits.
func VerifySlackSignature(signingSecret string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("middleware.slack_verify")
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		verifier, err := slack.NewSecretsVerifier(c.Request.Header, signingSecret)
		if err != nil {
			log.Warn("slack signature header rejected", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if _, err := verifier.Write(body); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if err := verifier.Ensure(); err != nil {
			log.Warn("slack signature mismatch", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if id := slackUserID(body); id != "" {
			c.Set("slack_user_id", id)
		}

		c.Next()
	}
}

// slackUserID pulls the acting user out of either webhook shape: the
// user_id field of a slash command form, or user.id inside the payload
// of an interaction.
func slackUserID(body []byte) string {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return ""
	}
	if id := form.Get("user_id"); id != "" {
		return id
	}
	if payload := form.Get("payload"); payload != "" {
		var p struct {
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		}
		if json.Unmarshal([]byte(payload), &p) == nil {
			return p.User.ID
		}
	}
	return ""
}
