package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestSlackUserID(t *testing.T) {
	command := url.Values{"command": {"/apply_leave"}, "user_id": {"U123"}}.Encode()
	interaction := url.Values{"payload": {`{"type":"view_submission","user":{"id":"U456"}}`}}.Encode()

	assert.Equal(t, "U123", slackUserID([]byte(command)))
	assert.Equal(t, "U456", slackUserID([]byte(interaction)))
	assert.Equal(t, "", slackUserID([]byte("payload=%zz")))
	assert.Equal(t, "", slackUserID([]byte("token=abc")))
}

func TestRateLimitBySlackUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("slack_user_id", c.GetHeader("X-Test-User")) })
	r.Use(RateLimitBySlackUser(rate.Limit(0), 2))
	r.POST("/slack/commands", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(""))
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("U123"))
	assert.Equal(t, http.StatusOK, do("U123"))
	assert.Equal(t, http.StatusTooManyRequests, do("U123"))

	// Other users have their own bucket; anonymous requests fall
	// through to the IP limit alone.
	assert.Equal(t, http.StatusOK, do("U999"))
	assert.Equal(t, http.StatusOK, do(""))
}
