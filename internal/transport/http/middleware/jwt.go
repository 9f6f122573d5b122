package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"threads-accounts/internal/app"
	"threads-accounts/internal/transport/http/response"
)

const (
	ContextUserIDKey = "user_id"
	SessionCookie    = "jwt"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// AuthCookie resolves the caller from the session cookie.
func AuthCookie(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			response.AbortMessage(c, http.StatusUnauthorized, response.MsgUnauthorized)
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrUnauthorized) {
				response.AbortMessage(c, http.StatusUnauthorized, response.MsgUnauthorized)
				return
			}
			response.AbortMessage(c, http.StatusInternalServerError, err.Error())
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserID returns the caller id set by AuthCookie.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
