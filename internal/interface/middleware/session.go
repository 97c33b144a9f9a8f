package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/ebook-storefront/internal/application"
	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
	"github.com/oksasatya/ebook-storefront/pkg/response"
)

const CtxSessionKey = "session"

type SessionLoader interface {
	Load(ctx context.Context, token string) (*entity.Session, error)
}

// LoadSession resolves the session_token cookie into an *entity.Session.
// Requests without a valid session continue anonymously.
func LoadSession(sessions SessionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		sess, err := sessions.Load(c.Request.Context(), token)
		if err == nil && sess != nil {
			c.Set(CtxSessionKey, sess)
			c.Set("userID", sess.User.ID)
		}
		c.Next()
	}
}

// RequireSession stops anonymous requests with 401. It must run after LoadSession.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c) == nil {
			response.Error[any](c, http.StatusUnauthorized, application.UserMessage(application.ErrNotAuthenticated), application.ErrNotAuthenticated.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFrom returns the request's session, or nil when anonymous.
func SessionFrom(c *gin.Context) *entity.Session {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*entity.Session)
	return sess
}
