package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/ebook-storefront/internal/container"
	handlers "github.com/oksasatya/ebook-storefront/internal/interface/http"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
)

// SessionModule is the mock sign-in: POST, GET and DELETE /api/session.
type SessionModule struct {
	Handler *handlers.SessionHandler
}

func NewSessionModule(h *handlers.SessionHandler) *SessionModule {
	return &SessionModule{Handler: h}
}

func (m *SessionModule) Name() string { return "session" }

func (m *SessionModule) Register(rg *gin.RouterGroup) {
	signInLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/session", signInLimiter, m.Handler.SignIn)
	rg.GET("/session", m.Handler.Current)
	rg.DELETE("/session", m.Handler.SignOut)
}
