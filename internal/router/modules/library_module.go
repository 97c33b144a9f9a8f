package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/ebook-storefront/internal/container"
	handlers "github.com/oksasatya/ebook-storefront/internal/interface/http"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
)

// LibraryModule serves owned books and download locations.
type LibraryModule struct {
	Handler *handlers.LibraryHandler
}

func NewLibraryModule(h *handlers.LibraryHandler) *LibraryModule {
	return &LibraryModule{Handler: h}
}

func (m *LibraryModule) Name() string { return "library" }

func (m *LibraryModule) Register(rg *gin.RouterGroup) {
	rg.GET("/library", m.Handler.List)

	// anonymous download requests still reach the handler so they are
	// counted and answered with the sign-in prompt
	downloadLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil)
	rg.POST("/library/:id/download", downloadLimiter, m.Handler.Download)

	auth := rg.Group("/library")
	auth.Use(middleware.RequireSession())
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/downloads", m.Handler.History)
	}
}
