package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/ebook-storefront/internal/container"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar, rate-limited per IP; scrapers on private networks are not limited
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
