package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/ebook-storefront/internal/container"
	handlers "github.com/oksasatya/ebook-storefront/internal/interface/http"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
)

// CatalogModule serves the public product listing.
// GET /api/products, GET /api/products/search, GET /api/products/:id
type CatalogModule struct {
	Handler *handlers.CatalogHandler
}

func NewCatalogModule(h *handlers.CatalogHandler) *CatalogModule {
	return &CatalogModule{Handler: h}
}

func (m *CatalogModule) Name() string { return "catalog" }

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil)
	searchRL := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/products", rl, m.Handler.List)
	rg.GET("/products/search", searchRL, m.Handler.Search)
	rg.GET("/products/:id", rl, m.Handler.Get)
}
