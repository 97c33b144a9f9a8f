package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/internal/application"
	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
	"github.com/oksasatya/ebook-storefront/pkg/response"
	"github.com/oksasatya/ebook-storefront/pkg/validation"
)

type CatalogHandler struct {
	Catalog      *application.CatalogService
	Entitlements *application.EntitlementService
	Logger       *logrus.Logger
}

func NewCatalogHandler(catalog *application.CatalogService, ents *application.EntitlementService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, Entitlements: ents, Logger: logger}
}

type productURI struct {
	ID string `uri:"id" binding:"required,productid"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"searchq"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

// List GET /api/products
func (h *CatalogHandler) List(c *gin.Context) {
	ents := entity.Entitlements{Set: entity.NewEntitlementSet(), Source: entity.SourceNone}
	if sess := middleware.SessionFrom(c); sess != nil {
		ents = h.Entitlements.ResolveEntitlements(c.Request.Context(), sess.User.ID)
	}
	items := h.Catalog.List(ents.Set)
	response.Success(c, http.StatusOK, gin.H{"products": toCatalogDTOs(items)}, "products", gin.H{
		"count":  len(items),
		"source": ents.Source,
		"stale":  ents.Stale(),
	})
}

// Search GET /api/products/search?q=
func (h *CatalogHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	res, err := h.Catalog.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		h.Logger.WithError(err).WithField("q", q.Q).Error("catalog search failed")
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"products": toProductDTOs(res)}, "search results", gin.H{"count": len(res), "q": q.Q})
}

// Get GET /api/products/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	var uri productURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid product id", validation.ToDetails(err))
		return
	}
	p, err := h.Catalog.Get(uri.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProductDTO(*p), "product", nil)
}
