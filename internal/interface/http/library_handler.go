package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/internal/application"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
	"github.com/oksasatya/ebook-storefront/pkg/response"
	"github.com/oksasatya/ebook-storefront/pkg/validation"
)

type LibraryHandler struct {
	Entitlements *application.EntitlementService
	Logger       *logrus.Logger
}

func NewLibraryHandler(ents *application.EntitlementService, logger *logrus.Logger) *LibraryHandler {
	return &LibraryHandler{Entitlements: ents, Logger: logger}
}

type historyQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// List GET /api/library
func (h *LibraryHandler) List(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	owned, ents := h.Entitlements.Library(c.Request.Context(), sess)
	response.Success(c, http.StatusOK, gin.H{
		"products":  toProductDTOs(owned),
		"purchases": ents.Set.IDs(),
		"source":    ents.Source,
		"stale":     ents.Stale(),
	}, "library", gin.H{"count": len(owned)})
}

// Download POST /api/library/:id/download
func (h *LibraryHandler) Download(c *gin.Context) {
	var uri productURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid product id", validation.ToDetails(err))
		return
	}
	meta := application.RequestMeta{IP: clientIP(c), UserAgent: c.GetHeader("User-Agent")}
	loc, err := h.Entitlements.ResolveDownloadLocation(c.Request.Context(), middleware.SessionFrom(c), uri.ID, meta)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDownloadDTO(loc), "download ready", nil)
}

// History GET /api/library/downloads
func (h *LibraryHandler) History(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	rows, err := h.Entitlements.DownloadHistory(c.Request.Context(), middleware.SessionFrom(c), q.Limit)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.Logger.WithError(err).Error("download history failed")
		}
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"downloads": toAuditDTOs(rows)}, "download history", gin.H{"count": len(rows)})
}
