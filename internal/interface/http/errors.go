package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/ebook-storefront/internal/application"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
	"github.com/oksasatya/ebook-storefront/pkg/response"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrNotAuthenticated), errors.Is(err, application.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, application.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrNetworkUnavailable), errors.Is(err, application.ErrSessionUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the stable machine-readable kind sent in the error field.
func errorCode(err error) string {
	switch {
	case errors.Is(err, application.ErrNotAuthenticated), errors.Is(err, application.ErrInvalidSession):
		return "not_authenticated"
	case errors.Is(err, application.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, application.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, application.ErrSessionUnavailable):
		return "session_unavailable"
	case errors.Is(err, application.ErrNetworkUnavailable):
		return "network_unavailable"
	default:
		return "internal"
	}
}

func writeError(c *gin.Context, err error) {
	response.Error[any](c, statusFor(err), application.UserMessage(err), errorCode(err))
}

func clientIP(c *gin.Context) string {
	return middleware.RealIPFrom(c)
}
