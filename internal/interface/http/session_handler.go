package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/internal/application"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
	"github.com/oksasatya/ebook-storefront/pkg/response"
	"github.com/oksasatya/ebook-storefront/pkg/validation"
)

type SessionHandler struct {
	Sessions     *application.SessionService
	Entitlements *application.EntitlementService
	Cookies      *helpers.Manager
	Logger       *logrus.Logger
}

func NewSessionHandler(sessions *application.SessionService, ents *application.EntitlementService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *SessionHandler {
	return &SessionHandler{Sessions: sessions, Entitlements: ents, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signInRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SignIn POST /api/session {email}
func (h *SessionHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	ctx := c.Request.Context()
	sess, token, err := h.Sessions.SignIn(ctx, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	h.Cookies.SetSession(c, token, sess.ExpiresAt)
	h.Logger.WithFields(logrus.Fields{"user_id": sess.User.ID, "ip": clientIP(c)}).Info("signed in")

	ents := h.Entitlements.ResolveEntitlements(ctx, sess.User.ID)
	response.Success(c, http.StatusOK, toSessionDTO(sess, ents), "signed in", nil)
}

// Current GET /api/session
func (h *SessionHandler) Current(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		response.Success(c, http.StatusOK, anonymousSession(), "anonymous", nil)
		return
	}
	ents := h.Entitlements.ResolveEntitlements(c.Request.Context(), sess.User.ID)
	response.Success(c, http.StatusOK, toSessionDTO(sess, ents), "session", nil)
}

// SignOut DELETE /api/session
func (h *SessionHandler) SignOut(c *gin.Context) {
	if sess := middleware.SessionFrom(c); sess != nil {
		if err := h.Sessions.SignOut(c.Request.Context(), sess); err != nil {
			h.Logger.WithError(err).WithField("user_id", sess.User.ID).Warn("sign out: session record not removed")
		}
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, anonymousSession(), "signed out", nil)
}
