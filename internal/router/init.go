package router

import (
	"github.com/oksasatya/ebook-storefront/internal/application"
	"github.com/oksasatya/ebook-storefront/internal/container"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/catalog"
	pginfra "github.com/oksasatya/ebook-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/rediscache"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/search"
	handlers "github.com/oksasatya/ebook-storefront/internal/interface/http"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
	"github.com/oksasatya/ebook-storefront/internal/router/modules"
)

type StorefrontDeps struct {
	Catalog      *application.CatalogService
	Entitlements *application.EntitlementService
	Sessions     *application.SessionService

	CatalogHandler *handlers.CatalogHandler
	SessionHandler *handlers.SessionHandler
	LibraryHandler *handlers.LibraryHandler
}

func buildStorefrontDeps() StorefrontDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	static := catalog.NewStatic()

	catalogSvc := application.NewCatalogService(static, nil, static, logger)
	if es := container.GetES(); es != nil {
		catalogSvc.Index = search.NewProductIndex(es, cfg.ESProductsIndex)
	}

	bc := container.GetBilling()
	ents := application.NewEntitlementService(static, bc, bc, nil, logger)
	if rdb := container.GetRedis(); rdb != nil {
		ents.Cache = rediscache.NewEntitlementCache(rdb, cfg.EntitlementCacheTTL)
	}
	if signer := container.GetGCSSigner(); signer != nil {
		ents.Signer = signer
	}
	if pool := container.GetPGPool(); pool != nil {
		ents.Audit = pginfra.NewDownloadAuditRepository(pool)
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		ents.Notifier = application.NewDownloadMailer(pub, cfg)
	}
	ents.Metrics = container.GetMetrics()
	ents.DownloadTTL = cfg.DownloadURLTTL

	sessions := application.NewSessionService(container.GetJWT(), container.GetRedis(), logger)

	return StorefrontDeps{
		Catalog:        catalogSvc,
		Entitlements:   ents,
		Sessions:       sessions,
		CatalogHandler: handlers.NewCatalogHandler(catalogSvc, ents, logger),
		SessionHandler: handlers.NewSessionHandler(sessions, ents, logger, cfg.CookieDomain, cfg.CookieSecure),
		LibraryHandler: handlers.NewLibraryHandler(ents, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildStorefrontDeps()

	r.Use(middleware.LoadSession(deps.Sessions))
	r.Add(modules.NewCatalogModule(deps.CatalogHandler))
	r.Add(modules.NewSessionModule(deps.SessionHandler))
	r.Add(modules.NewLibraryModule(deps.LibraryHandler))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
