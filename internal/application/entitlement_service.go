package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	repo "github.com/oksasatya/ebook-storefront/internal/domain/repository"
	"github.com/oksasatya/ebook-storefront/internal/metrics"
)

// DownloadSigner mints a time-limited URL for a stored object.
type DownloadSigner interface {
	SignedURL(ctx context.Context, object string, ttl time.Duration) (string, time.Time, error)
}

// DownloadNotifier is told about every granted download location.
type DownloadNotifier interface {
	NotifyDownload(ctx context.Context, u entity.User, p entity.Product, loc entity.DownloadLocation, meta RequestMeta) error
}

// RequestMeta carries caller details recorded alongside a download request.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// EntitlementService answers "what can this user download" and "give me a
// location for one purchased item". Only the billing verifier decides access;
// the fallback cache feeds display and nothing else.
type EntitlementService struct {
	Products  repo.ProductRepository
	Purchases repo.PurchaseSource
	Verifier  repo.DownloadVerifier
	Cache     repo.EntitlementCache
	Logger    *logrus.Logger

	Signer      DownloadSigner
	Audit       repo.DownloadAuditRepository
	Notifier    DownloadNotifier
	Metrics     *metrics.Metrics
	DownloadTTL time.Duration
}

func NewEntitlementService(products repo.ProductRepository, purchases repo.PurchaseSource, verifier repo.DownloadVerifier, cache repo.EntitlementCache, logger *logrus.Logger) *EntitlementService {
	return &EntitlementService{
		Products:    products,
		Purchases:   purchases,
		Verifier:    verifier,
		Cache:       cache,
		Logger:      logger,
		DownloadTTL: 15 * time.Minute,
	}
}

// ResolveEntitlements asks the billing system once. On failure it returns the
// last cached set for the user, or an empty set when nothing was cached. It
// never returns an error.
func (s *EntitlementService) ResolveEntitlements(ctx context.Context, userID string) entity.Entitlements {
	if userID == "" {
		return entity.Entitlements{Set: entity.NewEntitlementSet(), Source: entity.SourceNone}
	}

	set, err := s.Purchases.Purchases(ctx, userID)
	if err == nil {
		if s.Cache != nil {
			if cErr := s.Cache.Save(ctx, userID, set); cErr != nil {
				s.log().WithError(cErr).WithField("user_id", userID).Warn("entitlement cache save failed")
			}
		}
		s.Metrics.ObserveResolution(string(entity.SourceRemote))
		return entity.Entitlements{Set: set, Source: entity.SourceRemote}
	}

	s.log().WithError(err).WithField("user_id", userID).Warn("purchases lookup failed, falling back to cache")

	if s.Cache != nil {
		cached, found, cErr := s.Cache.Load(ctx, userID)
		switch {
		case cErr != nil:
			s.log().WithError(cErr).WithField("user_id", userID).Warn("entitlement cache load failed")
		case found:
			s.Metrics.ObserveResolution(string(entity.SourceCache))
			return entity.Entitlements{Set: cached, Source: entity.SourceCache}
		}
	}

	s.Metrics.ObserveResolution(string(entity.SourceNone))
	return entity.Entitlements{Set: entity.NewEntitlementSet(), Source: entity.SourceNone}
}

// Library returns the catalog products in the user's entitlement set.
func (s *EntitlementService) Library(ctx context.Context, sess *entity.Session) ([]entity.Product, entity.Entitlements) {
	if sess == nil {
		return []entity.Product{}, entity.Entitlements{Set: entity.NewEntitlementSet(), Source: entity.SourceNone}
	}
	ents := s.ResolveEntitlements(ctx, sess.User.ID)
	return ents.Set.Owned(s.Products.List()), ents
}

// ResolveDownloadLocation asks the verifier for a location for one product.
// Anonymous callers fail before any network call.
func (s *EntitlementService) ResolveDownloadLocation(ctx context.Context, sess *entity.Session, productID string, meta RequestMeta) (*entity.DownloadLocation, error) {
	if sess == nil || sess.User.ID == "" {
		s.Metrics.ObserveDownload(string(entity.OutcomeUnauthenticated))
		s.log().WithFields(logrus.Fields{"product_id": productID, "ip": meta.IP}).Info("download requested without a session")
		return nil, ErrNotAuthenticated
	}
	fields := logrus.Fields{"user_id": sess.User.ID, "product_id": productID}

	p, err := s.Products.GetByID(productID)
	if err != nil {
		s.Metrics.ObserveDownload(string(entity.OutcomeNotFound))
		s.log().WithError(err).WithFields(fields).Info("download requested for unknown product")
		return nil, ErrProductNotFound
	}

	loc, err := s.locate(ctx, sess.User.ID, p)
	outcome := entity.OutcomeGranted
	switch {
	case errors.Is(err, ErrAccessDenied):
		outcome = entity.OutcomeDenied
		s.log().WithFields(fields).Warn("download denied by verifier")
		s.dropContradictedCache(ctx, sess.User.ID, productID)
	case err != nil:
		outcome = entity.OutcomeUnavailable
		s.log().WithError(err).WithFields(fields).Error("download location unavailable")
	}

	s.Metrics.ObserveDownload(string(outcome))
	s.audit(ctx, sess.User.ID, productID, outcome, meta, err)
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		if nErr := s.Notifier.NotifyDownload(ctx, sess.User, *p, *loc, meta); nErr != nil {
			s.log().WithError(nErr).WithFields(fields).Warn("download notification failed")
		}
	}
	return loc, nil
}

func (s *EntitlementService) locate(ctx context.Context, userID string, p *entity.Product) (*entity.DownloadLocation, error) {
	grant, err := s.Verifier.VerifyDownload(ctx, p.ID, userID)
	if errors.Is(err, repo.ErrDenied) {
		return nil, fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}

	if grant.URL != "" {
		loc := &entity.DownloadLocation{ProductID: p.ID, URL: grant.URL}
		if t, pErr := time.Parse(time.RFC3339, grant.ExpiresAt); pErr == nil {
			loc.ExpiresAt = t
		}
		return loc, nil
	}

	object := grant.Object
	if object == "" {
		object = p.ContentRef
	}
	if s.Signer == nil {
		return nil, fmt.Errorf("%w: verifier granted %s without a url and no signer is configured", ErrNetworkUnavailable, p.ID)
	}
	url, exp, err := s.Signer.SignedURL(ctx, object, s.DownloadTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: sign %s: %v", ErrNetworkUnavailable, object, err)
	}
	return &entity.DownloadLocation{ProductID: p.ID, URL: url, ExpiresAt: exp}, nil
}

// dropContradictedCache clears the user's fallback set when it lists a product
// the verifier has just denied.
func (s *EntitlementService) dropContradictedCache(ctx context.Context, userID, productID string) {
	if s.Cache == nil {
		return
	}
	cached, found, err := s.Cache.Load(ctx, userID)
	if err != nil || !found || !cached.Has(productID) {
		return
	}
	if err := s.Cache.Clear(ctx, userID); err != nil {
		s.log().WithError(err).WithField("user_id", userID).Warn("entitlement cache clear failed")
		return
	}
	s.log().WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).Info("cached entitlements dropped after denial")
}

func (s *EntitlementService) audit(ctx context.Context, userID, productID string, outcome entity.DownloadOutcome, meta RequestMeta, cause error) {
	if s.Audit == nil {
		return
	}
	a := &entity.DownloadAudit{
		UserID:    userID,
		ProductID: productID,
		Outcome:   outcome,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}
	if cause != nil {
		a.Detail = cause.Error()
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Audit.Insert(c, a); err != nil {
		s.Metrics.ObserveAuditFailure()
		s.log().WithError(err).WithField("user_id", userID).Warn("download audit insert failed")
	}
}

// DownloadHistory lists the caller's recent download requests.
func (s *EntitlementService) DownloadHistory(ctx context.Context, sess *entity.Session, limit int) ([]entity.DownloadAudit, error) {
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	if s.Audit == nil {
		return []entity.DownloadAudit{}, nil
	}
	return s.Audit.ListByUser(ctx, sess.User.ID, limit)
}

func (s *EntitlementService) log() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
