package repository

import (
	"context"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
)

// PurchaseSource queries the authoritative billing system for a user's purchases.
type PurchaseSource interface {
	Purchases(ctx context.Context, userID string) (entity.EntitlementSet, error)
}

// DownloadGrant is what the verifier returns for an owned product: either a
// ready URL or an object path the storefront must sign itself.
type DownloadGrant struct {
	URL       string
	Object    string
	ExpiresAt string
}

// DownloadVerifier asks the billing system whether a user owns a product.
type DownloadVerifier interface {
	VerifyDownload(ctx context.Context, productID, userID string) (*DownloadGrant, error)
}

// EntitlementCache keeps the last-known purchase list per user. Entries are a
// stale approximation and must not be used for authorization.
type EntitlementCache interface {
	Load(ctx context.Context, userID string) (entity.EntitlementSet, bool, error)
	Save(ctx context.Context, userID string, set entity.EntitlementSet) error
	Clear(ctx context.Context, userID string) error
}

// DownloadAuditRepository persists download request outcomes.
type DownloadAuditRepository interface {
	Insert(ctx context.Context, a *entity.DownloadAudit) error
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.DownloadAudit, error)
}
