package handlers

import (
	"time"

	"github.com/oksasatya/ebook-storefront/internal/application"
	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
)

type productDTO struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Description   string   `json:"description"`
	Price         int      `json:"price"`
	CoverImage    string   `json:"cover_image"`
	StripePriceID string   `json:"stripe_price_id"`
	Features      []string `json:"features"`
	Purchased     *bool    `json:"purchased,omitempty"`
}

func toProductDTO(p entity.Product) productDTO {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return productDTO{
		ID:            p.ID,
		Title:         p.Title,
		Subtitle:      p.Subtitle,
		Description:   p.Description,
		Price:         p.Price,
		CoverImage:    p.CoverImage,
		StripePriceID: p.StripePriceID,
		Features:      features,
	}
}

func toProductDTOs(ps []entity.Product) []productDTO {
	out := make([]productDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductDTO(p))
	}
	return out
}

func toCatalogDTOs(items []application.CatalogItem) []productDTO {
	out := make([]productDTO, 0, len(items))
	for _, it := range items {
		d := toProductDTO(it.Product)
		purchased := it.Purchased
		d.Purchased = &purchased
		out = append(out, d)
	}
	return out
}

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// sessionDTO is the client's view of who is signed in and what they own.
// Stale purchases came from the fallback cache and are display-only.
type sessionDTO struct {
	User      *userDTO   `json:"user"`
	Purchases []string   `json:"purchases"`
	Source    string     `json:"source"`
	Stale     bool       `json:"stale"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func anonymousSession() sessionDTO {
	return sessionDTO{User: nil, Purchases: []string{}, Source: string(entity.SourceNone), Stale: false}
}

func toSessionDTO(sess *entity.Session, ents entity.Entitlements) sessionDTO {
	if sess == nil {
		return anonymousSession()
	}
	exp := sess.ExpiresAt
	return sessionDTO{
		User:      &userDTO{ID: sess.User.ID, Email: sess.User.Email},
		Purchases: ents.Set.IDs(),
		Source:    string(ents.Source),
		Stale:     ents.Stale(),
		ExpiresAt: &exp,
	}
}

type downloadDTO struct {
	ProductID string     `json:"product_id"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func toDownloadDTO(loc *entity.DownloadLocation) downloadDTO {
	d := downloadDTO{ProductID: loc.ProductID, URL: loc.URL}
	if !loc.ExpiresAt.IsZero() {
		exp := loc.ExpiresAt
		d.ExpiresAt = &exp
	}
	return d
}

type auditDTO struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Outcome   string    `json:"outcome"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAuditDTOs(rows []entity.DownloadAudit) []auditDTO {
	out := make([]auditDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, auditDTO{ID: r.ID, ProductID: r.ProductID, Outcome: string(r.Outcome), IP: r.IP, CreatedAt: r.CreatedAt})
	}
	return out
}
