package templates

import (
	"context"
	"strings"
	"time"

	"github.com/oksasatya/ebook-storefront/config"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func setLocation(d *EmailData, loc string) {
	if s := strings.TrimSpace(loc); s != "" {
		d.Location = s
	}
}

func WithLocation(loc string) Option {
	return func(d *EmailData) { setLocation(d, loc) }
}

func WithGeo(g Geo) Option {
	return func(d *EmailData) { setLocation(d, FormatGeo(g)) }
}

func WithGeoFromIP(ctx context.Context, r GeoResolver, ip string) Option {
	return func(d *EmailData) {
		if r == nil || strings.TrimSpace(ip) == "" {
			return
		}
		if g, err := r.Lookup(ctx, ip); err == nil {
			setLocation(d, FormatGeo(g))
		}
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		if t.IsZero() {
			return
		}
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

// NewBaseEmailData fills the company fields from cfg, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ string, name, email, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:    cfg.LogoURL,
		SupportURL: cfg.SupportURL,
		PrivacyURL: cfg.PrivacyURL,
		LibraryURL: cfg.LibraryURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewDownloadLinkData is the payload for a "your book is ready" email.
func NewDownloadLinkData(cfg *config.Config, email, bookID, bookTitle, downloadURL string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, DownloadLink, nameFromEmail(email), email, email, opts...)
	d.BookID = bookID
	d.BookTitle = bookTitle
	d.DownloadURL = downloadURL
	return ToMap(d)
}

func nameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
