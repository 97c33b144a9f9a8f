package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/ebook-storefront/config"
	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/ebook-storefront/pkg/mailer/templates"
)

// JobPublisher puts a JSON job on the email queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// DownloadMailer queues a download_link email for each granted download.
type DownloadMailer struct {
	Publisher JobPublisher
	Config    *config.Config
	now       func() time.Time
}

func NewDownloadMailer(pub JobPublisher, cfg *config.Config) *DownloadMailer {
	return &DownloadMailer{Publisher: pub, Config: cfg, now: time.Now}
}

func (m *DownloadMailer) NotifyDownload(ctx context.Context, u entity.User, p entity.Product, loc entity.DownloadLocation, meta RequestMeta) error {
	if m == nil || m.Publisher == nil || u.Email == "" {
		return nil
	}
	data := mailtpl.NewDownloadLinkData(m.Config, u.Email, p.ID, p.Title, loc.URL,
		mailtpl.WithExpiresAt(loc.ExpiresAt),
		mailtpl.WithIP(meta.IP),
		mailtpl.WithUserAgent(meta.UserAgent),
		mailtpl.WithTime(m.now()),
	)
	job := mailer.EmailJob{
		ID:       uuid.NewString(),
		To:       u.Email,
		Template: mailtpl.DownloadLink,
		Data:     data,
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return m.Publisher.PublishJSON(c, job)
}
