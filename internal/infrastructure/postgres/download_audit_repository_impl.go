package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/internal/domain/repository"
)

// Querier is the subset of pgxpool.Pool used by repositories.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type DownloadAuditRepository struct {
	db Querier
}

func NewDownloadAuditRepository(db Querier) *DownloadAuditRepository {
	return &DownloadAuditRepository{db: db}
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func (r *DownloadAuditRepository) Insert(ctx context.Context, a *entity.DownloadAudit) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO download_audit (user_id, product_id, outcome, ip, user_agent, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at
	`, a.UserID, a.ProductID, string(a.Outcome), text(a.IP), text(a.UserAgent), text(a.Detail))

	return row.Scan(&a.ID, &a.CreatedAt)
}

func (r *DownloadAuditRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.DownloadAudit, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT id::text, user_id, product_id, outcome, ip, user_agent, detail, created_at
		FROM download_audit
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.DownloadAudit, 0)
	for rows.Next() {
		var (
			a                  entity.DownloadAudit
			outcome            string
			ip, ua, detailText pgtype.Text
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProductID, &outcome, &ip, &ua, &detailText, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Outcome = entity.DownloadOutcome(outcome)
		a.IP, a.UserAgent, a.Detail = ip.String, ua.String, detailText.String
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ repository.DownloadAuditRepository = (*DownloadAuditRepository)(nil)
