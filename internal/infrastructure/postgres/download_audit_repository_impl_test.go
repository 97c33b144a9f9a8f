package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
)

type fakeRow struct {
	id  string
	at  time.Time
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.id
	*(dest[1].(*time.Time)) = r.at
	return nil
}

type fakeQuerier struct {
	sql  string
	args []any
	row  fakeRow
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return q.row
}

func (q *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestDownloadAuditInsert(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := &fakeQuerier{row: fakeRow{id: "a-1", at: at}}
	repo := NewDownloadAuditRepository(q)

	a := &entity.DownloadAudit{UserID: "u1", ProductID: "bookA", Outcome: entity.OutcomeDenied, IP: "10.0.0.1"}
	require.NoError(t, repo.Insert(context.Background(), a))

	assert.Equal(t, "a-1", a.ID)
	assert.Equal(t, at, a.CreatedAt)
	assert.Contains(t, q.sql, "INSERT INTO download_audit")
	require.Len(t, q.args, 6)
	assert.Equal(t, "denied", q.args[2])
	assert.Equal(t, pgtype.Text{String: "10.0.0.1", Valid: true}, q.args[3])
	assert.Equal(t, pgtype.Text{}, q.args[4], "empty strings are stored as NULL")
}

func TestDownloadAuditInsertError(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: errors.New("conn refused")}}
	err := NewDownloadAuditRepository(q).Insert(context.Background(), &entity.DownloadAudit{})
	assert.EqualError(t, err, "conn refused")
}
