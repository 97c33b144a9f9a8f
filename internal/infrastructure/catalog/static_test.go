package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/ebook-storefront/internal/domain/repository"
)

func TestStaticCatalogHasUniqueIDs(t *testing.T) {
	s := NewStatic()
	list := s.List()
	require.Len(t, list, 6)

	seen := map[string]bool{}
	for _, p := range list {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.ContentRef)
		assert.Positive(t, p.Price)
	}
}

func TestStaticListReturnsCopies(t *testing.T) {
	s := NewStatic()
	list := s.List()
	list[0].Title = "changed"
	list[0].Features[0] = "changed"

	p, err := s.GetByID(list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Mastering Price Action", p.Title)
	assert.Equal(t, "200+ pages of content", p.Features[0])
}

func TestStaticGetByIDUnknown(t *testing.T) {
	_, err := NewStatic().GetByID("nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStaticSearch(t *testing.T) {
	s := NewStatic()

	res, err := s.Search(context.Background(), "FIBONACCI", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "scalping-fibonacci", res[0].ID)

	res, err = s.Search(context.Background(), "backtesting", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "complete-trading-system", res[0].ID)

	res, err = s.Search(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}
