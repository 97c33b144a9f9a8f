package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	repo "github.com/oksasatya/ebook-storefront/internal/domain/repository"
)

// CatalogItem is a product as shown to one caller.
type CatalogItem struct {
	entity.Product
	Purchased bool
}

type CatalogService struct {
	Products repo.ProductRepository
	// Index is optional. Fallback answers when Index is nil or fails.
	Index    repo.ProductSearcher
	Fallback repo.ProductSearcher
	Logger   *logrus.Logger
}

func NewCatalogService(products repo.ProductRepository, index, fallback repo.ProductSearcher, logger *logrus.Logger) *CatalogService {
	return &CatalogService{Products: products, Index: index, Fallback: fallback, Logger: logger}
}

// List returns the catalog marked against set. A nil set marks nothing.
func (s *CatalogService) List(set entity.EntitlementSet) []CatalogItem {
	products := s.Products.List()
	out := make([]CatalogItem, 0, len(products))
	for _, p := range products {
		out = append(out, CatalogItem{Product: p, Purchased: set.Has(p.ID)})
	}
	return out
}

func (s *CatalogService) Get(id string) (*entity.Product, error) {
	p, err := s.Products.GetByID(id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *CatalogService) Search(ctx context.Context, q string, size int) ([]entity.Product, error) {
	if s.Index != nil {
		res, err := s.Index.Search(ctx, q, size)
		if err == nil {
			return res, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("q", q).Warn("catalog index search failed, using fallback")
		}
	}
	if s.Fallback == nil {
		return []entity.Product{}, nil
	}
	return s.Fallback.Search(ctx, q, size)
}
