package repository

import (
	"context"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
)

// ProductRepository defines read access to the immutable catalog.
type ProductRepository interface {
	List() []entity.Product
	GetByID(id string) (*entity.Product, error)
}

// ProductSearcher runs free-text search over the catalog.
type ProductSearcher interface {
	Search(ctx context.Context, q string, size int) ([]entity.Product, error)
}
