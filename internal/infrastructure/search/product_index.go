package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
)

type productDoc struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Description   string   `json:"description"`
	Price         int      `json:"price"`
	CoverImage    string   `json:"cover_image"`
	ContentRef    string   `json:"content_ref"`
	StripePriceID string   `json:"stripe_price_id"`
	Features      []string `json:"features"`
}

func toDoc(p entity.Product) productDoc {
	return productDoc{
		ID:            p.ID,
		Title:         p.Title,
		Subtitle:      p.Subtitle,
		Description:   p.Description,
		Price:         p.Price,
		CoverImage:    p.CoverImage,
		ContentRef:    p.ContentRef,
		StripePriceID: p.StripePriceID,
		Features:      p.Features,
	}
}

func (d productDoc) product() entity.Product {
	return entity.Product{
		ID:            d.ID,
		Title:         d.Title,
		Subtitle:      d.Subtitle,
		Description:   d.Description,
		Price:         d.Price,
		CoverImage:    d.CoverImage,
		ContentRef:    d.ContentRef,
		StripePriceID: d.StripePriceID,
		Features:      d.Features,
	}
}

// ProductIndex searches and indexes catalog products in Elasticsearch.
type ProductIndex struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
}

func NewProductIndex(es *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{ES: es, Index: index, Timeout: 3 * time.Second}
}

// Put indexes one product under its id.
func (x *ProductIndex) Put(ctx context.Context, p entity.Product) error {
	b, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "true"}
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", p.ID, res.Status())
	}
	return nil
}

// Search runs a multi_match over the text fields of the catalog.
func (x *ProductIndex) Search(ctx context.Context, q string, size int) ([]entity.Product, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "subtitle^2", "description", "features"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string     `json:"_id"`
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Product, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		p := h.Source.product()
		if p.ID == "" {
			p.ID = h.ID
		}
		out = append(out, p)
	}
	return out, nil
}
