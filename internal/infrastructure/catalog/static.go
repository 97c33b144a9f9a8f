package catalog

import (
	"context"
	"strings"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/internal/domain/repository"
)

var books = []entity.Product{
	{
		ID:            "mastering-price-action",
		Title:         "Mastering Price Action",
		Subtitle:      "Complete Guide to Chart Patterns",
		Description:   "Learn to read market movements like a pro. This comprehensive guide covers candlestick patterns, support & resistance, and advanced price action strategies used by professional traders.",
		Price:         49,
		CoverImage:    "https://images.unsplash.com/photo-1611974765270-ca1258634369?w=600&h=800&fit=crop",
		ContentRef:    "books/mastering-price-action.pdf",
		StripePriceID: "price_1234567890",
		Features: []string{
			"200+ pages of content",
			"50+ chart examples",
			"Trading checklists",
			"Risk management strategies",
		},
	},
	{
		ID:            "risk-management-blueprint",
		Title:         "Risk Management Blueprint",
		Subtitle:      "Protect Your Capital & Grow Consistently",
		Description:   "The missing piece in most traders' success. Learn position sizing, portfolio risk, and psychological discipline to survive and thrive in the markets.",
		Price:         39,
		CoverImage:    "https://images.unsplash.com/photo-1590283603385-17ffb3a7f29f?w=600&h=800&fit=crop",
		ContentRef:    "books/risk-management-blueprint.pdf",
		StripePriceID: "price_1234567891",
		Features: []string{
			"Position sizing calculators",
			"Portfolio allocation strategies",
			"Trading journal templates",
			"Psychology exercises",
		},
	},
	{
		ID:            "scalping-fibonacci",
		Title:         "Scalping with Fibonacci",
		Subtitle:      "Precision Entry & Exit Points",
		Description:   "Master the art of scalping using Fibonacci retracements and extensions. Learn to identify high-probability setups in any market condition.",
		Price:         59,
		CoverImage:    "https://images.unsplash.com/photo-1642543492481-44e81e3914a7?w=600&h=800&fit=crop",
		ContentRef:    "books/scalping-fibonacci.pdf",
		StripePriceID: "price_1234567892",
		Features: []string{
			"Fibonacci trading strategies",
			"Time zone analysis",
			"Multiple timeframe approach",
			"Live trade examples",
		},
	},
	{
		ID:            "forex-psychology-mastery",
		Title:         "Forex Psychology Mastery",
		Subtitle:      "Develop the Winning Trader Mindset",
		Description:   "Overcome fear, greed, and emotional trading. Build the mental toughness required for consistent profitability in the forex market.",
		Price:         45,
		CoverImage:    "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=600&h=800&fit=crop",
		ContentRef:    "books/forex-psychology-mastery.pdf",
		StripePriceID: "price_1234567893",
		Features: []string{
			"Mindset transformation exercises",
			"Emotional control techniques",
			"Trading routine templates",
			"Performance tracking systems",
		},
	},
	{
		ID:            "advanced-technical-analysis",
		Title:         "Advanced Technical Analysis",
		Subtitle:      "Professional Chart Reading Skills",
		Description:   "Take your technical analysis to the next level. Learn advanced indicators, market structure, and multi-timeframe analysis from institutional traders.",
		Price:         69,
		CoverImage:    "https://images.unsplash.com/photo-1554224155-8d04cb21cd6c?w=600&h=800&fit=crop",
		ContentRef:    "books/advanced-technical-analysis.pdf",
		StripePriceID: "price_1234567894",
		Features: []string{
			"Advanced indicator combinations",
			"Market structure analysis",
			"Institutional trading concepts",
			"Algorithmic trading basics",
		},
	},
	{
		ID:            "complete-trading-system",
		Title:         "Complete Trading System",
		Subtitle:      "From Setup to Execution",
		Description:   "A complete, tested trading system you can implement immediately. Includes entry rules, exit strategies, and trade management protocols.",
		Price:         89,
		CoverImage:    "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=600&h=800&fit=crop",
		ContentRef:    "books/complete-trading-system.pdf",
		StripePriceID: "price_1234567895",
		Features: []string{
			"Complete trading rules",
			"Backtesting results",
			"Trade management protocols",
			"Performance metrics",
		},
	},
}

// Static serves the built-in catalog table.
type Static struct {
	products []entity.Product
	byID     map[string]int
}

// NewStatic returns the built-in catalog. Passing products overrides the table (tests).
func NewStatic(products ...entity.Product) *Static {
	if len(products) == 0 {
		products = books
	}
	s := &Static{products: products, byID: make(map[string]int, len(products))}
	for i, p := range products {
		s.byID[p.ID] = i
	}
	return s
}

func (s *Static) List() []entity.Product {
	out := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	return out
}

func (s *Static) GetByID(id string) (*entity.Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := s.products[i].Clone()
	return &p, nil
}

// Search is a case-insensitive substring match over title, subtitle,
// description and features. Used when Elasticsearch is not available.
func (s *Static) Search(_ context.Context, q string, size int) ([]entity.Product, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if size <= 0 || size > 50 {
		size = 10
	}
	out := make([]entity.Product, 0)
	for _, p := range s.products {
		if len(out) == size {
			break
		}
		if q == "" || matches(p, q) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func matches(p entity.Product, q string) bool {
	fields := append([]string{p.Title, p.Subtitle, p.Description}, p.Features...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

var (
	_ repository.ProductRepository = (*Static)(nil)
	_ repository.ProductSearcher   = (*Static)(nil)
)
