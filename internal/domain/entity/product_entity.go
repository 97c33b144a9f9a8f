package entity

// Product is an e-book offered in the catalog. Catalog data is defined once
// and never mutated at runtime; callers receive copies.
type Product struct {
	ID            string
	Title         string
	Subtitle      string
	Description   string
	Price         int // whole currency units
	CoverImage    string
	ContentRef    string // object path of the downloadable file
	StripePriceID string
	Features      []string
}

// Clone returns a deep copy so the catalog table cannot be modified through it.
func (p Product) Clone() Product {
	out := p
	if p.Features != nil {
		out.Features = append([]string(nil), p.Features...)
	}
	return out
}
