package entity

import "sort"

// EntitlementSource tells where an EntitlementSet came from.
type EntitlementSource string

const (
	SourceRemote EntitlementSource = "remote"
	SourceCache  EntitlementSource = "cache"
	SourceNone   EntitlementSource = "none"
)

// EntitlementSet is the set of product IDs a user may download.
// It is derived data; the billing system holds the authoritative copy.
type EntitlementSet map[string]struct{}

func NewEntitlementSet(ids ...string) EntitlementSet {
	s := make(EntitlementSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s EntitlementSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s EntitlementSet) Len() int { return len(s) }

// IDs returns the members sorted, so encoded output is stable.
func (s EntitlementSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Owned filters products down to members of s, preserving their order.
func (s EntitlementSet) Owned(products []Product) []Product {
	out := make([]Product, 0, len(s))
	for _, p := range products {
		if s.Has(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// Entitlements is a resolved set plus its provenance. Stale sets come from the
// fallback cache and are fit for display only; an empty SourceNone set is not stale.
type Entitlements struct {
	Set    EntitlementSet
	Source EntitlementSource
}

func (e Entitlements) Stale() bool { return e.Source == SourceCache }
