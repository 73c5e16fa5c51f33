package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/format"
)

// Criteria narrows the visible products. Empty fields are unset.
type Criteria struct {
	Category   string
	SearchTerm string
}

// Empty reports whether neither criterion is set.
func (c Criteria) Empty() bool { return c.Category == "" && c.SearchTerm == "" }

// Listing is what the product grid shows for the current criteria.
type Listing struct {
	Products []Product
	Total    int
	// Placeholder is set while no criterion is active; the grid shows a prompt instead of products.
	Placeholder bool
}

// CountLabel is the summary line shown above a non-placeholder grid.
func (l Listing) CountLabel() string { return format.CountLabel(len(l.Products), l.Total) }

// Filter holds the current category and search criteria. The zero value has no criteria.
type Filter struct {
	criteria Criteria
}

func (f *Filter) SetCategory(value string) { f.criteria.Category = strings.TrimSpace(value) }

func (f *Filter) SetSearchTerm(value string) { f.criteria.SearchTerm = strings.TrimSpace(value) }

// Clear unsets both criteria, returning the grid to its initial placeholder.
func (f *Filter) Clear() { f.criteria = Criteria{} }

func (f *Filter) Criteria() Criteria { return f.criteria }

// VisibleProducts recomputes the listing from products on every call.
func (f *Filter) VisibleProducts(products []Product) Listing {
	l := Listing{Total: len(products)}
	if f.criteria.Empty() {
		l.Placeholder = true
		return l
	}
	fold := cases.Fold()
	term := fold.String(f.criteria.SearchTerm)
	l.Products = make([]Product, 0, len(products))
	for _, p := range products {
		if f.criteria.Category != "" && string(p.Category) != f.criteria.Category {
			continue
		}
		if term != "" && !matches(fold, p, term) {
			continue
		}
		l.Products = append(l.Products, p)
	}
	return l
}

func matches(fold cases.Caser, p Product, term string) bool {
	for _, field := range []string{p.Name, p.Brand, p.Description, string(p.Category)} {
		if strings.Contains(fold.String(field), term) {
			return true
		}
	}
	return false
}
