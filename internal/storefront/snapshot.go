package storefront

import (
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/catalog"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/shopper"
)

// Snapshot is a consistent copy of a workspace for rendering.
type Snapshot struct {
	Criteria           catalog.Criteria
	Listing            catalog.Listing
	CatalogUnavailable bool
	Selection          []shopper.SelectionEntry
	Favorites          []shopper.FavoriteEntry
	Transcript         []Entry
	// Modal is the product shown in the details modal, nil when closed.
	Modal *catalog.Product

	selected  map[string]bool
	favorited map[string]bool
}

func (s *Snapshot) index() {
	s.selected = make(map[string]bool, len(s.Selection))
	for _, e := range s.Selection {
		s.selected[e.ProductID] = true
	}
	s.favorited = make(map[string]bool, len(s.Favorites))
	for _, e := range s.Favorites {
		s.favorited[e.ProductID] = true
	}
}

func (s Snapshot) IsSelected(productID string) bool { return s.selected[productID] }

func (s Snapshot) IsFavorite(productID string) bool { return s.favorited[productID] }

// CanGenerateRoutine reports whether the routine action is enabled.
func (s Snapshot) CanGenerateRoutine() bool { return len(s.Selection) > 0 }

// Visible returns the product if its card is in the current listing.
func (s Snapshot) Visible(productID string) (catalog.Product, bool) {
	return findProduct(s.Listing.Products, productID)
}
