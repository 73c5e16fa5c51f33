package shopper

import "github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/catalog"

// SelectionEntry is a product picked for the routine request.
type SelectionEntry struct {
	ProductID string
	Name      string
	Brand     string
	Category  catalog.Category
}

// SelectionSnapshot captures the fields a selection entry keeps from a product.
func SelectionSnapshot(p catalog.Product) SelectionEntry {
	return SelectionEntry{ProductID: p.ID, Name: p.Name, Brand: p.Brand, Category: p.Category}
}

// Selection is an insertion-ordered set keyed by product id. The zero value is empty.
type Selection struct {
	entries []SelectionEntry
}

// Toggle removes productID if present, otherwise adds snapshot under productID.
// It reports whether the product is selected afterwards.
func (s *Selection) Toggle(productID string, snapshot SelectionEntry) bool {
	if i := s.index(productID); i >= 0 {
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		return false
	}
	snapshot.ProductID = productID
	s.entries = append(s.entries, snapshot)
	return true
}

// Add inserts entry unless its product is already selected. It reports whether anything changed.
func (s *Selection) Add(entry SelectionEntry) bool {
	if s.Contains(entry.ProductID) {
		return false
	}
	s.entries = append(s.entries, entry)
	return true
}

func (s *Selection) Contains(productID string) bool { return s.index(productID) >= 0 }

// List returns a copy in insertion order.
func (s *Selection) List() []SelectionEntry {
	return append([]SelectionEntry(nil), s.entries...)
}

func (s *Selection) Len() int { return len(s.entries) }

func (s *Selection) Empty() bool { return len(s.entries) == 0 }

func (s *Selection) index(productID string) int {
	for i, e := range s.entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}
