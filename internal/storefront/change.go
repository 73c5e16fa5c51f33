package storefront

// Change names the view regions a workspace operation touched. Only those regions are repainted.
type Change struct {
	// Listing repaints the product grid and count.
	Listing bool
	// Filters resets the category and search controls.
	Filters bool
	// Cards lists products whose card indicators changed.
	Cards     []string
	Selection bool
	Favorites bool
	// Modal repaints the open details modal.
	Modal bool
	// Append lists new transcript entries.
	Append []Entry
	// Resolved replaces a pending transcript entry.
	Resolved *Entry
	// Confirm asks the visitor this question before a guarded action proceeds.
	Confirm string
}

// Merge combines two changes.
func (c Change) Merge(o Change) Change {
	c.Listing = c.Listing || o.Listing
	c.Filters = c.Filters || o.Filters
	c.Selection = c.Selection || o.Selection
	c.Favorites = c.Favorites || o.Favorites
	c.Modal = c.Modal || o.Modal
	for _, id := range o.Cards {
		if !contains(c.Cards, id) {
			c.Cards = append(c.Cards, id)
		}
	}
	c.Append = append(c.Append, o.Append...)
	if o.Resolved != nil {
		c.Resolved = o.Resolved
	}
	if o.Confirm != "" {
		c.Confirm = o.Confirm
	}
	return c
}

// Empty reports whether nothing needs repainting.
func (c Change) Empty() bool {
	return !c.Listing && !c.Filters && len(c.Cards) == 0 && !c.Selection && !c.Favorites &&
		!c.Modal && len(c.Append) == 0 && c.Resolved == nil && c.Confirm == ""
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
