package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CountLabel renders the result summary shown above the product grid.
// Example: CountLabel(1, 3) => "1 of 3 products found"
func CountLabel(shown, total int) string {
	return fmt.Sprintf("%d of %d products found", shown, total)
}

// CategoryLabel turns a category value into the text shown in the filter dropdown and on cards.
// Example: CategoryLabel("men's grooming") => "Men's Grooming"
func CategoryLabel(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return "All Categories"
	}
	// Casers are stateful and must not be shared across goroutines.
	return cases.Title(language.English).String(category)
}
