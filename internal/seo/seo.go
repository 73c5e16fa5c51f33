package seo

import "strings"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
}

// Meta is what the page head carries.
type Meta struct {
	Title       string
	Description string
	OG          OpenGraph
	// JSONLD is the structured data script body, empty when there is nothing to describe.
	JSONLD string
}

// Storefront builds the head metadata for the catalog page.
func Storefront(title string, visible []Product) Meta {
	desc := "Browse L'Oréal products, save favorites, and get a personalized beauty routine from our advisor."
	m := Meta{
		Title:       title,
		Description: desc,
		OG: OpenGraph{
			Title:       title,
			Description: desc,
			Type:        "website",
		},
	}
	for _, p := range visible {
		if strings.TrimSpace(p.Image) != "" {
			m.OG.Image = p.Image
			break
		}
	}
	if len(visible) > 0 {
		m.JSONLD = JSON(ItemList(visible))
	}
	return m
}
