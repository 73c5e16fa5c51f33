package seo

import (
	"encoding/json"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Product is the subset of a catalog record described in structured data.
type Product struct {
	ID          string
	Name        string
	Brand       string
	Category    string
	Image       string
	Description string
}

// ProductSchema returns a schema.org Product.
func ProductSchema(p Product) map[string]any {
	m := map[string]any{
		"@type":     "Product",
		"productID": p.ID,
		"name":      p.Name,
		"brand": map[string]any{
			"@type": "Brand",
			"name":  p.Brand,
		},
	}
	if p.Category != "" {
		m["category"] = p.Category
	}
	if p.Image != "" {
		m["image"] = p.Image
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	return m
}

// ItemList wraps products in a schema.org ItemList, positions starting at 1.
func ItemList(products []Product) map[string]any {
	el := make([]map[string]any, 0, len(products))
	for i, p := range products {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     ProductSchema(p),
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"numberOfItems":   len(products),
		"itemListElement": el,
	}
}
