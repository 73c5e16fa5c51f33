package catalog

import (
	"github.com/go-playground/validator/v10"
)

// Category is one of the fixed product categories.
type Category string

const (
	CategoryCleanser     Category = "cleanser"
	CategoryMoisturizer  Category = "moisturizer"
	CategorySkincare     Category = "skincare"
	CategoryHaircare     Category = "haircare"
	CategoryHairColor    Category = "hair color"
	CategoryHairStyling  Category = "hair styling"
	CategoryMakeup       Category = "makeup"
	CategoryMensGrooming Category = "men's grooming"
	CategorySuncare      Category = "suncare"
	CategoryFragrance    Category = "fragrance"
)

// Categories lists every category in the order the filter dropdown shows them.
var Categories = []Category{
	CategoryCleanser,
	CategoryMoisturizer,
	CategorySkincare,
	CategoryHaircare,
	CategoryHairColor,
	CategoryHairStyling,
	CategoryMakeup,
	CategoryMensGrooming,
	CategorySuncare,
	CategoryFragrance,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is an immutable catalog record.
type Product struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Brand       string   `json:"brand" yaml:"brand" validate:"required"`
	Category    Category `json:"category" yaml:"category" validate:"required,product_category"`
	Image       string   `json:"image" yaml:"image"`
	Description string   `json:"description" yaml:"description"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("product_category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}
