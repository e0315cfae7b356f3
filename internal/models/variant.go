package models

import (
	"strconv"
	"strings"
)

// Category is one axis of variation, e.g. color or size. IsVisual marks the
// axes that select which image set is shown.
type Category struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Variations  []Variation `json:"variations"`
	IsVisual    bool        `json:"is_visual"`
}

// Variation is a concrete choice within a Category; Value is its ordinal.
type Variation struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// VariantChoice is one component of a combination, tagged with the visual
// flag of the category it came from.
type VariantChoice struct {
	Variation Variation `json:"variation"`
	IsVisual  bool      `json:"is_visual"`
}

// VariantCombination holds one choice per category, in category order.
type VariantCombination []VariantChoice

// VisibleName joins the names of the visual choices with a space.
func (c VariantCombination) VisibleName() string {
	names := make([]string, 0, len(c))
	for _, choice := range c {
		if choice.IsVisual {
			names = append(names, choice.Variation.Name)
		}
	}
	return strings.Join(names, " ")
}

// DimensionKey joins the ordinal values of all choices with an underscore.
func (c VariantCombination) DimensionKey() string {
	values := make([]string, len(c))
	for i, choice := range c {
		values[i] = strconv.Itoa(choice.Variation.Value)
	}
	return strings.Join(values, "_")
}

// Names returns the variation names in category order.
func (c VariantCombination) Names() []string {
	names := make([]string, len(c))
	for i, choice := range c {
		names[i] = choice.Variation.Name
	}
	return names
}
