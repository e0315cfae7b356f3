package parser

import (
	"iter"

	"github.com/maltedev/terraplen/internal/models"
)

// Combinations yields the cartesian product of the categories' variations.
// The first category varies slowest. No categories, or any empty category,
// yields nothing. Every range over the result starts from the beginning.
func Combinations(categories []models.Category) iter.Seq[models.VariantCombination] {
	return func(yield func(models.VariantCombination) bool) {
		if len(categories) == 0 {
			return
		}
		for _, c := range categories {
			if len(c.Variations) == 0 {
				return
			}
		}

		indices := make([]int, len(categories))
		for {
			combo := make(models.VariantCombination, len(categories))
			for i, c := range categories {
				combo[i] = models.VariantChoice{
					Variation: c.Variations[indices[i]],
					IsVisual:  c.IsVisual,
				}
			}
			if !yield(combo) {
				return
			}

			// advance like an odometer, last category fastest
			pos := len(indices) - 1
			for pos >= 0 {
				indices[pos]++
				if indices[pos] < len(categories[pos].Variations) {
					break
				}
				indices[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}
