package parser

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/terraplen/internal/models"
)

func category(name string, visual bool, values ...string) models.Category {
	c := models.Category{Name: name, DisplayName: name, IsVisual: visual}
	for i, v := range values {
		c.Variations = append(c.Variations, models.Variation{Name: v, Value: i})
	}
	return c
}

func TestCombinationsOrder(t *testing.T) {
	categories := []models.Category{
		category("color", true, "a", "b", "c"),
		category("size", false, "a", "b"),
	}

	var got [][]string
	for combo := range Combinations(categories) {
		got = append(got, combo.Names())
	}

	assert.Equal(t, [][]string{
		{"a", "a"}, {"a", "b"},
		{"b", "a"}, {"b", "b"},
		{"c", "a"}, {"c", "b"},
	}, got)
}

func TestCombinationsSingleCategory(t *testing.T) {
	combos := slices.Collect(Combinations([]models.Category{category("color", true, "a", "b", "c")}))

	require.Len(t, combos, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, models.VariantCombination{
			{Variation: models.Variation{Name: name, Value: i}, IsVisual: true},
		}, combos[i])
	}
}

func TestCombinationsEmpty(t *testing.T) {
	assert.Empty(t, slices.Collect(Combinations(nil)))
	assert.Empty(t, slices.Collect(Combinations([]models.Category{
		category("color", true, "a"),
		category("size", false),
	})))
}

func TestCombinationsCount(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
		want  int
	}{
		{"one by one", []int{1, 1}, 1},
		{"two by three", []int{2, 3}, 6},
		{"three axes", []int{2, 3, 4}, 24},
		{"four axes", []int{1, 5, 2, 3}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var categories []models.Category
			for i, n := range tt.sizes {
				values := make([]string, n)
				for j := range values {
					values[j] = string(rune('a' + j))
				}
				categories = append(categories, category(string(rune('p'+i)), i%2 == 0, values...))
			}

			seen := make(map[string]bool)
			for combo := range Combinations(categories) {
				require.Len(t, combo, len(categories))
				for i, choice := range combo {
					assert.Equal(t, categories[i].IsVisual, choice.IsVisual)
				}
				seen[combo.DimensionKey()] = true
			}
			assert.Len(t, seen, tt.want)
		})
	}
}

func TestCombinationsRestartable(t *testing.T) {
	seq := Combinations([]models.Category{
		category("color", true, "red", "blue"),
		category("size", false, "s", "m", "l"),
	})

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	// stopping early must not affect the next range
	for range seq {
		break
	}
	assert.Equal(t, first, slices.Collect(seq))
}
