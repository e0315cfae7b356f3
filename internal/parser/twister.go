package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/terraplen/internal/models"
)

func (p *AmazonParser) imageBlock(doc *goquery.Document) (*imageBlockSchema, error) {
	script, ok := scriptContaining(doc, ImageBlockScript, ImageBlockMarker)
	if !ok {
		return nil, fmt.Errorf("%w: image block script not found", ErrMalformedPageData)
	}

	matches := p.imageBlockPattern.FindStringSubmatch(script)
	if len(matches) < 2 {
		return nil, fmt.Errorf("%w: image block payload not found", ErrMalformedPageData)
	}

	var block imageBlockSchema
	if err := DecodeLenient(matches[1], &block); err != nil {
		return nil, fmt.Errorf("image block: %w", err)
	}
	return &block, nil
}

func (p *AmazonParser) twister(doc *goquery.Document) (*twisterSchema, error) {
	script, ok := scriptContaining(doc, TwisterScript, TwisterMarker)
	if !ok {
		return nil, fmt.Errorf("%w: twister script not found", ErrMalformedPageData)
	}

	matches := p.twisterPattern.FindStringSubmatch(script)
	if len(matches) < 2 {
		return nil, fmt.Errorf("%w: twister payload not found", ErrMalformedPageData)
	}

	// updateDivLists is large and unused
	payload := matches[1]
	if loc := p.updateDivListPattern.FindStringIndex(payload); loc != nil {
		payload = payload[:loc[0]] + payload[loc[1]:]
	}

	var twister twisterSchema
	if err := DecodeLenient(payload, &twister); err != nil {
		return nil, fmt.Errorf("twister: %w", err)
	}

	switch {
	case len(twister.Dimensions) == 0:
		return nil, fmt.Errorf("%w: twister has no dimensions", ErrMalformedPageData)
	case twister.VariationValues == nil:
		return nil, fmt.Errorf("%w: twister has no variationValues", ErrMalformedPageData)
	case twister.DimensionToAsinMap == nil:
		return nil, fmt.Errorf("%w: twister has no dimensionToAsinMap", ErrMalformedPageData)
	}
	return &twister, nil
}

func (p *AmazonParser) parseMultiVariant(doc *goquery.Document, asin string) (models.Entity, error) {
	image, err := p.imageBlock(doc)
	if err != nil {
		return nil, err
	}
	if image.ColorImages == nil {
		return nil, fmt.Errorf("%w: image block has no colorImages", ErrMalformedPageData)
	}

	twister, err := p.twister(doc)
	if err != nil {
		return nil, err
	}

	categories, err := buildCategories(image, twister)
	if err != nil {
		return nil, err
	}

	title := p.extractTitle(doc)
	if title == "" {
		title = image.Title
	}

	result := &models.ProductVariations{
		Title:      title,
		Products:   make([]models.Product, 0),
		ParentASIN: twister.ParentAsin,
		Categories: categories,
	}
	if result.ParentASIN == "" {
		result.ParentASIN = asin
	}

	videos := videosToModel(image.Videos)
	hasVisual := slices.ContainsFunc(categories, func(c models.Category) bool { return c.IsVisual })
	landing := -1
	for combo := range Combinations(categories) {
		text := escapeSlash(combo.VisibleName())
		dimension := escapeSlash(combo.DimensionKey())

		productASIN, ok := twister.DimensionToAsinMap[dimension]
		if !ok {
			continue
		}

		product := models.Product{
			ASIN:       productASIN,
			Title:      title,
			Variation:  combo,
			Images:     imagesToModel(lookupEscaped(image.ColorImages, text)),
			Videos:     slices.Clone(videos),
			HeroImages: imagesToModel(lookupEscaped(image.HeroImages, text)),
			HeroVideos: videosToModel(lookupEscaped(image.HeroVideos, text)),
		}

		if hasVisual && text == escapeSlash(image.LandingAsinColor) {
			if landing < 0 || (productASIN == twister.CurrentAsin && result.Products[landing].ASIN != twister.CurrentAsin) {
				landing = len(result.Products)
			}
		}
		result.Products = append(result.Products, product)
	}

	// Without a visual category every visible name is empty, so only the
	// page's current ASIN can identify the landing variant.
	if !hasVisual {
		landing = slices.IndexFunc(result.Products, func(p models.Product) bool {
			return p.ASIN != "" && p.ASIN == twister.CurrentAsin
		})
	}

	if landing >= 0 {
		result.Landing = &result.Products[landing]
	}

	return result, nil
}

// buildCategories orders the twister's variation values by its dimension list.
func buildCategories(image *imageBlockSchema, twister *twisterSchema) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(twister.Dimensions))

	for _, dim := range twister.Dimensions {
		values, ok := twister.VariationValues[dim]
		if !ok {
			return nil, fmt.Errorf("%w: no variation values for dimension %q", ErrMalformedPageData, dim)
		}

		category := models.Category{
			Name:        dim,
			DisplayName: twister.VariationDisplayLabels[dim],
			Variations:  make([]models.Variation, len(values)),
			IsVisual:    slices.Contains(image.VisualDimensions, dim),
		}
		if category.DisplayName == "" {
			category.DisplayName = dim
		}
		for i, name := range values {
			category.Variations[i] = models.Variation{Name: name, Value: i}
		}

		categories = append(categories, category)
	}

	return categories, nil
}

func escapeSlash(s string) string {
	return strings.ReplaceAll(s, "/", `\/`)
}

// lookupEscaped finds key as written in the page, where slashes may or may
// not survive escaping.
func lookupEscaped[T any](m map[string][]T, key string) []T {
	if v, ok := m[key]; ok {
		return v
	}
	return m[strings.ReplaceAll(key, `\/`, "/")]
}
