package parser

import (
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/terraplen/internal/models"
)

// mediaVariations reads the format swatches of book, e-book and movie pages.
// The selected swatch is the page itself and takes asin; the others carry
// their ASIN in the outbound link and are dropped when it has none.
func (p *AmazonParser) mediaVariations(doc *goquery.Document, asin string) ([]models.MediaVariation, *models.MediaVariation) {
	variations := make([]models.MediaVariation, 0)
	var current *models.MediaVariation

	doc.Find(SwatchElement).Each(func(_ int, s *goquery.Selection) {
		link := s.Find(SwatchLink).First()

		variation := models.MediaVariation{
			Name:  cleanText(link.Find(SwatchLabel).First().Text()),
			Price: cleanText(s.Find(SwatchPrice).First().Text()),
		}
		if variation.Name == "" {
			variation.Name = cleanText(link.Text())
		}

		if s.HasClass(SelectedSwatchClass) {
			variation.ASIN = asin
			selected := variation
			current = &selected
		} else {
			href, _ := link.Attr("href")
			variation.ASIN = p.asinFromLink(href)
			if variation.ASIN == "" {
				return
			}
		}

		variations = append(variations, variation)
	})

	return variations, current
}

func (p *AmazonParser) parseKindle(doc *goquery.Document, asin string) (models.Entity, error) {
	img := doc.Find(KindleImageBlock).Find(KindleImage).First()
	if img.Length() == 0 {
		return nil, fmt.Errorf("%w: kindle cover image not found", ErrMalformedPageData)
	}

	image := models.MediaImage{}
	image.Large, _ = img.Attr("src")

	if dynamic, ok := img.Attr(DynamicImageAttr); ok && dynamic != "" {
		if err := json.Unmarshal([]byte(dynamic), &image.Main); err != nil {
			return nil, fmt.Errorf("%w: kindle dynamic image: %v", ErrMalformedPageData, err)
		}
	}

	variations, current := p.mediaVariations(doc, asin)

	return &models.Kindle{
		ASIN:             asin,
		Title:            p.extractTitle(doc),
		Image:            image,
		Variations:       variations,
		CurrentVariation: current,
	}, nil
}
