package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/terraplen/internal/models"
)

var (
	// ErrMalformedPageData means an expected script or DOM anchor was found
	// but its content did not have the expected shape.
	ErrMalformedPageData = errors.New("malformed page data")
	// ErrUnknownProductType means no known page layout matched.
	ErrUnknownProductType = errors.New("unknown product type")
	// ErrUnknownEntityType means a Prime Video page declared an entity type
	// other than a movie or a TV show.
	ErrUnknownEntityType = errors.New("unknown entity type")
)

type Parser interface {
	ParseProductPage(html string, asin string) (models.Entity, error)
}

type extractFunc func(doc *goquery.Document, asin string) (models.Entity, error)

type AmazonParser struct {
	imageBlockPattern    *regexp.Regexp
	twisterPattern       *regexp.Regexp
	updateDivListPattern *regexp.Regexp
	inlineDataPattern    *regexp.Regexp
	productDataLines     *regexp.Regexp
	bookDataLines        *regexp.Regexp
	asinLinkPatterns     []*regexp.Regexp

	extractors map[Layout]extractFunc
}

func NewAmazonParser() *AmazonParser {
	p := &AmazonParser{
		imageBlockPattern:    regexp.MustCompile(`var obj = jQuery\.parseJSON\('([^']+)'\);`),
		twisterPattern:       regexp.MustCompile(`var dataToReturn = ([^;]+)`),
		updateDivListPattern: regexp.MustCompile(`"updateDivLists"\s*:\s*\{([^}\[]+\[[^\]]*\],?\s*)+\},`),
		inlineDataPattern:    regexp.MustCompile(`(?s)var data = (\{.+\});`),
		productDataLines:     regexp.MustCompile(`(?m)^\s*["'](?:colorImages|colorToAsin|heroImage|heroVideo|videos)["'].+$`),
		bookDataLines:        regexp.MustCompile(`(?m)^\s*["'](?:imageGalleryData|videos)["'].+$`),
		asinLinkPatterns: []*regexp.Regexp{
			regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
			regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
			regexp.MustCompile(`/gp/video/detail/([A-Z0-9]{10})`),
		},
	}

	p.extractors = map[Layout]extractFunc{
		LayoutMultiVariant: p.parseMultiVariant,
		LayoutSingle:       p.parseSingleProduct,
		LayoutBook:         p.parseBook,
		LayoutMovie:        p.parseMovie,
		LayoutKindle:       p.parseKindle,
		LayoutPrimeVideo:   p.parsePrimeVideo,
	}

	return p
}

// ParseProductPage classifies a product detail page and extracts the entity
// for its layout. asin is the requested ASIN and stands in for variations
// that point back at the page itself.
func (p *AmazonParser) ParseProductPage(html string, asin string) (models.Entity, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return p.ParseDocument(doc, asin)
}

func (p *AmazonParser) ParseDocument(doc *goquery.Document, asin string) (models.Entity, error) {
	layout, err := Classify(doc)
	if err != nil {
		return nil, err
	}

	extract, ok := p.extractors[layout]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for layout %s", ErrUnknownProductType, layout)
	}

	return extract(doc, asin)
}

func (p *AmazonParser) extractTitle(doc *goquery.Document) string {
	return cleanText(doc.Find(ProductTitle).First().Text())
}

// asinFromLink pulls the ASIN out of an outbound product link.
func (p *AmazonParser) asinFromLink(href string) string {
	for _, pattern := range p.asinLinkPatterns {
		if matches := pattern.FindStringSubmatch(href); len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}

// inlineData cuts the `var data = {...};` object out of an image block script
// and keeps only the lines holding the given keys, wrapped back into an object.
func (p *AmazonParser) inlineData(script string, keys *regexp.Regexp) (string, error) {
	matches := p.inlineDataPattern.FindStringSubmatch(script)
	if len(matches) < 2 {
		return "", fmt.Errorf("%w: inline data object not found", ErrMalformedPageData)
	}

	lines := keys.FindAllString(matches[1], -1)
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: inline data object has no known keys", ErrMalformedPageData)
	}

	return "{" + strings.Join(lines, "\n") + "}", nil
}

// scriptContaining returns the text of the first script matched by selector
// whose content includes marker.
func scriptContaining(doc *goquery.Document, selector, marker string) (string, bool) {
	script := doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), marker)
	}).First()

	if script.Length() == 0 {
		return "", false
	}
	return script.Text(), true
}
