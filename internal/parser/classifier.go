package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// Layout identifies which extraction pipeline a product page needs.
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutMultiVariant
	LayoutBook
	LayoutMovie
	LayoutSingle
	LayoutKindle
	LayoutPrimeVideo
)

func (l Layout) String() string {
	switch l {
	case LayoutMultiVariant:
		return "multi_variant"
	case LayoutBook:
		return "book"
	case LayoutMovie:
		return "movie"
	case LayoutSingle:
		return "single"
	case LayoutKindle:
		return "kindle"
	case LayoutPrimeVideo:
		return "prime_video"
	default:
		return "unknown"
	}
}

type layoutRule struct {
	layout Layout
	match  func(doc *goquery.Document) bool
}

// layoutRules are checked in order; more specific markers come first.
var layoutRules = []layoutRule{
	{LayoutMultiVariant, func(doc *goquery.Document) bool {
		return hasImageBlock(doc) && exists(doc, TwisterContainer)
	}},
	{LayoutBook, func(doc *goquery.Document) bool {
		return hasImageBlock(doc) && exists(doc, BooksSwatches) && hasScript(doc, BooksTwisterScript, BooksTwisterMarker)
	}},
	{LayoutMovie, func(doc *goquery.Document) bool {
		return hasImageBlock(doc) && exists(doc, BooksSwatches)
	}},
	{LayoutSingle, hasImageBlock},
	{LayoutKindle, func(doc *goquery.Document) bool {
		return exists(doc, KindleImageBlock)
	}},
	{LayoutPrimeVideo, func(doc *goquery.Document) bool {
		return hasScript(doc, PrimeVideoScript, PrimeVideoMarker)
	}},
}

// Classify returns the layout of a product detail page, or
// ErrUnknownProductType when none of the known anchors are present.
func Classify(doc *goquery.Document) (Layout, error) {
	for _, rule := range layoutRules {
		if rule.match(doc) {
			return rule.layout, nil
		}
	}
	return LayoutUnknown, ErrUnknownProductType
}

func hasImageBlock(doc *goquery.Document) bool {
	return hasScript(doc, ImageBlockScript, ImageBlockMarker)
}

func hasScript(doc *goquery.Document, selector, marker string) bool {
	_, ok := scriptContaining(doc, selector, marker)
	return ok
}

func exists(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
