package models

import (
	"time"
)

// Kind tags the concrete entity returned for a product detail page.
type Kind string

const (
	KindProduct           Kind = "product"
	KindProductVariations Kind = "product_variations"
	KindBook              Kind = "book"
	KindKindle            Kind = "kindle"
	KindMovie             Kind = "movie"
	KindPrimeVideoMovie   Kind = "prime_video_movie"
	KindPrimeVideoTV      Kind = "prime_video_tv"
)

// Entity is implemented by every normalized page entity.
type Entity interface {
	Kind() Kind
	ProductASIN() string
}

type Product struct {
	ASIN       string             `json:"asin"`
	Title      string             `json:"title"`
	Variation  VariantCombination `json:"variation,omitempty"`
	Images     []MediaImage       `json:"images"`
	Videos     []Video            `json:"videos"`
	HeroImages []MediaImage       `json:"hero_images,omitempty"`
	HeroVideos []Video            `json:"hero_videos,omitempty"`
}

// ProductVariations is a variant family. Landing points into Products and is
// nil when the page's landing key had no concrete variant.
type ProductVariations struct {
	Title      string     `json:"title"`
	Products   []Product  `json:"products"`
	Landing    *Product   `json:"landing,omitempty"`
	ParentASIN string     `json:"parent_asin"`
	Categories []Category `json:"categories"`
}

type ScrapeResult struct {
	Kind    Kind   `json:"kind,omitempty"`
	Entity  Entity `json:"entity,omitempty"`
	Error   *Error `json:"error,omitempty"`
	Success bool   `json:"success"`
}

type Error struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
	URL     string    `json:"url,omitempty"`
}

func NewProduct(asin string) *Product {
	return &Product{
		ASIN:   asin,
		Images: make([]MediaImage, 0),
		Videos: make([]Video, 0),
	}
}

func (p *Product) Kind() Kind          { return KindProduct }
func (p *Product) ProductASIN() string { return p.ASIN }

func (v *ProductVariations) Kind() Kind          { return KindProductVariations }
func (v *ProductVariations) ProductASIN() string { return v.ParentASIN }

// Find returns the product with the given ASIN.
func (v *ProductVariations) Find(asin string) (*Product, bool) {
	for i := range v.Products {
		if v.Products[i].ASIN == asin {
			return &v.Products[i], true
		}
	}
	return nil, false
}

// Validate reports problems that make an entity unusable for callers.
func (v *ProductVariations) Validate() []string {
	var errors []string

	if v.ParentASIN == "" {
		errors = append(errors, "parent ASIN is required")
	}

	if len(v.Products) == 0 {
		errors = append(errors, "at least one product is required")
	}

	if v.Landing != nil {
		if _, ok := v.Find(v.Landing.ASIN); !ok {
			errors = append(errors, "landing product is not part of products")
		}
	}

	return errors
}

// NewResult wraps an entity for transport.
func NewResult(e Entity) *ScrapeResult {
	return &ScrapeResult{
		Kind:    e.Kind(),
		Entity:  e,
		Success: true,
	}
}

// NewErrorResult wraps a failed scrape for transport.
func NewErrorResult(code string, err error, url string) *ScrapeResult {
	return &ScrapeResult{
		Error: &Error{
			Code:    code,
			Message: err.Error(),
			Time:    time.Now(),
			URL:     url,
		},
	}
}
