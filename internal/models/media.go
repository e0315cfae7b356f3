package models

// MediaImage is one gallery image in every resolution the page exposes.
// Main maps image URLs to their [width, height].
type MediaImage struct {
	Thumb   string           `json:"thumb,omitempty"`
	Large   string           `json:"large,omitempty"`
	HiRes   string           `json:"hi_res,omitempty"`
	Variant string           `json:"variant,omitempty"`
	Main    map[string][]int `json:"main,omitempty"`
}

// LargestURL returns the highest resolution URL available.
func (m MediaImage) LargestURL() string {
	if m.HiRes != "" {
		return m.HiRes
	}

	best, bestArea := "", -1
	for url, size := range m.Main {
		area := 0
		if len(size) >= 2 {
			area = size[0] * size[1]
		}
		if area > bestArea || (area == bestArea && url < best) {
			best, bestArea = url, area
		}
	}
	if best != "" {
		return best
	}

	if m.Large != "" {
		return m.Large
	}
	return m.Thumb
}

type Video struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	ThumbURL        string `json:"thumb_url,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	LanguageCode    string `json:"language_code,omitempty"`
	IsHero          bool   `json:"is_hero,omitempty"`
}

// MediaVariation is an alternate edition or format of a book, e-book or movie.
type MediaVariation struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	ASIN  string `json:"asin"`
}

type Book struct {
	ASIN             string           `json:"asin"`
	Title            string           `json:"title"`
	Images           []MediaImage     `json:"images"`
	Videos           []Video          `json:"videos"`
	Variations       []MediaVariation `json:"variations"`
	CurrentVariation *MediaVariation  `json:"current_variation,omitempty"`
}

type Movie struct {
	ASIN             string           `json:"asin"`
	Title            string           `json:"title"`
	Images           []MediaImage     `json:"images"`
	Videos           []Video          `json:"videos"`
	Variations       []MediaVariation `json:"variations"`
	CurrentVariation *MediaVariation  `json:"current_variation,omitempty"`
}

type Kindle struct {
	ASIN             string           `json:"asin"`
	Title            string           `json:"title"`
	Image            MediaImage       `json:"image"`
	Variations       []MediaVariation `json:"variations"`
	CurrentVariation *MediaVariation  `json:"current_variation,omitempty"`
}

func (b *Book) Kind() Kind          { return KindBook }
func (b *Book) ProductASIN() string { return b.ASIN }

func (m *Movie) Kind() Kind          { return KindMovie }
func (m *Movie) ProductASIN() string { return m.ASIN }

func (k *Kindle) Kind() Kind          { return KindKindle }
func (k *Kindle) ProductASIN() string { return k.ASIN }
