package parser

import (
	"github.com/maltedev/terraplen/internal/models"
)

// Shapes of the JSON payloads embedded in product pages. Every key the
// extractors read is named here.

type imageSchema struct {
	Thumb   string           `json:"thumb"`
	Large   string           `json:"large"`
	HiRes   string           `json:"hiRes"`
	Variant string           `json:"variant"`
	Main    map[string][]int `json:"main"`
}

func (s imageSchema) toModel() models.MediaImage {
	return models.MediaImage{
		Thumb:   s.Thumb,
		Large:   s.Large,
		HiRes:   s.HiRes,
		Variant: s.Variant,
		Main:    s.Main,
	}
}

type videoSchema struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	ThumbURL        string `json:"thumbUrl"`
	DurationSeconds int    `json:"durationSeconds"`
	LanguageCode    string `json:"languageCode"`
	IsHeroVideo     bool   `json:"isHeroVideo"`
}

func (s videoSchema) toModel() models.Video {
	return models.Video{
		Title:           s.Title,
		URL:             s.URL,
		ThumbURL:        s.ThumbURL,
		DurationSeconds: s.DurationSeconds,
		LanguageCode:    s.LanguageCode,
		IsHero:          s.IsHeroVideo,
	}
}

// imageBlockSchema is the payload of the variation image block script.
type imageBlockSchema struct {
	Title            string                   `json:"title"`
	LandingAsinColor string                   `json:"landingAsinColor"`
	VisualDimensions []string                 `json:"visualDimensions"`
	ColorImages      map[string][]imageSchema `json:"colorImages"`
	HeroImages       map[string][]imageSchema `json:"heroImages"`
	HeroVideos       map[string][]videoSchema `json:"heroVideos"`
	Videos           []videoSchema            `json:"videos"`
}

// twisterSchema is the dataToReturn object of the twister initializer.
type twisterSchema struct {
	ParentAsin             string              `json:"parentAsin"`
	CurrentAsin            string              `json:"currentAsin"`
	Dimensions             []string            `json:"dimensions"`
	VariationValues        map[string][]string `json:"variationValues"`
	VariationDisplayLabels map[string]string   `json:"variationDisplayLabels"`
	DimensionToAsinMap     map[string]string   `json:"dimensionToAsinMap"`
}

type colorToAsinSchema struct {
	Asin string `json:"asin"`
}

// imageDataSchema is the filtered `var data` object of single product and
// movie pages.
type imageDataSchema struct {
	ColorImages map[string][]imageSchema     `json:"colorImages"`
	ColorToAsin map[string]colorToAsinSchema `json:"colorToAsin"`
	HeroImage   map[string][]imageSchema     `json:"heroImage"`
	HeroVideo   map[string][]videoSchema     `json:"heroVideo"`
	Videos      []videoSchema                `json:"videos"`
}

type galleryImageSchema struct {
	MainURL    string `json:"mainUrl"`
	ThumbURL   string `json:"thumbUrl"`
	Dimensions []int  `json:"dimensions"`
}

func (s galleryImageSchema) toModel() models.MediaImage {
	img := models.MediaImage{
		Thumb: s.ThumbURL,
		Large: s.MainURL,
	}
	if s.MainURL != "" && len(s.Dimensions) >= 2 {
		img.Main = map[string][]int{s.MainURL: s.Dimensions}
	}
	return img
}

// bookDataSchema is the filtered `var data` object of the books image block.
type bookDataSchema struct {
	ImageGalleryData []galleryImageSchema `json:"imageGalleryData"`
	Videos           []videoSchema        `json:"videos"`
}

// primeVideoSchema is the bootstrap template of Prime Video detail pages.
type primeVideoSchema struct {
	Props struct {
		State struct {
			PageTitleID string `json:"pageTitleId"`
			Detail      struct {
				HeaderDetail map[string]primeVideoHeaderSchema `json:"headerDetail"`
			} `json:"detail"`
			Action struct {
				ATF map[string]primeVideoActionSchema `json:"atf"`
			} `json:"action"`
			Seasons map[string][]primeVideoSeasonSchema `json:"seasons"`
		} `json:"state"`
		RequestContext struct {
			Realm     string `json:"realm"`
			Locale    string `json:"locale"`
			Territory string `json:"territory"`
		} `json:"requestContext"`
	} `json:"props"`
}

type primeVideoHeaderSchema struct {
	EntityType string `json:"entityType"`
	Title      string `json:"title"`
	ASIN       string `json:"asin"`
}

type primeVideoActionSchema struct {
	AcquisitionActions struct {
		SVOD *struct {
			Label string `json:"label"`
		} `json:"svod"`
		MoreWaysToWatch *struct {
			Children []struct {
				Type  string `json:"type"`
				Label string `json:"label"`
			} `json:"children"`
		} `json:"moreWaysToWatch"`
	} `json:"acquisitionActions"`
}

type primeVideoSeasonSchema struct {
	SequenceNumber int    `json:"sequenceNumber"`
	TitleID        string `json:"titleID"`
	DisplayText    string `json:"displayText"`
	Href           string `json:"href"`
	ReleaseDate    string `json:"releaseDate"`
}

const (
	primeVideoMovie    = "Movie"
	primeVideoTVShow   = "TV Show"
	primeVideoPrime    = "PRIME"
	primeVideoSVOD     = "SVOD"
	seasonReleaseDates = "2006/01/02"
)

func imagesToModel(in []imageSchema) []models.MediaImage {
	out := make([]models.MediaImage, 0, len(in))
	for _, img := range in {
		out = append(out, img.toModel())
	}
	return out
}

func videosToModel(in []videoSchema) []models.Video {
	out := make([]models.Video, 0, len(in))
	for _, v := range in {
		out = append(out, v.toModel())
	}
	return out
}
