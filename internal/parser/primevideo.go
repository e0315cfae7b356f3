package parser

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/terraplen/internal/models"
)

func (p *AmazonParser) parsePrimeVideo(doc *goquery.Document, asin string) (models.Entity, error) {
	script, ok := scriptContaining(doc, PrimeVideoScript, PrimeVideoMarker)
	if !ok {
		return nil, fmt.Errorf("%w: prime video template not found", ErrMalformedPageData)
	}

	var data primeVideoSchema
	if err := decodeStrict(strings.TrimSpace(script), &data); err != nil {
		return nil, fmt.Errorf("prime video template: %w", err)
	}

	state := data.Props.State
	titleID, header, err := selectHeader(state.PageTitleID, state.Detail.HeaderDetail)
	if err != nil {
		return nil, err
	}

	if header.ASIN != "" {
		asin = header.ASIN
	}
	options := primeVideoOptions(state.Action.ATF[titleID])
	ctx := data.Props.RequestContext

	switch header.EntityType {
	case primeVideoMovie:
		return &models.PrimeVideoMovie{
			ASIN:      asin,
			Title:     header.Title,
			Options:   options,
			Realm:     ctx.Realm,
			Locale:    ctx.Locale,
			Territory: ctx.Territory,
		}, nil
	case primeVideoTVShow:
		seasons, err := primeVideoSeasons(state.Seasons[titleID])
		if err != nil {
			return nil, err
		}
		return &models.PrimeVideoTV{
			ASIN:      asin,
			Title:     header.Title,
			Options:   options,
			Realm:     ctx.Realm,
			Locale:    ctx.Locale,
			Territory: ctx.Territory,
			Seasons:   seasons,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, header.EntityType)
	}
}

// selectHeader picks the page's own title from the header map, falling back
// to the first key in sorted order.
func selectHeader(pageTitleID string, headers map[string]primeVideoHeaderSchema) (string, primeVideoHeaderSchema, error) {
	if header, ok := headers[pageTitleID]; ok {
		return pageTitleID, header, nil
	}

	keys := slices.Sorted(maps.Keys(headers))
	if len(keys) == 0 {
		return "", primeVideoHeaderSchema{}, fmt.Errorf("%w: prime video header detail is empty", ErrMalformedPageData)
	}
	return keys[0], headers[keys[0]], nil
}

func primeVideoOptions(actions primeVideoActionSchema) []models.PrimeVideoOption {
	options := make([]models.PrimeVideoOption, 0)

	if svod := actions.AcquisitionActions.SVOD; svod != nil {
		options = append(options, models.PrimeVideoOption{
			Type:         primeVideoSVOD,
			Label:        svod.Label,
			Subscription: true,
		})
	}

	if more := actions.AcquisitionActions.MoreWaysToWatch; more != nil {
		for _, child := range more.Children {
			if child.Type == primeVideoPrime {
				continue
			}

			// labels read "<type> ... <price>", e.g. "Rent HD $3.99"
			tokens := strings.Fields(child.Label)
			if len(tokens) == 0 {
				continue
			}

			option := models.PrimeVideoOption{
				Type:  tokens[0],
				Label: child.Label,
				Price: tokens[len(tokens)-1],
			}
			if amount, err := FindNumber(option.Price); err == nil {
				option.Amount = amount
			}
			options = append(options, option)
		}
	}

	return options
}

func primeVideoSeasons(in []primeVideoSeasonSchema) ([]models.PrimeVideoTVSeason, error) {
	seasons := make([]models.PrimeVideoTVSeason, 0, len(in))

	for _, s := range in {
		season := models.PrimeVideoTVSeason{
			Season:  s.SequenceNumber,
			TitleID: s.TitleID,
			Title:   s.DisplayText,
			URL:     s.Href,
		}

		if s.ReleaseDate != "" {
			released, err := time.Parse(seasonReleaseDates, s.ReleaseDate)
			if err != nil {
				return nil, fmt.Errorf("%w: season %d release date: %v", ErrMalformedPageData, s.SequenceNumber, err)
			}
			season.ReleaseDate = &released
		}

		seasons = append(seasons, season)
	}

	return seasons, nil
}
