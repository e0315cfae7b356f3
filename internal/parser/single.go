package parser

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/terraplen/internal/models"
)

func (p *AmazonParser) imageData(doc *goquery.Document) (*imageDataSchema, error) {
	script, ok := scriptContaining(doc, ImageDataScript, ImageDataMarker)
	if !ok {
		return nil, fmt.Errorf("%w: image data script not found", ErrMalformedPageData)
	}

	payload, err := p.inlineData(script, p.productDataLines)
	if err != nil {
		return nil, err
	}

	var data imageDataSchema
	if err := DecodeLenient(payload, &data); err != nil {
		return nil, fmt.Errorf("image data: %w", err)
	}
	return &data, nil
}

func (p *AmazonParser) parseSingleProduct(doc *goquery.Document, asin string) (models.Entity, error) {
	data, err := p.imageData(doc)
	if err != nil {
		return nil, err
	}
	if data.ColorImages == nil {
		return nil, fmt.Errorf("%w: image data has no colorImages", ErrMalformedPageData)
	}

	product := models.NewProduct(asin)
	if product.ASIN == "" {
		product.ASIN = data.ColorToAsin[initialColorImages].Asin
	}

	product.Title = p.extractTitle(doc)
	if product.Title == "" {
		// the variation image block still carries a title on most pages
		if block, err := p.imageBlock(doc); err == nil {
			product.Title = block.Title
		}
	}

	product.Images = imagesToModel(data.ColorImages[initialColorImages])
	product.Videos = videosToModel(data.Videos)
	product.HeroImages = imagesToModel(data.HeroImage[initialColorImages])
	product.HeroVideos = videosToModel(data.HeroVideo[initialColorImages])

	return product, nil
}

func (p *AmazonParser) parseMovie(doc *goquery.Document, asin string) (models.Entity, error) {
	data, err := p.imageData(doc)
	if err != nil {
		return nil, err
	}

	variations, current := p.mediaVariations(doc, asin)

	return &models.Movie{
		ASIN:             asin,
		Title:            p.extractTitle(doc),
		Images:           imagesToModel(data.ColorImages[initialColorImages]),
		Videos:           videosToModel(data.Videos),
		Variations:       variations,
		CurrentVariation: current,
	}, nil
}

func (p *AmazonParser) parseBook(doc *goquery.Document, asin string) (models.Entity, error) {
	script, ok := scriptContaining(doc, BooksTwisterScript, BooksTwisterMarker)
	if !ok {
		return nil, fmt.Errorf("%w: books image block not found", ErrMalformedPageData)
	}

	payload, err := p.inlineData(script, p.bookDataLines)
	if err != nil {
		return nil, err
	}

	var data bookDataSchema
	if err := DecodeLenient(payload, &data); err != nil {
		return nil, fmt.Errorf("books image block: %w", err)
	}

	images := make([]models.MediaImage, 0, len(data.ImageGalleryData))
	for _, img := range data.ImageGalleryData {
		images = append(images, img.toModel())
	}

	variations, current := p.mediaVariations(doc, asin)

	return &models.Book{
		ASIN:             asin,
		Title:            p.extractTitle(doc),
		Images:           images,
		Videos:           videosToModel(data.Videos),
		Variations:       variations,
		CurrentVariation: current,
	}, nil
}
