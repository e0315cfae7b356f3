package parser

// DOM anchors and inline-script markers for product detail pages. A markup
// change on the storefront should only need an edit here or in schema.go.
const (
	ProductTitle = "#productTitle, #ebooksProductTitle, #title"

	// ImageBlockScript holds the variation image block JSON handed to jQuery.parseJSON.
	ImageBlockScript = "#imageBlockVariations_feature_div script"
	ImageBlockMarker = "jQuery.parseJSON"

	// ImageDataScript holds the `var data = {...}` image gallery object.
	ImageDataScript = "#imageBlock_feature_div script"
	ImageDataMarker = "var data"

	TwisterContainer = "#twisterContainer"
	TwisterScript    = "#twisterJsInitializer_feature_div script"
	TwisterMarker    = "dataToReturn"

	// BooksSwatches is the format picker shared by books, e-books and movies.
	BooksSwatches = "#tmmSwatches"
	// BooksTwisterScript only exists on print book pages.
	BooksTwisterScript = "#booksImageBlock_feature_div script"
	BooksTwisterMarker = "imageGalleryData"

	SwatchElement       = "#tmmSwatches li.swatchElement"
	SwatchLink          = "a.a-button-text"
	SwatchLabel         = "span:first-child"
	SwatchPrice         = ".a-color-base, .a-color-price"
	SelectedSwatchClass = "selected"

	KindleImageBlock   = "#ebooksImageBlock_feature_div"
	KindleImage        = "#ebooksImgBlkFront"
	DynamicImageAttr   = "data-a-dynamic-image"
	PrimeVideoScript   = `script[type="text/template"]`
	PrimeVideoMarker   = `"headerDetail"`
	initialColorImages = "initial"
)
