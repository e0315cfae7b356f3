package parser

import "strings"

const imageBlockFixture = `<div id="imageBlockVariations_feature_div">
<script type="text/javascript">
P.when('A').register("ImageBlockATF", function(A){
var obj = jQuery.parseJSON('{"title":"Trail Runner","landingAsinColor":"{{LANDING}}","visualDimensions":["color_name"],"colorImages":{"Red":[{"large":"red.jpg","hiRes":"red-hi.jpg","variant":"MAIN"}],"Blue":[{"large":"blue.jpg","variant":"MAIN"}],"Green":[{"large":"green.jpg","variant":"MAIN"}]},"heroImages":{"Red":[{"large":"red-hero.jpg"}]},"heroVideos":{},"videos":[{"title":"Intro","url":"intro.mp4","durationSeconds":31}]}');
return obj;
});
</script>
</div>`

const twisterFixture = `<div id="twisterContainer"><div id="variation_color_name"></div></div>
<div id="twisterJsInitializer_feature_div">
<script type="text/javascript">
P.register('twister-js-init-dpx-data', function() {
var dataToReturn = {
  'parentAsin' : 'B0PARENT00',
  'currentAsin' : '{{CURRENT}}',
  "updateDivLists" : {"feature_div" : ["price", "availability"], "image_block" : ["main"]},
  'dimensions' : ['color_name', 'size_name'],
  'variationDisplayLabels' : {'color_name' : 'Colour', 'size_name' : 'Size'},
  'variationValues' : {
    'color_name' : ['Red', 'Blue', 'Green'],
    'size_name' : ['9', '10'],
  },
  'dimensionToAsinMap' : {{MAP}},
};
return dataToReturn;
});
</script>
</div>`

const fullDimensionMap = `{'0_0' : 'B0RED00009', '0_1' : 'B0RED00010', '1_0' : 'B0BLUE0009'}`

func multiVariantPage(landing, current, dimensionMap string) string {
	r := strings.NewReplacer("{{LANDING}}", landing, "{{CURRENT}}", current, "{{MAP}}", dimensionMap)
	return `<html><body><span id="productTitle"> Trail Runner </span>` +
		r.Replace(imageBlockFixture) + r.Replace(twisterFixture) + `</body></html>`
}

const minimalImageBlock = `<div id="imageBlockVariations_feature_div"><script>var obj = jQuery.parseJSON('{"title":"Desk Lamp","colorImages":{}}');</script></div>`

const imageDataFixture = `<div id="imageBlock_feature_div">
<script type="text/javascript">
P.when('A').register("ImageBlockATF", function(A){
  var data = {
    'colorImages': { 'initial': [{"hiRes":"lamp-hi.jpg","thumb":"lamp-t.jpg","large":"lamp.jpg","main":{"lamp-main.jpg":[500,500]},"variant":"MAIN"}]},
    'colorToAsin': {'initial': {"asin": "B0LAMP0001"}},
    'heroImage': {'initial': []},
    'heroVideo': {'initial': [{"title":"Lamp teaser","url":"teaser.mp4","isHeroVideo":true}]},
    'airyConfig' :{"airyConfigEnabled":true},
    'videos': [{"title":"Lamp demo","url":"demo.mp4","languageCode":"en_US"}]
  };
  A.trigger('P.AboveTheFold');
  return data;
});
</script>
</div>`

const singleProductPage = `<html><body><span id="productTitle">
  Desk Lamp
</span>` + minimalImageBlock + imageDataFixture + `</body></html>`

const swatchesFixture = `<div id="tmmSwatches"><ul>
<li class="swatchElement selected"><span class="a-button"><span class="a-button-inner"><a href="javascript:void(0)" class="a-button-text"><span>Paperback</span><br><span class="a-color-base">$12.99</span></a></span></span></li>
<li class="swatchElement unselected"><span class="a-button"><span class="a-button-inner"><a href="/Go-Programming-ebook/dp/B00KINDLE1/ref=tmm_kin_swatch_0" class="a-button-text"><span>Kindle</span><br><span class="a-color-price">$9.99</span></a></span></span></li>
<li class="swatchElement unselected"><span class="a-button"><span class="a-button-inner"><a href="javascript:void(0)" class="a-button-text"><span>Audiobook</span></a></span></span></li>
</ul></div>`

const booksImageBlockFixture = `<div id="booksImageBlock_feature_div">
<script type="text/javascript">
P.when('A').register("ImageBlockATF", function(A){
  var data = {
    'imageGalleryData' : [{"mainUrl":"cover.jpg","dimensions":[333,500],"thumbUrl":"cover-t.jpg"}],
    'centerColMargin' : 'img-tag-center-col',
  };
  return data;
});
</script>
</div>`

const bookPage = `<html><body><span id="productTitle">The Go Programming Language</span>` +
	minimalImageBlock + swatchesFixture + booksImageBlockFixture + `</body></html>`

const moviePage = `<html><body><span id="productTitle">Heist</span>` +
	minimalImageBlock + swatchesFixture + imageDataFixture + `</body></html>`

const kindlePage = `<html><body>
<span id="ebooksProductTitle">Go in Action</span>
<div id="ebooksImageBlock_feature_div"><img id="ebooksImgBlkFront" src="cover.jpg" data-a-dynamic-image='{"cover._SY346_.jpg":[346,230],"cover._SY500_.jpg":[500,333]}'></div>` +
	swatchesFixture + `</body></html>`

const primeVideoFixture = `<html><body><script type="text/template">{"props":{"state":{"pageTitleId":"amzn1.dv.gti.1","detail":{"headerDetail":{"amzn1.dv.gti.1":{"entityType":"{{ENTITY}}","title":"Heist's End","asin":"B0MOVIE001"}}},"action":{"atf":{"amzn1.dv.gti.1":{"acquisitionActions":{"svod":{"label":"Watch with Prime"},"moreWaysToWatch":{"children":[{"type":"PRIME","label":"Prime"},{"type":"TVOD","label":"Rent HD $3.99"},{"type":"TVOD","label":"Buy HD $14.99"}]}}}}},"seasons":{"amzn1.dv.gti.1":[{"sequenceNumber":1,"titleID":"amzn1.dv.gti.s1","displayText":"Season 1","href":"/gp/video/detail/B0SEASON01","releaseDate":"2019/11/12"},{"sequenceNumber":2,"titleID":"amzn1.dv.gti.s2","displayText":"Season 2","href":"/gp/video/detail/B0SEASON02","releaseDate":""}]}},"requestContext":{"realm":"USAmazon","locale":"en_US","territory":"US"}}}</script></body></html>`

func primeVideoPage(entityType string) string {
	return strings.Replace(primeVideoFixture, "{{ENTITY}}", entityType, 1)
}
