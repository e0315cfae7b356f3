package locale

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownCountry = errors.New("unknown country")

// Marketplace is the static configuration of one regional storefront.
type Marketplace struct {
	Code            string
	Name            string
	Domain          string
	DefaultLanguage string
	Currency        string
	MerchantID      string
	MarketplaceID   string
}

// marketplaces is keyed by the storefront's top level domain suffix.
var marketplaces = map[string]Marketplace{
	"com.au": {Code: "AU", Name: "Australia", Domain: "com.au", DefaultLanguage: "en_AU", Currency: "AUD", MerchantID: "ANEGB3WVEVKZB", MarketplaceID: "A39IBJ37TRP1C6"},
	"com.br": {Code: "BR", Name: "Brazil", Domain: "com.br", DefaultLanguage: "pt_BR", Currency: "BRL", MerchantID: "A1ZZFT5FULY4LN", MarketplaceID: "A2Q3Y263D00KWC"},
	"ca":     {Code: "CA", Name: "Canada", Domain: "ca", DefaultLanguage: "en_CA", Currency: "CAD", MerchantID: "A3DWYIK6Y9EEQB", MarketplaceID: "A2EUQ1WTGCTBG2"},
	"cn":     {Code: "CN", Name: "China Mainland", Domain: "cn", DefaultLanguage: "zh_CN", Currency: "CNY", MerchantID: "A1AJ19PSB66TGU", MarketplaceID: "AAHKV2X7AFYLW"},
	"fr":     {Code: "FR", Name: "France", Domain: "fr", DefaultLanguage: "fr_FR", Currency: "EUR", MerchantID: "A1X6FK5RDHNB96", MarketplaceID: "A13V1IB3VIYZZH"},
	"de":     {Code: "DE", Name: "Germany", Domain: "de", DefaultLanguage: "de_DE", Currency: "EUR", MerchantID: "A3JWKAKR8XB7XF", MarketplaceID: "A1PA6795UKMFR9"},
	"in":     {Code: "IN", Name: "India", Domain: "in", DefaultLanguage: "en_IN", Currency: "INR", MerchantID: "AT95IG9ONZD7S", MarketplaceID: "A21TJRUUN4KGV"},
	"it":     {Code: "IT", Name: "Italy", Domain: "it", DefaultLanguage: "it_IT", Currency: "EUR", MerchantID: "A11IL2PNWYJU7H", MarketplaceID: "APJ6JRA9NG5V4"},
	"co.jp":  {Code: "JP", Name: "Japan", Domain: "co.jp", DefaultLanguage: "ja_JP", Currency: "JPY", MerchantID: "AN1VRQENFRJN5", MarketplaceID: "A1VC38T7YXB528"},
	"com.mx": {Code: "MX", Name: "Mexico", Domain: "com.mx", DefaultLanguage: "es_MX", Currency: "MXN", MerchantID: "AVDBXBAVVSXLQ", MarketplaceID: "A1AM78C64UM0Y8"},
	"nl":     {Code: "NL", Name: "Netherlands", Domain: "nl", DefaultLanguage: "nl_NL", Currency: "EUR", MerchantID: "A17D2BRD4YMT0X", MarketplaceID: "A1805IZSGTT6HS"},
	"pl":     {Code: "PL", Name: "Poland", Domain: "pl", DefaultLanguage: "pl_PL", Currency: "PLN"},
	"sa":     {Code: "SA", Name: "Saudi Arabia", Domain: "sa", DefaultLanguage: "ar_AE", Currency: "SAR", MerchantID: "A2XPWB6MYN7ZDK", MarketplaceID: "A17E79C6D8DWNP"},
	"sg":     {Code: "SG", Name: "Singapore", Domain: "sg", DefaultLanguage: "en_SG", Currency: "SGD", MerchantID: "ACT6OAM3OSC9S", MarketplaceID: "A19VAU5U5O7RUS"},
	"es":     {Code: "ES", Name: "Spain", Domain: "es", DefaultLanguage: "es_ES", Currency: "EUR", MerchantID: "A1AT7YVPFBWXBL", MarketplaceID: "A1RKKUPIHCS9HS"},
	"se":     {Code: "SE", Name: "Sweden", Domain: "se", DefaultLanguage: "sv_SE", Currency: "SEK"},
	"com.tr": {Code: "TR", Name: "Turkey", Domain: "com.tr", DefaultLanguage: "tr_TR", Currency: "TRY"},
	"ae":     {Code: "AE", Name: "United Arab Emirates", Domain: "ae", DefaultLanguage: "en_AE", Currency: "AED", MerchantID: "A2KKU8J8O8784X", MarketplaceID: "A2VIGQ35RCS4UG"},
	"co.uk":  {Code: "GB", Name: "United Kingdom", Domain: "co.uk", DefaultLanguage: "en_GB", Currency: "GBP", MerchantID: "A3P5ROKL5A1OLE", MarketplaceID: "A1F83G8C2ARO7P"},
	"com":    {Code: "US", Name: "United States", Domain: "com", DefaultLanguage: "en_US", Currency: "USD", MerchantID: "ATVPDKIKX0DER", MarketplaceID: "ATVPDKIKX0DER"},
}

// USLanguages are the display languages the US storefront accepts.
var USLanguages = []string{"en_US", "es_US", "zh_CN", "zh_TW", "de_DE", "pt_BR", "ko_KR", "he_IL", "ar_AE"}

var codeAlias = map[string]string{"UK": "GB"}

// Lookup resolves a storefront by domain suffix ("co.jp") or ISO code ("JP").
func Lookup(country string) (Marketplace, error) {
	key := strings.ToLower(strings.TrimSpace(country))
	key = strings.TrimPrefix(key, "www.amazon.")
	key = strings.TrimPrefix(key, ".")

	if m, ok := marketplaces[key]; ok {
		return m, nil
	}

	code := strings.ToUpper(key)
	if alias, ok := codeAlias[code]; ok {
		code = alias
	}
	for _, m := range marketplaces {
		if m.Code == code {
			return m, nil
		}
	}

	return Marketplace{}, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
}

// Default is the US storefront.
func Default() Marketplace {
	return marketplaces["com"]
}

// Domains returns every supported domain suffix, sorted.
func Domains() []string {
	domains := make([]string, 0, len(marketplaces))
	for d := range marketplaces {
		domains = append(domains, d)
	}
	slices.Sort(domains)
	return domains
}

// Host is the storefront host name, e.g. www.amazon.co.jp.
func (m Marketplace) Host() string {
	return "www.amazon." + m.Domain
}

// BaseURL is the storefront top page.
func (m Marketplace) BaseURL() string {
	return "https://" + m.Host()
}

// LanguageCookie is the name of the cookie holding the display language.
func (m Marketplace) LanguageCookie() string {
	if m.Domain == "com" {
		return "lc-main"
	}
	parts := strings.Split(m.Domain, ".")
	return "lc-acb" + parts[len(parts)-1]
}

// CurrencyCookie is the name of the cookie holding the display currency.
func (m Marketplace) CurrencyCookie() string {
	return "i18n-prefs"
}
