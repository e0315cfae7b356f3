package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var productURLPattern = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?amazon\.([a-z.]+)/(?:.*?/)?(?:dp|gp/product|gp/video/detail)/([A-Z0-9]{10})`)

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

func ProductURL(baseURL, asin string) string {
	return fmt.Sprintf("%s/dp/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(asin))
}

// AbsoluteURL resolves a storefront relative link.
func AbsoluteURL(baseURL, ref string) string {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return ref
	}
	target, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(target).String()
}

// ExtractASIN returns the storefront domain suffix and ASIN of a product URL.
func ExtractASIN(rawURL string) (string, string, error) {
	matches := productURLPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if len(matches) < 3 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return strings.ToLower(matches[1]), strings.ToUpper(matches[2]), nil
}

func ValidASIN(asin string) bool {
	return asinPattern.MatchString(asin)
}
