package scraper

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidURL = errors.New("invalid Amazon URL")
	// ErrNotFound is returned for pages the storefront answers with 404.
	ErrNotFound = errors.New("product not found")
	// ErrBotDetected is returned when the storefront served a captcha or
	// answered with 503. Refreshing the session and retrying once may help.
	ErrBotDetected = errors.New("detected as bot")
)

// Fetcher returns the raw markup of a storefront page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Session is a Fetcher with storefront state that can be refreshed, such as
// cookies picked up from the top page.
type Session interface {
	Fetcher
	Init(ctx context.Context) error
}

type Options struct {
	Language   string
	Currency   string
	UserAgents []string
	Timeout    time.Duration
	MinDelay   time.Duration
	MaxDelay   time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:  30 * time.Second,
		MinDelay: 2 * time.Second,
		MaxDelay: 5 * time.Second,
	}
}
