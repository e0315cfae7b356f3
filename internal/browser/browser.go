package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/terraplen/internal/locale"
	"github.com/maltedev/terraplen/internal/ratelimit"
	"github.com/maltedev/terraplen/internal/scraper"
)

// Browser renders storefront pages in headless Chromium. It satisfies
// scraper.Session and is the fallback for storefronts that refuse plain HTTP.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	limiter *ratelimit.AdaptiveRateLimiter
	opts    *Options
	logger  *slog.Logger
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
	BaseURL        string
	Cookies        map[string]string
	MaxRetries     int
	MinDelay       time.Duration
	MaxDelay       time.Duration
	ExtraHeaders   map[string]string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      scraper.DefaultUserAgents()[0],
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "en-US,en;q=0.9",
		TimezoneID:     "America/New_York",
		Locale:         "en-US",
		BaseURL:        locale.Default().BaseURL(),
		MaxRetries:     3,
		MinDelay:       2 * time.Second,
		MaxDelay:       5 * time.Second,
		ExtraHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Encoding": "gzip, deflate, br",
			"DNT":             "1",
		},
	}
}

// OptionsFor returns default options localized for a storefront, with its
// language and currency cookies preset.
func OptionsFor(m locale.Marketplace) *Options {
	opts := DefaultOptions()

	lang := strings.ReplaceAll(m.DefaultLanguage, "_", "-")
	primary, _, _ := strings.Cut(lang, "-")
	opts.Locale = lang
	opts.AcceptLanguage = fmt.Sprintf("%s,%s;q=0.9,en;q=0.8", lang, primary)
	opts.BaseURL = m.BaseURL()
	opts.Cookies = map[string]string{
		m.LanguageCookie(): m.DefaultLanguage,
		m.CurrencyCookie(): m.Currency,
	}

	return opts
}

func New(opts *Options, logger *slog.Logger) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			fmt.Sprintf("--window-size=%d,%d", opts.ViewportWidth, opts.ViewportHeight),
		},
	}

	if opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{
			Server: opts.ProxyServer,
		}
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	headers := make(map[string]string, len(opts.ExtraHeaders)+1)
	for k, v := range opts.ExtraHeaders {
		headers[k] = v
	}
	headers["Accept-Language"] = opts.AcceptLanguage

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         &opts.UserAgent,
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Locale:            &opts.Locale,
		TimezoneId:        &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: headers,
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if cookies := contextCookies(opts); len(cookies) > 0 {
		if err := browserContext.AddCookies(cookies); err != nil {
			browser.Close()
			pw.Stop()
			return nil, fmt.Errorf("failed to set storefront cookies: %w", err)
		}
	}

	return &Browser{
		pw:      pw,
		browser: browser,
		context: browserContext,
		limiter: ratelimit.NewAdaptiveRateLimiter(opts.MinDelay, opts.MaxDelay),
		opts:    opts,
		logger:  logger.With("component", "browser"),
	}, nil
}

func contextCookies(opts *Options) []playwright.OptionalCookie {
	cookies := make([]playwright.OptionalCookie, 0, len(opts.Cookies))
	for name, value := range opts.Cookies {
		cookies = append(cookies, playwright.OptionalCookie{
			Name:  name,
			Value: value,
			URL:   playwright.String(opts.BaseURL),
		})
	}
	return cookies
}

func (b *Browser) NewPage() (playwright.Page, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	page.SetDefaultTimeout(float64(b.opts.Timeout.Milliseconds()))

	return page, nil
}

// Init opens the storefront top page so the context collects session cookies.
func (b *Browser) Init(ctx context.Context) error {
	if _, err := b.Fetch(ctx, b.opts.BaseURL); err != nil {
		return fmt.Errorf("failed to initialize browser session: %w", err)
	}
	return nil
}

// Fetch renders url and returns the resulting markup.
func (b *Browser) Fetch(ctx context.Context, url string) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	html, err := b.render(ctx, url)
	b.limiter.Observe(err)
	return html, err
}

func (b *Browser) render(ctx context.Context, url string) (string, error) {
	page, err := b.NewPage()
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := b.navigate(ctx, page, url); err != nil {
		return "", err
	}

	if blocked, reason := b.isBlocked(page); blocked {
		b.logger.Warn("detected captcha/block", "url", url, "reason", reason)
		return "", fmt.Errorf("%w: %s", scraper.ErrBotDetected, reason)
	}

	if err := b.HumanizeInteraction(page); err != nil {
		b.logger.Debug("failed to humanize interaction", "error", err)
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return html, nil
}

func (b *Browser) navigate(ctx context.Context, page playwright.Page, url string) error {
	var lastErr error

	for i := 0; i < max(b.opts.MaxRetries, 1); i++ {
		if i > 0 {
			b.logger.Info("retrying navigation", "attempt", i+1, "url", url)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * time.Second):
			}
		}

		resp, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(b.opts.Timeout.Milliseconds())),
		})
		if err != nil {
			lastErr = err
			b.logger.Error("navigation failed", "error", err, "attempt", i+1)
			continue
		}

		if resp != nil {
			switch resp.Status() {
			case http.StatusServiceUnavailable:
				return fmt.Errorf("%w: %s", scraper.ErrBotDetected, url)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", scraper.ErrNotFound, url)
			}
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", max(b.opts.MaxRetries, 1), lastErr)
}

var captchaSelectors = []string{
	"#captchacharacters",
	"form[action*='Captcha']",
	"form[action*='validateCaptcha']",
}

func (b *Browser) isBlocked(page playwright.Page) (bool, string) {
	for _, selector := range captchaSelectors {
		if count, _ := page.Locator(selector).Count(); count > 0 {
			return true, selector
		}
	}

	title, _ := page.Title()
	if IsRobotCheckTitle(title) {
		return true, "title: " + title
	}
	return false, ""
}

// IsRobotCheckTitle reports whether a page title belongs to a robot check.
func IsRobotCheckTitle(title string) bool {
	title = strings.ToLower(title)
	return strings.Contains(title, "robot check") || strings.Contains(title, "captcha")
}

// HumanizeInteraction moves the mouse and scrolls a little before the
// content is read.
func (b *Browser) HumanizeInteraction(page playwright.Page) error {
	for i := 0; i < 3; i++ {
		if err := page.Mouse().Move(float64(100+i*200), float64(100+i*150)); err != nil {
			return err
		}
		time.Sleep(time.Millisecond * time.Duration(100+i*50))
	}

	_, err := page.Evaluate(`window.scrollBy(0, Math.random() * 300)`)
	return err
}

func (b *Browser) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}
