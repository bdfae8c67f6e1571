package dataflows

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/phuslu/log"

	"github.com/dyike/psxlens/internal/models"
)

// BrowserConfig holds the headless Chrome settings for one render.
type BrowserConfig struct {
	Headless     bool
	UserAgent    string
	WaitSelector string
	SettleDelay  time.Duration
	Width        int
	Height       int
}

// BrowserRenderer renders pages in a fresh headless Chrome per call.
//
// Content is considered ready once WaitSelector is present in the DOM,
// followed by SettleDelay so tables inserted after the first one finish
// rendering. The browser process is torn down before Render returns on
// every path, including timeouts.
type BrowserRenderer struct {
	config BrowserConfig
	logger *log.Logger
}

func NewBrowserRenderer(config BrowserConfig, logger *log.Logger) *BrowserRenderer {
	if config.WaitSelector == "" {
		config.WaitSelector = "table"
	}
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = 1280, 720
	}
	return &BrowserRenderer{config: config, logger: logger}
}

func (r *BrowserRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(r.config.Width, r.config.Height),
	)
	if r.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.config.UserAgent))
	}
	return opts
}

func (r *BrowserRenderer) Render(ctx context.Context, url string) (string, error) {
	start := time.Now()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(s string, args ...interface{}) {
			r.logger.Debug().Msgf(s, args...)
		}),
	)
	defer cancelBrowser()

	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.EmulateViewport(int64(r.config.Width), int64(r.config.Height)),
		chromedp.Navigate(url),
	)
	if err != nil {
		return "", &models.FetchError{URL: url, Err: err}
	}

	var html string
	err = chromedp.Run(browserCtx,
		chromedp.WaitReady(r.config.WaitSelector, chromedp.ByQuery),
		chromedp.Sleep(r.config.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", &models.RenderError{URL: url, Marker: r.config.WaitSelector, Err: err}
	}

	r.logger.Debug().
		Str("url", url).
		Int("bytes", len(html)).
		Dur("elapsed", time.Since(start)).
		Msg("page rendered")

	return html, nil
}
