package dataflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/psxlens/internal/models"
)

// HTTPRenderer fetches static HTML without executing scripts. It suits
// mirrors of the market summary that are rendered server side.
type HTTPRenderer struct {
	client *resty.Client
	marker string
}

func NewHTTPRenderer(userAgent, marker string, timeout time.Duration) *HTTPRenderer {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	if marker == "" {
		marker = "table"
	}
	return &HTTPRenderer{client: client, marker: marker}
}

func (r *HTTPRenderer) Render(ctx context.Context, url string) (string, error) {
	resp, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", &models.FetchError{URL: url, Err: err}
	}
	if resp.IsError() {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode())}
	}

	body := resp.String()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", &models.RenderError{URL: url, Marker: r.marker, Err: err}
	}
	if doc.Find(r.marker).Length() == 0 {
		return "", &models.RenderError{URL: url, Marker: r.marker}
	}
	return body, nil
}
