// Package tarifaluz scrapes hourly prices from the tarifaluzhora.es home page.
package tarifaluz

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"resty.dev/v3"

	"elecprice/internal/extract"
	"elecprice/internal/fetcher"
	"elecprice/internal/price"
	"elecprice/internal/ratelimit"
)

const (
	// DefaultBaseURL is the page that lists today's prices.
	DefaultBaseURL = "https://tarifaluzhora.es/"
	// DefaultUserAgent identifies as mobile Safari.
	DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

	acceptHTML = "text/html,application/xhtml+xml"
)

// Client downloads the price page and runs the extraction heuristics on it.
type Client struct {
	client *resty.Client
}

// NewClient creates a scraper for the given page. An empty user agent selects
// DefaultUserAgent.
func NewClient(baseURL string, opts fetcher.ClientOptions) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	opts.Accept = acceptHTML
	return &Client{client: fetcher.NewHTTPClient(baseURL, opts)}
}

// Fetch downloads the page and extracts the prices for day.
// The page always shows the current day; day only stamps the records.
func (c *Client) Fetch(ctx context.Context, day time.Time) (price.Series, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APITarifaluz); err != nil {
		return price.Series{}, fetcher.ClassifyTransportError(err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		Get("")
	if err != nil {
		return price.Series{}, fetcher.ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return price.Series{}, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	body := resp.Bytes()
	if !utf8.Valid(body) {
		return price.Series{}, fetcher.NewMalformedError("page is not valid UTF-8", nil)
	}

	return parse(string(body), day)
}

// Name identifies the source in logs and attempt trails.
func (c *Client) Name() string {
	return "tarifaluz"
}

// parse runs the heuristics on the raw markup first. When nothing matches it
// retries on the document's visible text, where entities are decoded and
// inline tags no longer split labels from prices.
func parse(html string, day time.Time) (price.Series, error) {
	series, method := extract.ExtractWithMethod(html, day)
	if !series.IsEmpty() {
		slog.Debug("extracted prices from markup", "method", method, "records", series.Len())
		return series, nil
	}

	text, err := visibleText(html)
	if err != nil {
		return price.Series{}, fetcher.NewMalformedError("parse document", err)
	}
	series, method = extract.ExtractWithMethod(text, day)
	if series.IsEmpty() {
		return price.Series{}, fetcher.NewParseExhaustedError("no price heuristic matched the page")
	}

	slog.Debug("extracted prices from document text", "method", method, "records", series.Len())
	return series, nil
}

func visibleText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text(), nil
}

var _ fetcher.Fetcher = (*Client)(nil)
