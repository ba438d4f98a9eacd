package spotrac

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const (
	// BaseURL for Spotrac NBA team pages
	BaseURL = "https://www.spotrac.com/nba"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval between two page loads
	MinRequestInterval = 2 * time.Second

	fetchTimeout = 45 * time.Second
)

// Client loads Spotrac pages through a headless browser
type Client struct {
	lastRequest time.Time
	interval    time.Duration
	logger      *logrus.Entry

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a headless Chrome allocator for Spotrac scraping
func NewClient(logger *logrus.Entry) *Client {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		interval: MinRequestInterval,
		logger:   logger.WithField("component", "spotrac"),
		allocCtx: allocCtx,
		cancel:   cancel,
	}
}

// Close releases the browser allocator
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// TeamURL builds the overview page URL of a team for a contract year
func TeamURL(slug string, year int) string {
	return fmt.Sprintf("%s/%s/overview/_/year/%d", BaseURL, slug, year)
}

// FetchTeamPage returns the rendered HTML of a team's salary overview
func (c *Client) FetchTeamPage(ctx context.Context, slug string, year int) (string, error) {
	if !c.lastRequest.IsZero() {
		if wait := c.interval - time.Since(c.lastRequest); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	url := TeamURL(slug, year)
	c.logger.WithField("url", url).Debug("Fetching team page")

	html, err := c.fetch(ctx, url)
	c.lastRequest = time.Now()
	return html, err
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, fetchTimeout)
	defer cancel()

	// Stop the browser when the caller gives up
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`table`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned for %s", url)
	}

	return htmlContent, nil
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
