// Package crawl walks a live site and captures its content for migration
// into the markdown content tree.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidBaseURL is returned by New for URLs that are not absolute http(s).
var ErrInvalidBaseURL = errors.New("invalid base url")

// Options tune a crawl. Zero values mean no delay, no timeout, no page cap.
type Options struct {
	Delay     time.Duration
	Timeout   time.Duration
	MaxPages  int
	UserAgent string
	// Markdown enables the per-page markdown capture.
	Markdown bool
	Client   *http.Client
	Logger   *log.Logger
}

// Crawler visits every page reachable from a base URL on the same host.
type Crawler struct {
	base   *url.URL
	opts   Options
	client *http.Client
	logger *log.Logger
	conv   *md.Converter

	visited map[string]bool
	pages   map[string]*Page
	linkMap map[string][]Backlink
}

// New validates baseURL and prepares a crawler.
func New(baseURL string, opts Options) (*Crawler, error) {
	base, err := url.Parse(baseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Crawler{
		base:    base,
		opts:    opts,
		client:  opts.Client,
		logger:  opts.Logger,
		visited: make(map[string]bool),
		pages:   make(map[string]*Page),
		linkMap: make(map[string][]Backlink),
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.logger == nil {
		c.logger = log.New(os.Stdout, "", 0)
	}
	if opts.Markdown {
		c.conv = newMarkdownConverter(base.Host)
	}
	return c, nil
}

// Crawl visits pages depth-first starting at the base URL. Fetch failures
// are logged and skipped. When ctx is cancelled the pages gathered so far
// stay available and ctx's error is returned.
func (c *Crawler) Crawl(ctx context.Context) error {
	stack := []string{Normalize(c.base)}
	fetched := 0

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.opts.MaxPages > 0 && len(c.pages) >= c.opts.MaxPages {
			c.logger.Printf("Reached page limit of %d.", c.opts.MaxPages)
			return nil
		}

		target := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.visited[target] {
			continue
		}

		if fetched > 0 && c.opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.opts.Delay):
			}
		}
		fetched++

		links := c.visit(ctx, target)
		// Push in reverse so the first link on the page is crawled next.
		for i := len(links) - 1; i >= 0; i-- {
			if !c.visited[links[i].URL] {
				stack = append(stack, links[i].URL)
			}
		}
	}
	return nil
}

// visit fetches one page, records it and returns its internal links.
func (c *Crawler) visit(ctx context.Context, target string) []Link {
	c.visited[target] = true
	c.logger.Printf("Crawling: %s", target)

	doc, final, err := c.fetch(ctx, target)
	if err != nil {
		c.logger.Printf("Error crawling %s: %v", target, err)
		return nil
	}

	// Relative links resolve against where the server actually answered,
	// but the page stays keyed by the URL that was asked for.
	page := extractPage(doc, final, c.conv)
	page.URL = target
	c.pages[page.URL] = &page
	for _, link := range page.InternalLinks {
		c.linkMap[link.URL] = append(c.linkMap[link.URL], Backlink{From: page.URL, Text: link.Text})
	}
	return page.InternalLinks
}

func (c *Crawler) fetch(ctx context.Context, target string) (*goquery.Document, *url.URL, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, err
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return doc, resp.Request.URL, nil
}

// Visited is the number of URLs attempted, including failures.
func (c *Crawler) Visited() int {
	return len(c.visited)
}

// Pages returns the captured pages keyed by normalized URL.
func (c *Crawler) Pages() map[string]*Page {
	return c.pages
}

// Backlinks returns, per target URL, the pages linking to it.
func (c *Crawler) Backlinks() map[string][]Backlink {
	return c.linkMap
}
