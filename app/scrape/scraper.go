package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/html"
)

var (
	ErrNoFraction = errors.New("no page fraction found")
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

type Scraper struct {
	httpClient  *http.Client
	extractor   Extractor
	userAgent   string
	checkRobots bool
}

func NewScraper(httpClient *http.Client, extractor Extractor, userAgent string, checkRobots bool) *Scraper {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Scraper{
		httpClient:  httpClient,
		extractor:   extractor,
		userAgent:   userAgent,
		checkRobots: checkRobots,
	}
}

// Scrape fetches a book page and extracts the reader's page fraction. The
// extractor runs over the raw markup first, then the visible text of the
// page, then the text of the readability article.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (Fraction, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil || parsedURL.Host == "" {
		return Fraction{}, fmt.Errorf("invalid page URL %q", pageURL)
	}

	if s.checkRobots && !s.allowed(ctx, parsedURL) {
		return Fraction{}, ErrDisallowed
	}

	raw, err := s.fetch(ctx, pageURL)
	if err != nil {
		return Fraction{}, err
	}

	if fraction, ok := s.extractor.PageFraction(raw); ok {
		slog.Debug("Page fraction found", "pass", "raw", "url", pageURL)
		return fraction, nil
	}

	if text, err := pageText(raw); err == nil {
		if fraction, ok := s.extractor.PageFraction(text); ok {
			slog.Debug("Page fraction found", "pass", "text", "url", pageURL)
			return fraction, nil
		}
	}

	if text, err := articleText(raw, parsedURL); err == nil {
		if fraction, ok := s.extractor.PageFraction(text); ok {
			slog.Debug("Page fraction found", "pass", "article", "url", pageURL)
			return fraction, nil
		}
	}

	return Fraction{}, ErrNoFraction
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}

// allowed consults robots.txt. A robots file that cannot be fetched does not
// block the scrape.
func (s *Scraper) allowed(ctx context.Context, pageURL *url.URL) bool {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", pageURL.Scheme, pageURL.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Debug("robots.txt unavailable, ignoring", "url", robotsURL, "error", err)
		return true
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		slog.Debug("robots.txt unparsable, ignoring", "url", robotsURL, "error", err)
		return true
	}

	return data.TestAgent(pageURL.RequestURI(), s.userAgent)
}

func pageText(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return documentText(doc), nil
}

func articleText(raw string, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err != nil {
		return "", err
	}
	if article.Content == "" {
		return "", ErrNoFraction
	}
	return pageText(article.Content)
}

// documentText joins text nodes with spaces so numbers in adjacent elements
// do not run together.
func documentText(doc *goquery.Document) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				parts = append(parts, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range doc.Nodes {
		walk(node)
	}
	return strings.Join(parts, " ")
}
