package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Fetch returns the response body of a successful GET.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// ShelfURL expands a feed URL template for one shelf.
func ShelfURL(template, userID, shelf string) string {
	return strings.NewReplacer(
		"{user_id}", url.PathEscape(userID),
		"{shelf}", url.QueryEscape(shelf),
	).Replace(template)
}

// BookURL expands a book page URL template. It returns "" without a book id.
func BookURL(template, bookID string) string {
	if template == "" || bookID == "" {
		return ""
	}
	return strings.ReplaceAll(template, "{book_id}", url.PathEscape(bookID))
}
