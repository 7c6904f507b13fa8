// Package itunes looks up an artist's primary genre in the iTunes Search API.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const searchBaseURL = "http://itunes.apple.com/search"

// Client provides access to the iTunes Search API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	log         *zap.Logger
	baseURL     string
}

// NewClient creates a new iTunes client.
// Rate limited to 20 requests per minute as recommended by Apple.
func NewClient(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 20 requests per minute = 1 request per 3 seconds, burst of 5
		rateLimiter: rate.NewLimiter(rate.Every(3*time.Second), 5),
		log:         log,
		baseURL:     searchBaseURL,
	}
}

// Name identifies the catalog in logs.
func (c *Client) Name() string { return "itunes" }

type searchResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		ArtistName       string `json:"artistName"`
		PrimaryGenreName string `json:"primaryGenreName"`
	} `json:"results"`
}

// ArtistGenre searches for the best matching music artist and returns its
// name as iTunes spells it together with its primary genre. Both are empty
// when nothing matched.
func (c *Client) ArtistGenre(ctx context.Context, name string) (artist, genre string, err error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", "", fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("attribute", "artistTerm")
	params.Set("term", name)
	params.Set("media", "music")
	params.Set("entity", "musicArtist")
	params.Set("limit", "1")

	searchURL := c.baseURL + "?" + params.Encode()

	c.log.Debug("searching iTunes", zap.String("term", name), zap.String("url", searchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", "", fmt.Errorf("parse response: %w", err)
	}

	if searchResp.ResultCount == 0 || len(searchResp.Results) == 0 {
		return "", "", nil
	}

	first := searchResp.Results[0]
	c.log.Debug("iTunes search result",
		zap.String("term", name),
		zap.String("artist", first.ArtistName),
		zap.String("genre", first.PrimaryGenreName),
	)

	return first.ArtistName, first.PrimaryGenreName, nil
}
