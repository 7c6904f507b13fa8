// Package spotify looks up artist genres in the Spotify Web API catalog.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client

	// tokens is set when the token is cached on disk.
	tokens *cachedSource
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewFromCredentials authenticates with the client credentials flow, which
// grants catalog access without a user login. A non-nil cache keeps the token
// across runs.
func NewFromCredentials(ctx context.Context, clientID, clientSecret string, cache *TokenCache) (*Client, error) {
	return newFromCredentials(ctx, clientID, clientSecret, spotifyauth.TokenURL, cache)
}

func newFromCredentials(ctx context.Context, clientID, clientSecret, tokenURL string, cache *TokenCache, opts ...spotify.ClientOption) (*Client, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	if cache == nil {
		src := cfg.TokenSource(ctx)
		if _, err := src.Token(); err != nil {
			return nil, fmt.Errorf("obtaining spotify token: %w", err)
		}
		return New(spotify.New(oauth2.NewClient(ctx, src), opts...)), nil
	}

	// The transport asks cachedSource on every request so that an
	// invalidated token is replaced right away.
	src := &cachedSource{
		newBase: func() oauth2.TokenSource { return cfg.TokenSource(ctx) },
		cache:   cache,
	}
	if _, err := src.Token(); err != nil {
		return nil, fmt.Errorf("obtaining spotify token: %w", err)
	}
	httpClient := &http.Client{Transport: &oauth2.Transport{Source: src}}

	c := New(spotify.New(httpClient, opts...))
	c.tokens = src
	return c, nil
}

// Name identifies the catalog in logs.
func (c *Client) Name() string { return "spotify" }

// ArtistGenre searches for the artist and returns the matched name together
// with the first genre Spotify lists for it. Both are empty when nothing
// matched.
func (c *Client) ArtistGenre(ctx context.Context, name string) (artist, genre string, err error) {
	result, err := c.api.Search(ctx, name, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		var apiErr spotify.Error
		if c.tokens != nil && errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			// A revoked cached token would otherwise be reused until it expires.
			c.tokens.invalidate()
		}
		return "", "", fmt.Errorf("searching artist: %w", err)
	}
	if result.Artists == nil || len(result.Artists.Artists) == 0 {
		return "", "", nil
	}

	first := result.Artists.Artists[0]
	if len(first.Genres) > 0 {
		genre = first.Genres[0]
	}
	return first.Name, genre, nil
}
