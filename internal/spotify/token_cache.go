package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

const (
	configDirName = "genrefixer"
	tokenFileName = "spotify-token.json"
)

// TokenCache stores the client credentials token on disk so that short CLI
// runs reuse it until it expires.
type TokenCache struct {
	path string
}

// DefaultTokenCache returns a TokenCache at
// ~/.config/genrefixer/spotify-token.json
func DefaultTokenCache() (*TokenCache, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}

	return &TokenCache{path: filepath.Join(configDir, configDirName, tokenFileName)}, nil
}

// NewTokenCache creates a TokenCache with a custom path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Load reads the cached token. Returns (nil, nil) if there is none.
func (c *TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}

	return &token, nil
}

// Save writes the token, creating the parent directory if needed.
func (c *TokenCache) Save(token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// Delete removes the cached token. Returns nil if there is none.
func (c *TokenCache) Delete() error {
	err := os.Remove(c.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// cachedSource serves the on-disk token while it is valid and persists
// every fresh token fetched from base.
type cachedSource struct {
	// newBase replaces base on invalidation, since base may hold on to the
	// rejected token itself.
	newBase func() oauth2.TokenSource
	base    oauth2.TokenSource
	cache   *TokenCache

	mu      sync.Mutex
	current *oauth2.Token
}

func (s *cachedSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.base == nil {
		s.base = s.newBase()
	}
	if s.current.Valid() {
		return s.current, nil
	}
	if s.current == nil {
		// A corrupt cache file only costs a token request.
		if tok, err := s.cache.Load(); err == nil && tok.Valid() {
			s.current = tok
			return tok, nil
		}
	}

	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.current = tok
	// Failing to persist is not fatal; the next run fetches again.
	_ = s.cache.Save(tok)
	return tok, nil
}

// invalidate forgets the current token and removes it from disk, so the next
// request fetches a new one.
func (s *cachedSource) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.base = s.newBase()
	_ = s.cache.Delete()
}
