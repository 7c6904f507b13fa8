// Package tags fetches raw artist tags from upstream services and aggregates
// them into ordered, deduplicated tag sets.
package tags

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"go.uber.org/zap"

	"github.com/justestif/genrefixer/internal/lastfm"
)

// ErrNameMismatch is reported when an upstream answered for an artist whose
// name is too far from the one queried.
var ErrNameMismatch = errors.New("upstream artist name does not match query")

// DefaultNoise matches tags that carry no genre information.
var DefaultNoise = regexp.MustCompile(`(?i)^all$|2000|spotify`)

// TopTagsFetcher abstracts the Last.fm client for testing.
type TopTagsFetcher interface {
	ArtistTopTags(ctx context.Context, artist string, autocorrect bool) (*lastfm.TopTags, error)
}

// Catalog is a secondary store that knows one primary genre per artist.
type Catalog interface {
	Name() string
	ArtistGenre(ctx context.Context, name string) (artist, genre string, err error)
}

// Config controls tag filtering.
type Config struct {
	// MaxTags bounds the tag position considered from a Last.fm answer.
	MaxTags int
	// MinCount is the exclusive lower bound on a tag's count.
	MinCount int
	// RetryBelow triggers a second, auto-corrected Last.fm query when the
	// first one yielded at most this many tags.
	RetryBelow int
	// MaxTagLength drops tags longer than this many characters.
	MaxTagLength int
	// MaxNameDistance is the exclusive bound on the normalized edit distance
	// between the queried and the answered artist name.
	MaxNameDistance float64
	Noise           *regexp.Regexp
}

// DefaultConfig returns the stock filter settings.
func DefaultConfig() Config {
	return Config{
		MaxTags:         20,
		MinCount:        5,
		RetryBelow:      5,
		MaxTagLength:    40,
		MaxNameDistance: 0.5,
		Noise:           DefaultNoise,
	}
}

// Default concurrency for multi-name collection.
const DefaultConcurrency = 1

// Source queries Last.fm and the configured catalogs for an artist's tags.
type Source struct {
	fetcher     TopTagsFetcher
	catalogs    []Catalog
	cfg         Config
	log         *zap.Logger
	concurrency int
}

// Option configures a Source.
type Option func(*Source)

// WithCatalogs sets the fallback genre catalogs, consulted in order.
func WithCatalogs(catalogs ...Catalog) Option {
	return func(s *Source) {
		s.catalogs = catalogs
	}
}

// WithConfig replaces the filter settings.
func WithConfig(cfg Config) Option {
	return func(s *Source) {
		if cfg.Noise == nil {
			cfg.Noise = DefaultNoise
		}
		s.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Source) {
		if log != nil {
			s.log = log
		}
	}
}

// WithConcurrency sets the number of names collected concurrently by
// CollectAll. Results keep their input order regardless.
func WithConcurrency(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewSource creates a tag source. A nil fetcher disables Last.fm lookups.
func NewSource(fetcher TopTagsFetcher, opts ...Option) *Source {
	s := &Source{
		fetcher:     fetcher,
		cfg:         DefaultConfig(),
		log:         zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NameMatches reports whether the normalized Levenshtein distance between
// the two names is below limit. Two empty names match.
func NameMatches(queried, answered string, limit float64) bool {
	longest := max(utf8.RuneCountInString(queried), utf8.RuneCountInString(answered))
	if longest == 0 {
		return true
	}
	d := edlib.LevenshteinDistance(queried, answered)
	return float64(d)/float64(longest) < limit
}

// FetchTags returns the filtered Last.fm tags of an artist. Upstream failures
// and name mismatches are logged and yield no tags.
func (s *Source) FetchTags(ctx context.Context, artist string, autocorrect bool) []string {
	if s.fetcher == nil {
		return nil
	}

	s.log.Info("lastfm query", zap.String("artist", artist), zap.Bool("autocorrect", autocorrect))

	top, err := s.fetcher.ArtistTopTags(ctx, artist, autocorrect)
	if err != nil {
		if errors.Is(err, lastfm.ErrNotFound) {
			s.log.Debug("lastfm has no such artist", zap.String("artist", artist))
		} else {
			s.log.Warn("lastfm query failed", zap.String("artist", artist), zap.Error(err))
		}
		return nil
	}

	if !NameMatches(artist, top.Artist, s.cfg.MaxNameDistance) {
		s.log.Debug("discarding lastfm answer",
			zap.String("artist", artist),
			zap.String("answered", top.Artist),
			zap.Error(ErrNameMismatch),
		)
		return nil
	}

	out := make([]string, 0, len(top.Tags))
	for i, t := range top.Tags {
		if i >= s.cfg.MaxTags {
			break
		}
		if t.Count <= s.cfg.MinCount {
			continue
		}
		if s.cfg.Noise.MatchString(t.Name) || utf8.RuneCountInString(t.Name) > s.cfg.MaxTagLength {
			continue
		}
		out = append(out, t.Name)
	}

	s.log.Info("lastfm answer",
		zap.String("artist", top.Artist),
		zap.Int("count", len(out)),
		zap.Strings("tags", out),
	)
	return out
}

// FetchFallbackGenre asks each catalog in order for the artist's primary
// genre and returns the first one whose artist name matches the query.
func (s *Source) FetchFallbackGenre(ctx context.Context, artist string) string {
	for _, c := range s.catalogs {
		s.log.Info("catalog query", zap.String("catalog", c.Name()), zap.String("artist", artist))

		answered, genre, err := c.ArtistGenre(ctx, artist)
		if err != nil {
			s.log.Warn("catalog query failed",
				zap.String("catalog", c.Name()),
				zap.String("artist", artist),
				zap.Error(err),
			)
			continue
		}
		if genre == "" {
			continue
		}
		if !NameMatches(artist, answered, s.cfg.MaxNameDistance) {
			s.log.Debug("discarding catalog answer",
				zap.String("catalog", c.Name()),
				zap.String("artist", artist),
				zap.String("answered", answered),
				zap.Error(ErrNameMismatch),
			)
			continue
		}

		s.log.Info("catalog answer",
			zap.String("catalog", c.Name()),
			zap.String("artist", answered),
			zap.String("genre", genre),
		)
		return genre
	}
	return ""
}

// Collect gathers every tag known for one artist name: Last.fm tags without
// auto-correct, then the catalog genre, then auto-corrected Last.fm tags when
// the first query found few.
func (s *Source) Collect(ctx context.Context, artist string) []string {
	tags := s.FetchTags(ctx, artist, false)
	n := len(tags)

	if genre := s.FetchFallbackGenre(ctx, artist); genre != "" {
		tags = append(tags, genre)
	}
	if n <= s.cfg.RetryBelow {
		tags = append(tags, s.FetchTags(ctx, artist, true)...)
	}
	return tags
}

// CollectAll runs Collect for each name. Results are returned in the same
// order as the input names.
func (s *Source) CollectAll(ctx context.Context, names []string) [][]string {
	results := make([][]string, len(names))
	if len(names) == 0 {
		return results
	}

	type workItem struct {
		index int
		name  string
	}
	workCh := make(chan workItem, len(names))
	for i, n := range names {
		workCh <- workItem{index: i, name: n}
	}
	close(workCh)

	workers := min(s.concurrency, len(names))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				if ctx.Err() != nil {
					continue
				}
				results[work.index] = s.Collect(ctx, work.name)
			}
		}()
	}
	wg.Wait()

	return results
}
