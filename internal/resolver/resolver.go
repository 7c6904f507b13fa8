// Package resolver turns an artist name tuple into a canonical genre and an
// aggregated tag string.
//
// Lookup expands the names into spelling variants, collects upstream tags for
// every variant into one ordered set, and reconciles the set against the
// canonical genre index. The first tag that resolves wins. Tags matching a
// backup pattern are remembered and used only when nothing else resolves.
// Results are memoized per name tuple for the life of the Resolver.
package resolver

import (
	"context"
	"iter"
	"slices"

	"go.uber.org/zap"

	"github.com/justestif/genrefixer/internal/cache"
	"github.com/justestif/genrefixer/internal/names"
	"github.com/justestif/genrefixer/internal/tags"
)

// GenreIndex resolves a single tag to a canonical genre, or "".
type GenreIndex interface {
	Resolve(tag string) string
}

// TagCollector gathers raw tags for each artist name, keeping input order.
type TagCollector interface {
	CollectAll(ctx context.Context, names []string) [][]string
}

// Result is the outcome of one lookup.
type Result struct {
	Genre  string `json:"genre"`
	Tags   string `json:"tags"`
	Cached bool   `json:"cached"`
}

// Resolver reconciles upstream tags against the canonical genre index.
type Resolver struct {
	index     GenreIndex
	source    TagCollector
	policy    Policy
	log       *zap.Logger
	results   *cache.Session[Result]
	collected *cache.Session[[]string]
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy replaces the default backup, exception and override rules.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Resolver with empty caches.
func New(index GenreIndex, source TagCollector, opts ...Option) *Resolver {
	r := &Resolver{
		index:     index,
		source:    source,
		policy:    DefaultPolicy(),
		log:       zap.NewNop(),
		results:   cache.NewSession[Result](),
		collected: cache.NewSession[[]string](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup resolves the genre and tag string for an ordered tuple of artist
// names, typically the track artist followed by the album artist. A tuple
// seen before in this Resolver is answered from the cache with Cached set.
func (r *Resolver) Lookup(ctx context.Context, artists ...string) Result {
	res, cached := r.results.GetOrCompute(func() (Result, bool) {
		res := r.lookup(ctx, artists)
		// A lookup cut short by cancellation is partial and must not be reused.
		return res, ctx.Err() == nil
	}, artists...)

	if cached {
		r.log.Info("found in session cache, skipping query", zap.Strings("artists", artists))
	}
	res.Cached = cached
	return res
}

func (r *Resolver) lookup(ctx context.Context, artists []string) Result {
	variants := names.Variants(artists...)
	if len(variants) == 0 {
		r.log.Debug("no usable artist names", zap.Strings("artists", artists))
		return Result{}
	}

	var set tags.Set
	for _, collected := range r.collect(ctx, variants) {
		set.Add(collected...)
	}

	return Result{
		Genre: r.resolve(set.All()),
		Tags:  set.String(),
	}
}

// collect returns the raw tags for each variant, querying upstream only for
// variants not collected earlier in this session.
func (r *Resolver) collect(ctx context.Context, variants []string) [][]string {
	out := make([][]string, len(variants))

	var missing []string
	var missingAt []int
	for i, v := range variants {
		if got, ok := r.collected.Get(v); ok {
			out[i] = got
			continue
		}
		missing = append(missing, v)
		missingAt = append(missingAt, i)
	}

	if len(missing) > 0 {
		for j, got := range r.source.CollectAll(ctx, missing) {
			out[missingAt[j]] = got
			if ctx.Err() == nil {
				r.collected.Put(got, missing[j])
			}
		}
	}
	return out
}

// Resolve reconciles an already aggregated tag list and returns the genre,
// or "" when neither a tag nor a backup pattern matched.
func (r *Resolver) Resolve(tagList []string) string {
	return r.resolve(slices.Values(tagList))
}

func (r *Resolver) resolve(tagSeq iter.Seq[string]) string {
	var backups []string

	for tag := range tagSeq {
		if g, ok := r.policy.backup(tag); ok {
			backups = append(backups, g)
			r.log.Debug("setting backup genre", zap.String("tag", tag), zap.Strings("backups", backups))
			continue
		}

		if g := r.tagToGenre(tag); g != "" {
			r.log.Debug("tag matches genre", zap.String("tag", tag), zap.String("genre", g))
			return g
		}
		r.log.Debug("tag", zap.String("tag", tag))
	}

	if len(backups) > 0 {
		return backups[0]
	}
	return ""
}

func (r *Resolver) tagToGenre(tag string) string {
	if r.policy.isException(tag) {
		return ""
	}
	if g, ok := r.policy.override(tag); ok {
		return g
	}
	return r.index.Resolve(tag)
}
