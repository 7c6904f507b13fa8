// Package fixer runs genre resolution over a library selection and writes
// the results back.
package fixer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/genrefixer/internal/library"
	"github.com/justestif/genrefixer/internal/resolver"
)

// Looker resolves a name tuple to a genre and tag string.
type Looker interface {
	Lookup(ctx context.Context, artists ...string) resolver.Result
}

// Options control what a run writes.
type Options struct {
	// SetGenre also writes the genre field when a genre was resolved.
	SetGenre bool
}

// Summary counts the outcome of a run.
type Summary struct {
	RunID uuid.UUID
	Total int
	// Tagged counts tracks written from a fresh lookup.
	Tagged int
	// Skipped counts tracks with no tags or a failed write.
	Skipped int
	// Identical counts tracks written from a cached lookup.
	Identical int
}

// Outcome is the per-track result reported to the progress hook.
type Outcome struct {
	Track  library.Track
	Result resolver.Result
	Err    error
}

// Fixer processes a library selection one track at a time, in order.
type Fixer struct {
	driver   library.Driver
	looker   Looker
	opts     Options
	log      *zap.Logger
	start    func(total int)
	progress func(Outcome)
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(f *Fixer) {
		if log != nil {
			f.log = log
		}
	}
}

// WithProgress registers a hook called after every track.
func WithProgress(fn func(Outcome)) Option {
	return func(f *Fixer) {
		f.progress = fn
	}
}

// WithStart registers a hook called once with the selection size.
func WithStart(fn func(total int)) Option {
	return func(f *Fixer) {
		f.start = fn
	}
}

// New creates a Fixer.
func New(driver library.Driver, looker Looker, opts Options, options ...Option) *Fixer {
	f := &Fixer{
		driver: driver,
		looker: looker,
		opts:   opts,
		log:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Run tags every selected track. A failure to read the selection aborts the
// run; per-track failures are logged and counted as skipped.
func (f *Fixer) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: uuid.New()}
	log := f.log.With(zap.String("run_id", summary.RunID.String()))

	tracks, err := f.driver.Selection(ctx)
	if err != nil {
		return summary, fmt.Errorf("getting selection: %w", err)
	}
	summary.Total = len(tracks)
	log.Info("starting run", zap.Int("tracks", len(tracks)), zap.Bool("set_genre", f.opts.SetGenre))
	if f.start != nil {
		f.start(len(tracks))
	}

	for _, t := range tracks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		out := f.fixTrack(ctx, log, t)
		switch {
		case out.Err != nil || out.Result.Tags == "":
			summary.Skipped++
		case out.Result.Cached:
			summary.Identical++
		default:
			summary.Tagged++
		}

		if f.progress != nil {
			f.progress(out)
		}
	}

	log.Info("run finished",
		zap.Int("tagged", summary.Tagged),
		zap.Int("skipped", summary.Skipped),
		zap.Int("identical", summary.Identical),
	)
	return summary, nil
}

func (f *Fixer) fixTrack(ctx context.Context, log *zap.Logger, t library.Track) Outcome {
	log = log.With(zap.String("track", t.ID))
	log.Info("looking up", zap.String("artist", t.Artist), zap.String("album_artist", t.AlbumArtist))

	res := f.looker.Lookup(ctx, t.Artist, t.AlbumArtist)
	out := Outcome{Track: t, Result: res}

	if err := ctx.Err(); err != nil {
		// The lookup may have been cut short; leave the track untouched.
		out.Err = err
		return out
	}

	if res.Tags == "" {
		log.Info("no tags found")
		return out
	}

	log.Info("tagging", zap.String("grouping", res.Tags))
	if err := f.driver.SetGrouping(ctx, t, res.Tags); err != nil {
		log.Warn("writing grouping failed, skipping track", zap.Error(err))
		out.Err = fmt.Errorf("writing grouping: %w", err)
		return out
	}

	if f.opts.SetGenre && res.Genre != "" {
		log.Info("setting genre", zap.String("genre", res.Genre))
		if err := f.driver.SetGenre(ctx, t, res.Genre); err != nil {
			log.Warn("writing genre failed, skipping track", zap.Error(err))
			out.Err = fmt.Errorf("writing genre: %w", err)
		}
	}
	return out
}
