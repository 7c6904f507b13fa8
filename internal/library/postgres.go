package library

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/justestif/genrefixer/internal/db"
)

// TrackStore abstracts the track repository for testing.
type TrackStore interface {
	Selected(ctx context.Context) ([]db.LibraryTrack, error)
	SetGrouping(ctx context.Context, id int64, grouping string) error
	SetGenre(ctx context.Context, id int64, genre string) error
}

// Postgres is a Driver over the library_tracks table. The selection is every
// row flagged selected, ordered by position.
type Postgres struct {
	store  TrackStore
	dryRun bool
	log    *zap.Logger
}

// NewPostgres creates a database driver.
func NewPostgres(store TrackStore, dryRun bool, log *zap.Logger) *Postgres {
	if log == nil {
		log = zap.NewNop()
	}
	return &Postgres{store: store, dryRun: dryRun, log: log}
}

// Selection returns the selected rows.
func (p *Postgres) Selection(ctx context.Context) ([]Track, error) {
	rows, err := p.store.Selected(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading selection: %w", err)
	}

	tracks := make([]Track, len(rows))
	for i, r := range rows {
		tracks[i] = Track{
			ID:          strconv.FormatInt(r.ID, 10),
			Title:       r.Name,
			Artist:      r.Artist,
			AlbumArtist: r.AlbumArtist,
		}
	}
	return tracks, nil
}

// SetGrouping updates the grouping column.
func (p *Postgres) SetGrouping(ctx context.Context, t Track, grouping string) error {
	id, err := p.rowID(t)
	if err != nil || p.skip(t, "grouping", grouping) {
		return err
	}
	return p.store.SetGrouping(ctx, id, grouping)
}

// SetGenre updates the genre column.
func (p *Postgres) SetGenre(ctx context.Context, t Track, genre string) error {
	id, err := p.rowID(t)
	if err != nil || p.skip(t, "genre", genre) {
		return err
	}
	return p.store.SetGenre(ctx, id, genre)
}

func (p *Postgres) rowID(t Track) (int64, error) {
	id, err := strconv.ParseInt(t.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid track id %q: %w", t.ID, err)
	}
	return id, nil
}

func (p *Postgres) skip(t Track, field, value string) bool {
	if p.dryRun {
		p.log.Info("dry run, not writing",
			zap.String("track", t.ID),
			zap.String("field", field),
			zap.String("value", value),
		)
	}
	return p.dryRun
}
