// Package sync copies tracks from audio files into the library database so
// that they can be tagged through the database driver.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justestif/genrefixer/internal/db"
	"github.com/justestif/genrefixer/internal/library"
)

// Common errors.
var (
	// ErrNothingToImport is returned when the file selection is empty.
	ErrNothingToImport = errors.New("no taggable files found")
)

// TrackWriter abstracts the track repository for testing.
type TrackWriter interface {
	NextPosition(ctx context.Context) (int, error)
	InsertBatch(ctx context.Context, tracks []db.LibraryTrack) error
}

// Selector yields tracks to import.
type Selector interface {
	Selection(ctx context.Context) ([]library.Track, error)
}

// Service imports file selections into the database.
type Service struct {
	tracks   TrackWriter
	selected bool
}

// Option configures a Service.
type Option func(*Service)

// WithSelected marks imported tracks as selected for the next run.
func WithSelected(selected bool) Option {
	return func(s *Service) {
		s.selected = selected
	}
}

// New creates a new sync service.
func New(tracks TrackWriter, opts ...Option) *Service {
	s := &Service{
		tracks:   tracks,
		selected: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncResult contains the result of a sync operation.
type SyncResult struct {
	TracksCount int
	SyncedAt    time.Time
}

// ImportFiles appends the selection to the library after its current last
// position, preserving selection order.
func (s *Service) ImportFiles(ctx context.Context, files Selector) (*SyncResult, error) {
	tracks, err := files.Selection(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading files: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNothingToImport
	}

	start, err := s.tracks.NextPosition(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]db.LibraryTrack, len(tracks))
	for i, t := range tracks {
		rows[i] = db.LibraryTrack{
			Position:    start + i,
			Name:        t.Title,
			Artist:      t.Artist,
			AlbumArtist: t.AlbumArtist,
			Selected:    s.selected,
		}
	}

	if err := s.tracks.InsertBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("inserting tracks: %w", err)
	}

	return &SyncResult{
		TracksCount: len(rows),
		SyncedAt:    time.Now(),
	}, nil
}
