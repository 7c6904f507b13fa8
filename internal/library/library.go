// Package library reads the selected tracks of a music library and writes
// the grouping and genre fields back.
package library

import (
	"context"
	"errors"
)

// ErrUnsupported is returned for tracks whose format cannot be tagged.
var ErrUnsupported = errors.New("unsupported format")

// Track is one selected library item.
type Track struct {
	// ID is driver specific: a file path or a database row id.
	ID          string
	Title       string
	Artist      string
	AlbumArtist string
}

// Driver exposes a library selection and field writers.
type Driver interface {
	// Selection returns the selected tracks in library order.
	Selection(ctx context.Context) ([]Track, error)
	SetGrouping(ctx context.Context, t Track, grouping string) error
	SetGenre(ctx context.Context, t Track, genre string) error
}
