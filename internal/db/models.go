package db

import "time"

// LibraryTrack is one row of the library_tracks table.
type LibraryTrack struct {
	ID          int64
	Position    int
	Name        string
	Artist      string
	AlbumArtist string
	Grouping    *string // nullable
	Genre       *string // nullable
	Selected    bool
	UpdatedAt   time.Time
}
