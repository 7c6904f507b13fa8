package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrackRepository handles library track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

// Selected retrieves all selected tracks in library order.
func (r *TrackRepository) Selected(ctx context.Context) ([]LibraryTrack, error) {
	query := `
		SELECT id, position, name, artist, album_artist, "grouping", genre, selected, updated_at
		FROM library_tracks
		WHERE selected
		ORDER BY position, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying selected tracks: %w", err)
	}
	defer rows.Close()

	var tracks []LibraryTrack
	for rows.Next() {
		var track LibraryTrack
		if err := rows.Scan(
			&track.ID,
			&track.Position,
			&track.Name,
			&track.Artist,
			&track.AlbumArtist,
			&track.Grouping,
			&track.Genre,
			&track.Selected,
			&track.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// SetGrouping overwrites the grouping column of a track.
func (r *TrackRepository) SetGrouping(ctx context.Context, id int64, grouping string) error {
	return r.setColumn(ctx, "grouping", id, grouping)
}

// SetGenre overwrites the genre column of a track.
func (r *TrackRepository) SetGenre(ctx context.Context, id int64, genre string) error {
	return r.setColumn(ctx, "genre", id, genre)
}

// setColumn updates one text column. column must be a trusted identifier.
func (r *TrackRepository) setColumn(ctx context.Context, column string, id int64, value string) error {
	query := `UPDATE library_tracks SET ` + pgx.Identifier{column}.Sanitize() + ` = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("updating track %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertBatch inserts multiple tracks in one statement.
func (r *TrackRepository) InsertBatch(ctx context.Context, tracks []LibraryTrack) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO library_tracks (position, name, artist, album_artist, selected)
		SELECT * FROM unnest($1::int[], $2::text[], $3::text[], $4::text[], $5::bool[])
	`

	positions := make([]int, len(tracks))
	names := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	albumArtists := make([]string, len(tracks))
	selected := make([]bool, len(tracks))

	for i, t := range tracks {
		positions[i] = t.Position
		names[i] = t.Name
		artists[i] = t.Artist
		albumArtists[i] = t.AlbumArtist
		selected[i] = t.Selected
	}

	_, err := r.pool.Exec(ctx, query, positions, names, artists, albumArtists, selected)
	if err != nil {
		return fmt.Errorf("batch inserting tracks: %w", err)
	}
	return nil
}

// NextPosition returns the position after the last track in the library.
func (r *TrackRepository) NextPosition(ctx context.Context) (int, error) {
	var next int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM library_tracks`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("querying next position: %w", err)
	}
	return next, nil
}
