package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"go.uber.org/zap"
)

// Field names per container.
const (
	id3Grouping    = "TIT1"
	id3Genre       = "TCON"
	vorbisGrouping = "GROUPING"
	vorbisGenre    = flacvorbis.FIELD_GENRE
)

// Files is a Driver over audio files on disk. The selection is the given
// files plus every supported file below the given directories.
type Files struct {
	paths  []string
	dryRun bool
	log    *zap.Logger
}

// FilesOption configures a Files driver.
type FilesOption func(*Files)

// WithDryRun makes the writers log instead of touching files.
func WithDryRun(dryRun bool) FilesOption {
	return func(f *Files) {
		f.dryRun = dryRun
	}
}

// WithFilesLogger sets the logger.
func WithFilesLogger(log *zap.Logger) FilesOption {
	return func(f *Files) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFiles creates a file driver over paths.
func NewFiles(paths []string, opts ...FilesOption) *Files {
	f := &Files{paths: paths, log: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac":
		return true
	}
	return false
}

// Selection walks the configured paths in order. Directories are expanded
// in lexical order. Unreadable files are logged and skipped.
func (f *Files) Selection(ctx context.Context) ([]Track, error) {
	var files []string
	for _, p := range f.paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading selection: %w", err)
		}
		if !info.IsDir() {
			if supported(p) {
				files = append(files, p)
			} else {
				f.log.Warn("skipping unsupported file", zap.String("path", p))
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}

	tracks := make([]Track, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := readTrack(path)
		if err != nil {
			f.log.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func readTrack(path string) (Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return Track{}, err
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		return Track{}, fmt.Errorf("reading tags: %w", err)
	}

	return Track{
		ID:          path,
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
	}, nil
}

// SetGrouping writes the grouping field of the file.
func (f *Files) SetGrouping(ctx context.Context, t Track, grouping string) error {
	return f.write(t, id3Grouping, vorbisGrouping, grouping)
}

// SetGenre writes the genre field of the file.
func (f *Files) SetGenre(ctx context.Context, t Track, genre string) error {
	return f.write(t, id3Genre, vorbisGenre, genre)
}

func (f *Files) write(t Track, id3Frame, vorbisField, value string) error {
	if f.dryRun {
		f.log.Info("dry run, not writing",
			zap.String("path", t.ID),
			zap.String("field", vorbisField),
			zap.String("value", value),
		)
		return nil
	}

	switch strings.ToLower(filepath.Ext(t.ID)) {
	case ".mp3":
		return writeID3(t.ID, id3Frame, value)
	case ".flac":
		return writeVorbis(t.ID, vorbisField, value)
	default:
		return fmt.Errorf("%s: %w", t.ID, ErrUnsupported)
	}
}

// writeID3 replaces one text frame in an MP3 file using ID3v2.
func writeID3(path, frame, value string) error {
	mp3Tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("opening MP3 file: %w", err)
	}
	defer mp3Tag.Close()

	mp3Tag.AddTextFrame(frame, mp3Tag.DefaultEncoding(), value)

	if err := mp3Tag.Save(); err != nil {
		return fmt.Errorf("saving MP3 tags: %w", err)
	}
	return nil
}

// writeVorbis replaces one comment field in a FLAC file, creating the
// comment block when the file has none.
func writeVorbis(path, field, value string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing FLAC file: %w", err)
	}

	var cmts *flacvorbis.MetaDataBlockVorbisComment
	cmtIdx := -1
	for idx, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmts, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("parsing vorbis comment: %w", err)
			}
			cmtIdx = idx
			break
		}
	}
	if cmts == nil {
		cmts = flacvorbis.New()
	}

	// Add appends, so drop the old values first.
	prefix := field + "="
	kept := cmts.Comments[:0]
	for _, c := range cmts.Comments {
		if len(c) >= len(prefix) && strings.EqualFold(c[:len(prefix)], prefix) {
			continue
		}
		kept = append(kept, c)
	}
	cmts.Comments = kept

	if err := cmts.Add(field, value); err != nil {
		return fmt.Errorf("adding %s: %w", field, err)
	}

	cmtsMeta := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &cmtsMeta
	} else {
		f.Meta = append(f.Meta, &cmtsMeta)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("saving FLAC file: %w", err)
	}
	return nil
}
