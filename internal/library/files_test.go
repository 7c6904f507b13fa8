package library

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAudio stands in for MPEG or FLAC frame data.
var fakeAudio = bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 64)

func writeMP3(t *testing.T, dir, name, artist, albumArtist string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, fakeAudio, 0o600))

	mp3Tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer mp3Tag.Close()

	mp3Tag.SetTitle("Song")
	mp3Tag.SetArtist(artist)
	mp3Tag.AddTextFrame("TPE2", mp3Tag.DefaultEncoding(), albumArtist)
	require.NoError(t, mp3Tag.Save())
	return path
}

func writeFLAC(t *testing.T, dir, name, artist, albumArtist string) string {
	t.Helper()
	path := filepath.Join(dir, name)

	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 0x22}) // last block, STREAMINFO, 34 bytes
	buf.Write(make([]byte, 34))
	buf.Write(fakeAudio)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	require.NoError(t, writeVorbis(path, "TITLE", "Song"))
	require.NoError(t, writeVorbis(path, "ARTIST", artist))
	require.NoError(t, writeVorbis(path, "ALBUMARTIST", albumArtist))
	return path
}

func readID3Frame(t *testing.T, path, frame string) string {
	t.Helper()
	mp3Tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer mp3Tag.Close()
	return mp3Tag.GetTextFrame(frame).Text
}

func readVorbisField(t *testing.T, path, field string) []string {
	t.Helper()
	f, err := flac.ParseFile(path)
	require.NoError(t, err)
	for _, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			require.NoError(t, err)
			values, err := cmts.Get(field)
			require.NoError(t, err)
			return values
		}
	}
	return nil
}

func TestFiles_Selection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	writeFLAC(t, dir, "b.flac", "Nina Simone", "Nina Simone")
	writeMP3(t, dir, "a.mp3", "Bob Marley", "Bob Marley & The Wailers")
	writeMP3(t, filepath.Join(dir, "sub"), "c.mp3", "Cher", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	tracks, err := NewFiles([]string{dir}).Selection(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 3)

	assert.Equal(t, filepath.Join(dir, "a.mp3"), tracks[0].ID)
	assert.Equal(t, "Bob Marley", tracks[0].Artist)
	assert.Equal(t, "Bob Marley & The Wailers", tracks[0].AlbumArtist)
	assert.Equal(t, "Song", tracks[0].Title)

	assert.Equal(t, filepath.Join(dir, "b.flac"), tracks[1].ID)
	assert.Equal(t, "Nina Simone", tracks[1].Artist)
	assert.Equal(t, "Nina Simone", tracks[1].AlbumArtist)

	assert.Equal(t, filepath.Join(dir, "sub", "c.mp3"), tracks[2].ID)
	assert.Equal(t, "Cher", tracks[2].Artist)
}

func TestFiles_SelectionKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	z := writeMP3(t, dir, "z.mp3", "Z", "")
	a := writeMP3(t, dir, "a.mp3", "A", "")

	tracks, err := NewFiles([]string{z, a}).Selection(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, z, tracks[0].ID)
	assert.Equal(t, a, tracks[1].ID)
}

func TestFiles_SelectionSkipsUntaggedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bare.mp3"), fakeAudio, 0o600))
	writeMP3(t, dir, "tagged.mp3", "Moby", "")

	tracks, err := NewFiles([]string{dir}).Selection(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Moby", tracks[0].Artist)
}

func TestFiles_SelectionMissingPath(t *testing.T) {
	_, err := NewFiles([]string{filepath.Join(t.TempDir(), "missing")}).Selection(context.Background())
	assert.Error(t, err)
}

func TestFiles_WriteMP3(t *testing.T) {
	path := writeMP3(t, t.TempDir(), "a.mp3", "Bob Marley", "")
	f := NewFiles(nil)
	tr := Track{ID: path}
	ctx := context.Background()

	require.NoError(t, f.SetGrouping(ctx, tr, "reggae roots ska"))
	require.NoError(t, f.SetGenre(ctx, tr, "Reggae"))
	require.NoError(t, f.SetGrouping(ctx, tr, "reggae"))

	assert.Equal(t, "reggae", readID3Frame(t, path, "TIT1"))
	assert.Equal(t, "Reggae", readID3Frame(t, path, "TCON"))
	assert.Equal(t, "Bob Marley", readID3Frame(t, path, "TPE1"), "other frames survive")
}

func TestFiles_WriteFLAC(t *testing.T) {
	path := writeFLAC(t, t.TempDir(), "a.flac", "Nina Simone", "")
	f := NewFiles(nil)
	tr := Track{ID: path}
	ctx := context.Background()

	require.NoError(t, f.SetGrouping(ctx, tr, "jazz soul"))
	require.NoError(t, f.SetGrouping(ctx, tr, "jazz soul blues"))
	require.NoError(t, f.SetGenre(ctx, tr, "Jazz"))

	assert.Equal(t, []string{"jazz soul blues"}, readVorbisField(t, path, "GROUPING"), "old value replaced")
	assert.Equal(t, []string{"Jazz"}, readVorbisField(t, path, "GENRE"))
	assert.Equal(t, []string{"Nina Simone"}, readVorbisField(t, path, "ARTIST"))

	tracks, err := NewFiles([]string{path}).Selection(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Nina Simone", tracks[0].Artist, "file still readable after rewrite")
}

func TestFiles_DryRun(t *testing.T) {
	path := writeMP3(t, t.TempDir(), "a.mp3", "Bob Marley", "")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	f := NewFiles(nil, WithDryRun(true))
	require.NoError(t, f.SetGrouping(context.Background(), Track{ID: path}, "reggae"))
	require.NoError(t, f.SetGenre(context.Background(), Track{ID: path}, "Reggae"))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFiles_WriteUnsupported(t *testing.T) {
	err := NewFiles(nil).SetGenre(context.Background(), Track{ID: "song.ogg"}, "Rock")
	assert.ErrorIs(t, err, ErrUnsupported)
}
