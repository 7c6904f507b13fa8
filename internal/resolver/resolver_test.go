package resolver

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justestif/genrefixer/internal/genre"
)

// mockCollector implements TagCollector for testing.
type mockCollector struct {
	mu    sync.Mutex
	tags  map[string][]string
	calls []string
}

func (m *mockCollector) CollectAll(ctx context.Context, names []string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]string, len(names))
	for i, n := range names {
		m.calls = append(m.calls, n)
		if ctx.Err() != nil {
			continue
		}
		out[i] = m.tags[n]
	}
	return out
}

func testIndex(t *testing.T) *genre.Index {
	t.Helper()
	table, err := genre.ParseTable(strings.NewReader(strings.Join([]string{
		"Rock=Rock,Hard Rock",
		"Jazz",
		"R&B=R&B,RnB",
		"Dance",
		"Latin=Brazilian",
		"New Age",
		"Classical=Ballet",
	}, "\n")))
	require.NoError(t, err)
	return genre.NewIndex(table, zap.NewNop())
}

func newTestResolver(t *testing.T, tags map[string][]string) (*Resolver, *mockCollector) {
	t.Helper()
	c := &mockCollector{tags: tags}
	return New(testIndex(t), c), c
}

func TestResolve_FirstMatchWins(t *testing.T) {
	r, _ := newTestResolver(t, nil)
	assert.Equal(t, "Rock", r.Resolve([]string{"xyz-unmatched", "Rock", "Jazz"}))
	assert.Equal(t, "Jazz", r.Resolve([]string{"jazz", "rock"}))
}

func TestResolve_Exceptions(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	// Each of these collides with an indexed synonym.
	for _, tag := range []string{"rap", "danish", "rumba", "brooklyn", "naija", "ballad", "RAP", "Ballad"} {
		t.Run(tag, func(t *testing.T) {
			assert.Equal(t, "", r.Resolve([]string{tag}))
		})
	}

	// The exception list only blocks exact tags.
	assert.Equal(t, "R&B", r.Resolve([]string{"R&B"}))
}

func TestResolve_ReggaeOverride(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	for _, tag := range []string{"reggae", "Reggaeton", "roots REGGAE"} {
		t.Run(tag, func(t *testing.T) {
			assert.Equal(t, "Reggae", r.Resolve([]string{tag}))
		})
	}

	// Without the override "Reggae" shares a key with Rock.
	assert.Equal(t, "Rock", r.index.Resolve("Reggae"))
}

func TestResolve_Backups(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"backup does not stop iteration", []string{"1985", "Jazz"}, "Jazz"},
		{"backup used when nothing resolves", []string{"1985", "zzz-unmatched"}, "Oldies"},
		{"decade token", []string{"60s", "seen live"}, "Oldies"},
		{"long decade token", []string{"1960s"}, "Oldies"},
		{"first backup wins", []string{"folk", "50s"}, "Folk"},
		{"folk is exact", []string{"folk rock"}, ""},
		{"Folk any case", []string{"FOLK"}, "Folk"},
		{"seventies and later decades are not oldies", []string{"80s", "90s"}, ""},
		{"no tags", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.tags))
		})
	}
}

func TestResolve_BackupTagIsNotIndexed(t *testing.T) {
	// "Folk" is also a canonical genre here, but the backup rule claims the
	// tag first, so a later resolving tag still wins.
	table, err := genre.ParseTable(strings.NewReader("Folk\nJazz\n"))
	require.NoError(t, err)
	r := New(genre.NewIndex(table, nil), &mockCollector{})

	assert.Equal(t, "Jazz", r.Resolve([]string{"folk", "jazz"}))
}

func TestResolve_CustomPolicy(t *testing.T) {
	c := &mockCollector{}
	r := New(testIndex(t), c, WithPolicy(Policy{
		Backups:    []Backup{{Genre: "Soundtrack", Pattern: regexp.MustCompile(`(?i)^ost$`)}},
		Exceptions: []string{"hard rock"},
		Overrides:  []Override{{Contains: "bossa", Genre: "Latin"}},
	}))

	assert.Equal(t, "", r.Resolve([]string{"hard rock"}))
	assert.Equal(t, "Latin", r.Resolve([]string{"Bossa Nova"}))
	assert.Equal(t, "Soundtrack", r.Resolve([]string{"OST"}))
	assert.Equal(t, "Rock", r.Resolve([]string{"Reggae"}), "default override is replaced")
}

func TestLookup(t *testing.T) {
	r, c := newTestResolver(t, map[string][]string{
		"Artist feat. Other": {"seen live", "1985"},
		"Artist":             {"Rock", "rock", "Pop"},
		"Artist & Other":     {"Jazz"},
	})

	got := r.Lookup(context.Background(), "Artist feat. Other", "Artist")

	assert.Equal(t, "Rock", got.Genre)
	assert.Equal(t, "seen live 1985 Rock Pop Jazz", got.Tags)
	assert.False(t, got.Cached)
	assert.Equal(t, []string{"Artist feat. Other", "Artist", "Artist & Other"}, c.calls)
}

func TestLookup_TagStringWrittenEvenWithoutGenre(t *testing.T) {
	r, _ := newTestResolver(t, map[string][]string{
		"Nobody": {"seen live", "female vocalists"},
	})

	got := r.Lookup(context.Background(), "Nobody")
	assert.Equal(t, "", got.Genre)
	assert.Equal(t, "seen live female vocalists", got.Tags)
}

func TestLookup_CacheRoundTrip(t *testing.T) {
	r, c := newTestResolver(t, map[string][]string{
		"Miles Davis": {"jazz", "bebop"},
	})
	ctx := context.Background()

	first := r.Lookup(ctx, "Miles Davis", "Miles Davis")
	calls := len(c.calls)
	require.Positive(t, calls)

	second := r.Lookup(ctx, "Miles Davis", "Miles Davis")

	assert.Len(t, c.calls, calls, "second lookup must not query upstream")
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Genre, second.Genre)
	assert.Equal(t, first.Tags, second.Tags)
}

func TestLookup_CancelledIsNotCached(t *testing.T) {
	r, _ := newTestResolver(t, map[string][]string{
		"Miles Davis": {"jazz", "bebop"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	first := r.Lookup(ctx, "Miles Davis")
	assert.Equal(t, Result{}, first)

	second := r.Lookup(context.Background(), "Miles Davis")
	assert.Equal(t, "Jazz", second.Genre)
	assert.Equal(t, "jazz bebop", second.Tags)
	assert.False(t, second.Cached)

	third := r.Lookup(context.Background(), "Miles Davis")
	assert.True(t, third.Cached)
}

func TestLookup_VariantsSharedAcrossTuples(t *testing.T) {
	r, c := newTestResolver(t, map[string][]string{
		"Moby": {"electronic"},
	})
	ctx := context.Background()

	r.Lookup(ctx, "Moby")
	r.Lookup(ctx, "Moby", "")

	assert.Equal(t, []string{"Moby"}, c.calls)
}

func TestLookup_EmptyInputs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
	}{
		{"no names", nil},
		{"blank names", []string{"", " "}},
		{"various artists", []string{"Various Artists", "VARIOUS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := newTestResolver(t, map[string][]string{})

			got := r.Lookup(context.Background(), tt.input...)

			assert.Equal(t, "", got.Genre)
			assert.Equal(t, "", got.Tags)
			assert.Empty(t, c.calls)
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, []string{"rap", "danish", "rumba", "brooklyn", "naija", "ballad"}, p.Exceptions)
	require.Len(t, p.Backups, 2)
	assert.Equal(t, "Oldies", p.Backups[0].Genre)
	assert.Equal(t, "Folk", p.Backups[1].Genre)
}
