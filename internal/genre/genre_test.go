package genre

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Robert", "R163"},
		{"Tymczak", "T522"},
		{"Pfister", "P236"},
		{"Rock", "R200"},
		{"Reggae", "R200"},
		{"Jazz", "J200"},
		{"Hip Hop", "H110"},
		{"HipHop", "H110"},
		{"Pop", "P100"},
		{"Electronic", "E423"},
		{"R&B", "R100"},
		{"Ska", "S000"},
		{"a", "A000"},
		{"", ""},
		{"2000", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKey_Stable(t *testing.T) {
	for _, s := range []string{"Hip Hop", "hiphop", "Hip-Hop!", "drum and bass", "Ünïcödé"} {
		if Key(s) != Key(s) {
			t.Errorf("Key(%q) is not deterministic", s)
		}
	}
	if Key("Hip Hop") != Key("HipHop") {
		t.Errorf("Key(Hip Hop) = %q, Key(HipHop) = %q, want equal", Key("Hip Hop"), Key("HipHop"))
	}
}

func TestKey_AlwaysFourChars(t *testing.T) {
	for _, s := range []string{"Progressive Rock", "Singer-Songwriter", "Children's Music", "x"} {
		if got := Key(s); len(got) != 4 {
			t.Errorf("Key(%q) = %q, want 4 characters", s, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rock n roll", "Rock & Roll"},
		{"Drum AND bass", "Drum & Bass"},
		{"  heavy   METAL ", "Heavy Metal"},
		{"andante", "Andante"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_StripsHyphens(t *testing.T) {
	if got := Normalize("post-punk"); strings.Contains(got, "-") {
		t.Errorf("Normalize(post-punk) = %q, want no hyphen", got)
	}
}

func TestParseTable(t *testing.T) {
	input := "# comment\nRock=Rock,Hard Rock, Soft Rock\r\n\nJazz\nPop=\n"

	table, err := ParseTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	if len(table.Definitions) != 3 {
		t.Fatalf("got %d definitions, want 3", len(table.Definitions))
	}

	rock := table.Definitions[0]
	if rock.Genre != "Rock" || len(rock.Synonyms) != 3 || rock.Synonyms[2] != "Soft Rock" {
		t.Errorf("unexpected rock definition: %+v", rock)
	}

	jazz := table.Definitions[1]
	if jazz.Genre != "Jazz" || len(jazz.Synonyms) != 1 || jazz.Synonyms[0] != "Jazz" {
		t.Errorf("bare genre should be its own synonym: %+v", jazz)
	}

	if pop := table.Definitions[2]; len(pop.Synonyms) != 0 {
		t.Errorf("empty synonym list should stay empty: %+v", pop)
	}
}

func TestParseTable_Empty(t *testing.T) {
	_, err := ParseTable(strings.NewReader("# nothing here\n\n"))
	if !errors.Is(err, ErrTableLoad) {
		t.Errorf("ParseTable() error = %v, want ErrTableLoad", err)
	}
}

func TestLoadTable(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		table, err := LoadTable("")
		if err != nil {
			t.Fatalf("LoadTable() error = %v", err)
		}
		if len(table.Definitions) == 0 {
			t.Error("embedded table is empty")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "genres.txt")
		if err := os.WriteFile(path, []byte("Rock=Rock\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		table, err := LoadTable(path)
		if err != nil {
			t.Fatalf("LoadTable() error = %v", err)
		}
		if table.Definitions[0].Genre != "Rock" {
			t.Errorf("unexpected table: %+v", table.Definitions)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTable(filepath.Join(t.TempDir(), "nope.txt"))
		if !errors.Is(err, ErrTableLoad) {
			t.Errorf("LoadTable() error = %v, want ErrTableLoad", err)
		}
	})
}

func testTable(t *testing.T, lines ...string) *Table {
	t.Helper()
	table, err := ParseTable(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	return table
}

func TestIndex_Resolve(t *testing.T) {
	idx := NewIndex(testTable(t,
		"Hip-Hop=Hip Hop,Hiphop",
		"Rock=Rock,Rock and Roll",
		"Jazz",
	), zap.NewNop())

	tests := []struct {
		tag  string
		want string
	}{
		{"Hip Hop", "Hip-Hop"},
		{"hiphop", "Hip-Hop"},
		{"Hip-Hop!", "Hip-Hop"},
		{"ROCK", "Rock"},
		{"rock n roll", "Rock"},
		{"Rock & Roll", "Rock"},
		{"jazz", "Jazz"},
		{"seen live", ""},
		{"", ""},
		{"1985", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := idx.Resolve(tt.tag); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestIndex_LastWriteWins(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	idx := NewIndex(testTable(t,
		"Reggae=Reggae",
		"Rock=Rock",
	), zap.New(core))

	if got := idx.Resolve("Reggae"); got != "Rock" {
		t.Errorf("Resolve(Reggae) = %q, want Rock (later line wins)", got)
	}

	warnings := logs.FilterMessage("conflicting phonetic key, overwriting").All()
	if len(warnings) != 1 {
		t.Fatalf("got %d overwrite warnings, want 1", len(warnings))
	}
	if warnings[0].ContextMap()["old"] != "Reggae" {
		t.Errorf("warning context = %v", warnings[0].ContextMap())
	}

	reversed := NewIndex(testTable(t,
		"Rock=Rock",
		"Reggae=Reggae",
	), zap.NewNop())
	if got := reversed.Resolve("Rock"); got != "Reggae" {
		t.Errorf("Resolve(Rock) = %q, want Reggae when Reggae is listed last", got)
	}
}

func TestIndex_SameGenreCollisionIsQuiet(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	idx := NewIndex(testTable(t, "Electronic=Electronic,Electronica,Electro"), zap.New(core))

	if got := idx.Resolve("electronica"); got != "Electronic" {
		t.Errorf("Resolve(electronica) = %q", got)
	}
	if logs.Len() != 0 {
		t.Errorf("got %d warnings for same-genre collisions, want 0", logs.Len())
	}
}

func TestIndex_BuildIsPure(t *testing.T) {
	table := DefaultTable()

	a := NewIndex(table, zap.NewNop()).Mapping()
	b := NewIndex(table, zap.NewNop()).Mapping()

	if !maps.Equal(a, b) {
		t.Error("building the index twice from the same table produced different mappings")
	}
	if len(a) == 0 {
		t.Error("mapping is empty")
	}
}

func TestIndex_Genres(t *testing.T) {
	idx := NewIndex(testTable(t, "Rock", "Jazz=Jazz,Bebop", "Rock=Hard Rock"), zap.NewNop())

	got := idx.Genres()
	want := []string{"Rock", "Jazz"}
	if len(got) != len(want) {
		t.Fatalf("Genres() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Genres()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDefaultTable(t *testing.T) {
	idx := NewIndex(DefaultTable(), zap.NewNop())

	tests := []struct {
		tag  string
		want string
	}{
		{"rock", "Rock"},
		{"Jazz", "Jazz"},
		{"Hip-Hop", "Hip-Hop"},
		{"hip hop", "Hip-Hop"},
		{"electronica", "Electronic"},
		{"drum n bass", "Electronic"},
		{"heavy metal", "Metal"},
		{"indie rock", "Alternative"},
		{"rhythm and blues", "R&B"},
		{"singer-songwriter", "Singer/Songwriter"},
		{"bossa nova", "Latin"},
		{"female vocalists", ""},
		{"seen live", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := idx.Resolve(tt.tag); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}
