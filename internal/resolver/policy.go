package resolver

import (
	"regexp"
	"strings"
)

// Backup maps a tag pattern to a low-confidence genre used only when no tag
// resolves to a canonical genre.
type Backup struct {
	Genre   string
	Pattern *regexp.Regexp
}

// Override forces a genre for any tag containing a substring.
type Override struct {
	Contains string
	Genre    string
}

// Policy holds the hand-curated rules applied around the phonetic index.
type Policy struct {
	// Backups are tested in order before canonical matching.
	Backups []Backup
	// Exceptions are tags known to collide phonetically with an unrelated
	// genre. They are compared case-insensitively and never resolve.
	Exceptions []string
	// Overrides win over the index result.
	Overrides []Override
}

// DefaultPolicy returns the stock rule set.
func DefaultPolicy() Policy {
	return Policy{
		Backups: []Backup{
			{Genre: "Oldies", Pattern: regexp.MustCompile(`^(19)?[1-6]\d[sS]|^19\d{2}$`)},
			{Genre: "Folk", Pattern: regexp.MustCompile(`(?i)^folk$`)},
		},
		Exceptions: []string{"rap", "danish", "rumba", "brooklyn", "naija", "ballad"},
		Overrides: []Override{
			{Contains: "reggae", Genre: "Reggae"},
		},
	}
}

// backup returns the genre of the first backup pattern matching tag.
func (p Policy) backup(tag string) (string, bool) {
	for _, b := range p.Backups {
		if b.Pattern.MatchString(tag) {
			return b.Genre, true
		}
	}
	return "", false
}

func (p Policy) isException(tag string) bool {
	for _, e := range p.Exceptions {
		if strings.EqualFold(tag, e) {
			return true
		}
	}
	return false
}

func (p Policy) override(tag string) (string, bool) {
	lower := strings.ToLower(tag)
	for _, o := range p.Overrides {
		if strings.Contains(lower, strings.ToLower(o.Contains)) {
			return o.Genre, true
		}
	}
	return "", false
}
