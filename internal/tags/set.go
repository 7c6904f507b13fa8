package tags

import (
	"iter"
	"slices"
	"strings"
)

// Set is an ordered tag collection deduplicated case-insensitively. The first
// spelling of a tag wins. The zero value is ready to use.
type Set struct {
	seen map[string]struct{}
	tags []string
}

// Add appends tags that are not already present. Tags are trimmed and blank
// tags are ignored.
func (s *Set) Add(tags ...string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		s.tags = append(s.tags, t)
	}
}

// All iterates the tags in insertion order.
func (s *Set) All() iter.Seq[string] {
	return slices.Values(s.tags)
}

// Tags returns a copy of the tags in insertion order.
func (s *Set) Tags() []string {
	return slices.Clone(s.tags)
}

// Len returns the number of distinct tags.
func (s *Set) Len() int { return len(s.tags) }

// String joins the tags with single spaces.
func (s *Set) String() string {
	return strings.Join(s.tags, " ")
}
