package genre

import (
	"maps"
	"sync"

	"go.uber.org/zap"
)

// Index resolves tags to canonical genres by phonetic key. The key mapping is
// built from the table on first use and is read-only afterwards, so a single
// Index may be shared between goroutines.
type Index struct {
	table *Table
	log   *zap.Logger

	once   sync.Once
	byKey  map[string]string
	genres []string
}

// NewIndex creates an index over table. The mapping is not built until the
// first lookup.
func NewIndex(table *Table, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{
		table: table,
		log:   log,
	}
}

// Resolve returns the canonical genre for tag, or "" when the tag has no
// phonetic key or no synonym shares its key.
func (idx *Index) Resolve(tag string) string {
	idx.once.Do(idx.build)

	key := Key(Normalize(tag))
	if key == "" {
		return ""
	}
	return idx.byKey[key]
}

// Genres returns the canonical genre names in table order.
func (idx *Index) Genres() []string {
	idx.once.Do(idx.build)
	out := make([]string, len(idx.genres))
	copy(out, idx.genres)
	return out
}

// Mapping returns a copy of the key to genre mapping.
func (idx *Index) Mapping() map[string]string {
	idx.once.Do(idx.build)
	return maps.Clone(idx.byKey)
}

// build inserts every synonym in table order. A key that is already taken is
// overwritten by the later definition.
func (idx *Index) build() {
	idx.byKey = make(map[string]string)
	seen := make(map[string]bool)

	for _, def := range idx.table.Definitions {
		if !seen[def.Genre] {
			seen[def.Genre] = true
			idx.genres = append(idx.genres, def.Genre)
		}

		for _, syn := range def.Synonyms {
			key := Key(Normalize(syn))
			if key == "" {
				idx.log.Warn("genre synonym has no phonetic key",
					zap.String("genre", def.Genre),
					zap.String("synonym", syn))
				continue
			}

			if old, ok := idx.byKey[key]; ok {
				if old != def.Genre {
					idx.log.Warn("conflicting phonetic key, overwriting",
						zap.String("key", key),
						zap.String("old", old),
						zap.String("synonym", syn),
						zap.String("genre", def.Genre))
				} else {
					idx.log.Debug("duplicate phonetic key",
						zap.String("key", key),
						zap.String("synonym", syn),
						zap.String("genre", def.Genre))
				}
			}
			idx.byKey[key] = def.Genre
		}
	}

	idx.log.Debug("genre index built",
		zap.Int("genres", len(idx.genres)),
		zap.Int("keys", len(idx.byKey)))
}
