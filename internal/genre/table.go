// Package genre maps free-text folksonomy tags onto a small canonical genre
// vocabulary using a soundex-family phonetic index.
package genre

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrTableLoad is returned when the canonical genre table cannot be read or
// contains no definitions. The resolver is useless without it.
var ErrTableLoad = errors.New("loading genre table")

//go:embed genres.txt
var defaultTable []byte

// Definition is one line of the genre table: a canonical genre and the
// free-text synonyms that should resolve to it.
type Definition struct {
	Genre    string
	Synonyms []string
}

// Table is an ordered list of genre definitions. Order matters: phonetic key
// collisions are resolved last-write-wins in table order.
type Table struct {
	Definitions []Definition
}

// LoadTable reads the genre table at path. An empty path loads the table
// embedded in the binary.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return ParseTable(bytes.NewReader(defaultTable))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTableLoad, err)
	}
	defer f.Close()

	return ParseTable(f)
}

// DefaultTable returns the embedded genre table.
func DefaultTable() *Table {
	t, err := ParseTable(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("embedded genre table: %v", err))
	}
	return t
}

// ParseTable parses definitions of the form "Genre=syn1,syn2,...". A bare
// "Genre" line means the genre is its own sole synonym. Blank lines and lines
// starting with '#' are skipped.
func ParseTable(r io.Reader) (*Table, error) {
	var defs []Definition

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, synonyms, found := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !found {
			synonyms = name
		}

		def := Definition{Genre: name}
		for _, syn := range strings.Split(synonyms, ",") {
			if syn = strings.TrimSpace(syn); syn != "" {
				def.Synonyms = append(def.Synonyms, syn)
			}
		}
		defs = append(defs, def)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTableLoad, err)
	}

	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no genre definitions", ErrTableLoad)
	}

	return &Table{Definitions: defs}, nil
}
