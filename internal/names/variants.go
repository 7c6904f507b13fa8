// Package names expands artist names into alternate spellings so that
// upstream lookups succeed despite inconsistent "feat."/"&"/"vs." formatting.
package names

import (
	"regexp"
	"strings"
)

// transform rewrites one name into an alternate spelling.
type transform func(string) string

func replaceAll(re *regexp.Regexp, repl string) transform {
	return func(s string) string { return re.ReplaceAllString(s, repl) }
}

var (
	featuring = regexp.MustCompile(`(?i)[;/,]| ft | feat\.? | featuring `)
	andWith   = regexp.MustCompile(`(?i) and | with `)
	versus    = regexp.MustCompile(`(?i) vs\.? `)
	article   = regexp.MustCompile(`(?i)^the | the `)
	various   = regexp.MustCompile(`(?i)various`)
	spaces    = regexp.MustCompile(`\s+`)
)

// transforms are applied in order, each to every name gathered so far, so
// later rewrites also see the output of earlier ones.
var transforms = []transform{
	func(s string) string { return strings.ReplaceAll(s, " & ", " and ") },
	replaceAll(featuring, " & "),
	replaceAll(andWith, " & "),
	replaceAll(versus, " & "),
	replaceAll(article, " "),
}

// Variants returns the input names followed by every alternate spelling,
// whitespace-collapsed and deduplicated in first-seen order. Names that look
// like compilations ("Various Artists") and names of at most one character
// are dropped.
func Variants(names ...string) []string {
	all := make([]string, 0, len(names)*(len(transforms)+1))
	seen := make(map[string]bool)
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			all = append(all, n)
		}
	}

	for _, n := range names {
		add(n)
	}
	for _, tr := range transforms {
		for _, n := range all[:len(all):len(all)] {
			add(tr(n))
		}
	}

	clear(seen)
	out := make([]string, 0, len(all))
	for _, n := range all {
		n = strings.TrimSpace(spaces.ReplaceAllString(n, " "))
		if seen[n] {
			continue
		}
		seen[n] = true

		if various.MatchString(n) || len([]rune(n)) <= 1 {
			continue
		}
		out = append(out, n)
	}

	return out
}
