package genre

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// soundexCodes holds the digit for each letter A..Z. Vowels together with
// H, W and Y map to '0' and are dropped from the final key.
const soundexCodes = "01230120022455012623010202"

// keyDigits is the number of digits following the first letter of a key.
const keyDigits = 3

// Normalize prepares a tag or synonym for keying: every whitespace separated
// word is title-cased, hyphens are removed and a standalone "N" or "And"
// between words becomes "&".
func Normalize(s string) string {
	words := strings.Fields(s)
	caser := cases.Title(language.Und)
	for i, w := range words {
		words[i] = caser.String(w)
	}

	out := strings.Join(words, " ")
	out = strings.ReplaceAll(out, "-", "")
	out = strings.ReplaceAll(out, " N ", " & ")
	out = strings.ReplaceAll(out, " And ", " & ")
	return out
}

// Key computes the phonetic key of s: the first letter followed by exactly
// three digits. Strings without any ASCII letter have no key and yield "".
func Key(s string) string {
	letters := make([]byte, 0, len(s))
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, byte(r))
		}
	}
	if len(letters) == 0 {
		return ""
	}

	// Translate and squeeze runs of identical digits.
	digits := make([]byte, 0, len(letters))
	for _, c := range letters {
		d := soundexCodes[c-'A']
		if n := len(digits); n > 0 && digits[n-1] == d {
			continue
		}
		digits = append(digits, d)
	}

	key := make([]byte, 1, 1+keyDigits)
	key[0] = letters[0]
	// digits[0] is the code of the first letter, which the letter itself stands for.
	for _, d := range digits[1:] {
		if d == '0' {
			continue
		}
		key = append(key, d)
		if len(key) == 1+keyDigits {
			break
		}
	}
	for len(key) < 1+keyDigits {
		key = append(key, '0')
	}

	return string(key)
}
