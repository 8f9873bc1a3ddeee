// Package textnorm is the pure string-transform layer applied to every
// raw recognition line before scoring: artifact cleanup, OCR
// character-confusion fixes, and a bounded fuzzy dictionary pass.
//
// Normalize is idempotent: normalizing an already-normalized line is a
// no-op. Tests rely on that property.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)

	// boundingPairs are punctuation pairs stripped when they wrap the
	// whole line.
	boundingPairs = [][2]byte{
		{'"', '"'}, {'\'', '\''}, {'(', ')'}, {'[', ']'}, {'{', '}'}, {'<', '>'},
	}
)

// confusions maps digits the engine commonly reads in place of letters.
// Applied only in letter-adjacent contexts so legitimate numbers
// ("15.5") survive.
var confusions = map[rune]rune{
	'0': 'o',
	'1': 'l',
	'4': 'a',
	'5': 's',
	'6': 'g',
	'8': 'b',
}

// Normalize applies the fixed cleanup chain to one raw recognition
// line: artifact replacement, end trimming, whitespace collapse,
// trailing-garbage drop, confusion fixes, fuzzy dictionary correction,
// and recasing of shouty lines.
func Normalize(line string) string {
	return NormalizeWith(line, DefaultFuzzyDistance)
}

// NormalizeWith is Normalize with a configured fuzzy-correction
// distance cap.
func NormalizeWith(line string, fuzzyDist int) string {
	s := replaceArtifacts(line)
	s = stripBoundingPairs(s)
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = dropTrailingGarbage(s)
	s = fixConfusions(s)
	s = correctTokens(s, fuzzyDist)
	s = retitle(s)
	return s
}

// replaceArtifacts rewrites pipe/backslash line noise the engine emits
// for tall strokes and fold shadows.
func replaceArtifacts(s string) string {
	s = strings.ReplaceAll(s, "|", "l")
	s = strings.ReplaceAll(s, "\\", "")
	return s
}

func stripBoundingPairs(s string) string {
	for {
		s = strings.TrimSpace(s)
		if len(s) < 2 {
			return s
		}
		stripped := false
		for _, p := range boundingPairs {
			if s[0] == p[0] && s[len(s)-1] == p[1] {
				s = s[1 : len(s)-1]
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

// dropTrailingGarbage removes trailing 1-2 character tokens unless
// they are unit abbreviations or pure numbers. Loops so a run of
// stray-stroke tokens is fully consumed.
func dropTrailingGarbage(s string) string {
	for {
		toks := strings.Fields(s)
		if len(toks) < 2 {
			return s
		}
		last := toks[len(toks)-1]
		if len([]rune(last)) > 2 || IsUnit(last) || isAllDigits(last) {
			return s
		}
		s = strings.Join(toks[:len(toks)-1], " ")
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// fixConfusions replaces confused digits with their letter
// counterparts when an adjacent rune is a letter. Each replacement can
// make an earlier digit letter-adjacent ("10G"), so the scan repeats
// until no rune changes. Every run of confused digits resolves in a
// single Normalize call.
func fixConfusions(s string) string {
	rs := []rune(s)
	for changed := true; changed; {
		changed = false
		for i, r := range rs {
			letter, ok := confusions[r]
			if !ok {
				continue
			}
			prevLetter := i > 0 && unicode.IsLetter(rs[i-1])
			nextLetter := i < len(rs)-1 && unicode.IsLetter(rs[i+1])
			if !prevLetter && !nextLetter {
				continue
			}
			if adjacentUpper(rs, i) {
				letter = unicode.ToUpper(letter)
			}
			rs[i] = letter
			changed = true
		}
	}
	return string(rs)
}

func adjacentUpper(rs []rune, i int) bool {
	if i > 0 && unicode.IsLetter(rs[i-1]) {
		return unicode.IsUpper(rs[i-1])
	}
	if i < len(rs)-1 && unicode.IsLetter(rs[i+1]) {
		return unicode.IsUpper(rs[i+1])
	}
	return false
}

// retitle recases all-caps tokens; label text is usually shouty and
// the API returns Title Case. Tokens with fewer than two letters are
// left alone.
func retitle(s string) string {
	toks := strings.Fields(s)
	for i, tok := range toks {
		if isShouty(tok) {
			toks[i] = titleToken(tok)
		}
	}
	return strings.Join(toks, " ")
}

func isShouty(tok string) bool {
	letters := 0
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}

// titleToken uppercases the first letter only; "JOE'S" becomes
// "Joe's", not "Joe'S".
func titleToken(tok string) string {
	low := strings.ToLower(tok)
	if fixed, ok := capExceptions[low]; ok {
		return fixed
	}
	rs := []rune(low)
	for i, r := range rs {
		if unicode.IsLetter(r) {
			rs[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(rs)
}
