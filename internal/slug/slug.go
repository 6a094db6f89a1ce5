// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives article identifiers from titles.
//
// A generated slug is ASCII-only, lowercase, uses hyphens as the only
// separator, starts with the creation date and is at most MaxLength
// characters long:
//
//	"Olá, Mundo!" created on 2026-02-25 → "2026-02-25-ola-mundo"
//
// Slugs are assigned once, when an article is created. The generator never
// disambiguates collisions: the same title on the same day yields the same
// slug, and the store's unique constraint rejects the second insert.
package slug

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fiam/gounidecode/unidecode"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the maximum length of a generated slug, matching the width
// of the articles.slug column.
const MaxLength = 50

// DateLayout is the layout of the date prefix.
const DateLayout = "2006-01-02"

var (
	// specialChars matches anything that isn't an ASCII letter, digit, or whitespace.
	specialChars = regexp.MustCompile(`[^a-zA-Z0-9 \t\n\v\f\r]`)
	// whitespaceRuns matches one or more whitespace characters.
	whitespaceRuns = regexp.MustCompile(`[ \t\n\v\f\r]+`)
	// validID matches caller-supplied identifiers that are safe in a URL path segment.
	validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._~-]*$`)
)

// Make runs the full pipeline for the given title, dated at now.
// Example: Make("Hello, World!", 2026-02-25) → "2026-02-25-hello-world"
func Make(title string, now time.Time) string {
	s := Transliterate(title)
	s = StripSpecial(s)
	s = Hyphenate(s)
	s = DatePrefix(s, now)
	s = Truncate(s, MaxLength)
	return strings.ToLower(s)
}

// Transliterate maps Unicode text to its closest ASCII equivalent.
// Input is NFKC-normalised first so decomposed accents and compatibility
// forms (fullwidth letters, ligatures) transliterate like their composed
// counterparts. Runes with no ASCII mapping are dropped.
func Transliterate(s string) string {
	return unidecode.Unidecode(norm.NFKC.String(s))
}

// StripSpecial removes every character that is not an ASCII letter, digit,
// or whitespace. Punctuation is deleted, not replaced.
func StripSpecial(s string) string {
	return specialChars.ReplaceAllString(s, "")
}

// Hyphenate trims surrounding whitespace and replaces each inner run of
// whitespace with a single hyphen.
func Hyphenate(s string) string {
	return whitespaceRuns.ReplaceAllString(strings.TrimSpace(s), "-")
}

// DatePrefix prepends now's calendar date (in now's location) and a hyphen.
func DatePrefix(s string, now time.Time) string {
	return now.Format(DateLayout) + "-" + s
}

// Truncate cuts s to at most n runes. It does not look for word boundaries.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Valid reports whether s can be used verbatim as a caller-supplied
// identifier: non-empty, at most MaxLength bytes, URL-path safe.
func Valid(s string) bool {
	return len(s) <= MaxLength && validID.MatchString(s)
}
