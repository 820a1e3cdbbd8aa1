// Copyright (c) 2026 Trailforge. All rights reserved.

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs are the human-readable identifiers for tours (e.g., "the_forest_hiker").
// They are derived from the tour name on every write and never accepted from
// clients. This package handles normalization, accent removal, and character
// sanitization.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-separator characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]+`)
	// multiSeparator collapses multiple consecutive separators into one.
	multiSeparator = regexp.MustCompile(`_{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces whitespace and special characters with underscores.
// 5. Collapses repeated separators and trims leading/trailing ones.
func From(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Replace whitespace and special chars with the separator
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, result)

	// 4. Clean up separators
	result = nonAlphanumeric.ReplaceAllString(result, "_")
	result = multiSeparator.ReplaceAllString(result, "_")
	result = strings.Trim(result, "_")

	return result
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
