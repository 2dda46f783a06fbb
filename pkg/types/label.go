// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeLabel lowercases a label the way both the index and its queries
// store and compare label text. Unlike strings.ToLower it applies the
// context-sensitive rules of Unicode lowercasing, so a word-final capital
// sigma becomes ς.
func NormalizeLabel(s string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Lower(language.Und).String(s)
}
