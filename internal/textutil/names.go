package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SplitName splits on the first whitespace run. A single word yields an
// empty last name.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	idx := strings.IndexFunc(full, unicode.IsSpace)
	if idx < 0 {
		return full, ""
	}
	return full[:idx], strings.TrimSpace(full[idx:])
}

// NameKey returns the identity key used to match a person across sources:
// trimmed, lower-cased first and last names.
func NameKey(first, last string) string {
	return strings.ToLower(strings.TrimSpace(first)) + "\x00" + strings.ToLower(strings.TrimSpace(last))
}

// CollapseSpace trims s and folds internal whitespace runs to single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Title title-cases each word of s.
func Title(s string) string {
	return cases.Title(language.Und).String(CollapseSpace(s))
}
