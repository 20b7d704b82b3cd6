// Package normalize turns raw free-text identity fields into comparable
// forms. Every function treats empty input as empty output and never fails.
package normalize

import (
	"regexp"
	"strings"
)

var (
	camelBoundary  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
	trailingDigits = regexp.MustCompile(`[0-9]+$`)
	alphaRun       = regexp.MustCompile(`[a-z]+`)
	multiSpace     = regexp.MustCompile(`\s+`)
)

// Tokens splits on non-alphanumeric and camelCase boundaries, lower-cases,
// and drops tokens of length <= 1.
func Tokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	if s == "" {
		return out
	}
	spaced := camelBoundary.ReplaceAllString(s, "$1 $2")
	for _, part := range nonAlnum.Split(strings.ToLower(spaced), -1) {
		if len(part) > 1 {
			out[part] = struct{}{}
		}
	}
	return out
}

// StripToAlnum removes everything but lower-case letters and digits.
// Used for prefix/substring tests where separators only add noise.
func StripToAlnum(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// CleanForFuzzy collapses the input to single-spaced lower-case alphanumeric
// text, the form the fuzzy scorer compares.
func CleanForFuzzy(s string) string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(multiSpace.ReplaceAllString(cleaned, " "))
}

// StripTrailingDigits removes a numeric suffix, so auto-numbered logins like
// "jsmith2" compare as "jsmith".
func StripTrailingDigits(s string) string {
	return trailingDigits.ReplaceAllString(s, "")
}

// Email lower-cases and trims an address. Empty stays empty.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Words returns the lower-case alphabetic runs of the input, in order.
func Words(s string) []string {
	return alphaRun.FindAllString(strings.ToLower(s), -1)
}

// NameParts splits a display name on whitespace and reduces each part to its
// letters. Parts that strip to nothing are dropped.
func NameParts(s string) []string {
	var parts []string
	for _, field := range strings.Fields(strings.ToLower(s)) {
		letters := strings.Join(alphaRun.FindAllString(field, -1), "")
		if letters != "" {
			parts = append(parts, letters)
		}
	}
	return parts
}
