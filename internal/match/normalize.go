package match

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var reMultiSpace = regexp.MustCompile(`\s+`)

// foldTitle is the comparison form of a title: NFC composed and case folded,
// so "É" and "é" (precomposed or not) compare equal.
func foldTitle(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// CleanTitle tidies a scraped title for use as a catalog key.
// Compatibility forms are left alone; only composition and whitespace change.
func CleanTitle(s string) string {
	s = norm.NFC.String(s)
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
