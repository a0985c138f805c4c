package query

import (
	"regexp"
	"strings"
)

// stockCodePatterns are tried in order; the first match wins.
//
// The anchored "stock"/"for" variants are subsumed by the leading bare
// pattern, so in practice extraction is "first occurrence of a code token
// anywhere in the text". The list is kept in this shape so an anchored
// variant can be promoted later without changing call sites; the tests pin
// the first-occurrence semantics.
var stockCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{4}\.[A-Z]{2})`),
	regexp.MustCompile(`(?i)stock\s+(\d{4}\.[A-Z]{2})`),
	regexp.MustCompile(`(?i)for\s+(\d{4}\.[A-Z]{2})`),
	regexp.MustCompile(`(?i)(\d{4}\.[A-Z]{2})`),
}

// ExtractStockCode pulls the first stock code token out of free text.
//
// A code token is four digits, a dot, and a two-letter market suffix
// (e.g., "0148.HK"), matched case-insensitively. The returned code has its
// suffix normalized to upper case. An empty string means no code was found;
// no validation against a known-instruments list happens here.
func ExtractStockCode(text string) string {
	for _, p := range stockCodePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}
