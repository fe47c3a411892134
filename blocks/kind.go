package blocks

import (
	"strings"
	"unicode"
)

// ComponentKind converts a component name to its block kind using
// lowerCamel, keeping initialisms readable: RatesTable becomes ratesTable,
// FAQList becomes faqList, URL becomes url.
func ComponentKind(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return name
	case upper == len(runes):
		return strings.ToLower(name)
	case upper == 1:
		runes[0] = unicode.ToLower(runes[0])
	default:
		// A run of capitals followed by lowercase is an initialism plus a
		// word; the last capital starts the word.
		for i := 0; i < upper-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}
