package normalize

import (
	"regexp"
	"strings"
)

var (
	bracketedText = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9 ]+`)
	multiSpace    = regexp.MustCompile(`\s+`)
)

// noiseTokens are condition words and shipping boilerplate that sellers
// bolt onto titles. They carry no identity and break deduplication.
var noiseTokens = map[string]struct{}{
	"new":         {},
	"brand":       {},
	"used":        {},
	"refurbished": {},
	"genuine":     {},
	"original":    {},
	"authentic":   {},
	"free":        {},
	"shipping":    {},
	"fast":        {},
	"hot":         {},
	"sale":        {},
	"2024":        {},
	"2025":        {},
	"lot":         {},
	"pcs":         {},
	"pack":        {},
}

// Title produces the stable normalized form of a listing title used for
// dedup keys and similarity comparison: case-folded, bracketed and
// parenthetical text stripped, punctuation removed, noise tokens dropped.
func Title(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = bracketedText.ReplaceAllString(s, " ")
	s = nonAlnum.ReplaceAllString(s, " ")

	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, noise := noiseTokens[w]; noise {
			continue
		}
		kept = append(kept, w)
	}

	return multiSpace.ReplaceAllString(strings.Join(kept, " "), " ")
}
