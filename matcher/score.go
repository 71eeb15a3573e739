package matcher

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// Edit distance at or below which two strings are considered close
// enough regardless of their length.
const closeEnoughDistance = 3

// Similarity computes a bounded similarity score between two raw
// strings. Comparison is case- and diacritic-insensitive, so callers
// don't need to normalize first. The score is symmetric, 1.0 for
// identical strings, and degrades with character-level divergence; it
// is the larger of the normalized Levenshtein ratio and the
// Jaro-Winkler similarity, so both typos and long edition suffixes
// score reasonably.
//
// The boolean is a small-edit-distance convenience flag; decision
// layers compare the score against their own thresholds instead.
func Similarity(a, b string) (bool, float64) {
	a = fold(a)
	b = fold(b)

	if a == b {
		return true, 1.0
	}
	if a == "" || b == "" {
		return false, 0
	}

	distance := levenshtein.ComputeDistance(a, b)

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}

	ratio := 1 - float64(distance)/float64(longest)
	jaroWinkler := strutil.Similarity(a, b, metrics.NewJaroWinkler())

	score := ratio
	if jaroWinkler > score {
		score = jaroWinkler
	}

	return distance <= closeEnoughDistance, score
}

// fold lowercases, trims and strips combining marks so that accented
// and plain spellings compare equal.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
