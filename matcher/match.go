package matcher

import "tracksync/model"

// Weights are the per-field coefficients of the weighted matcher.
type Weights struct {
	Title  float64
	Artist float64
	Album  float64
}

// DefaultWeights favour the title, then the artist, then the album.
var DefaultWeights = Weights{Title: 0.6, Artist: 0.3, Album: 0.1}

// DefaultThreshold is the minimum combined score for a weighted match.
const DefaultThreshold = 0.85

// MatchExact is the cheap short-circuit test: equal titles, at least
// one shared artist, and (when considerAlbum is set) equal albums.
// Comparison is raw string equality, so callers wanting
// case-insensitivity must pre-normalize. A successful match always
// scores exactly 1.0. On failure the caller decides whether to fall
// through to MatchWeighted; this function never does so itself.
func MatchExact(title1 string, artists1 []string, album1, title2 string, artists2 []string, album2 string, considerAlbum bool) model.ScoreResult {
	if title1 == "" || title1 != title2 {
		return model.ScoreResult{}
	}
	if !intersects(artists1, artists2) {
		return model.ScoreResult{}
	}
	if considerAlbum && album1 != album2 {
		return model.ScoreResult{}
	}
	return model.ScoreResult{IsMatch: true, Score: 1.0}
}

// MatchWeighted combines per-field similarity scores using the given
// weights and compares the result against the threshold. The artist
// score is the best pairwise similarity across the two artist lists,
// so any shared artist scores fully regardless of order or list
// length; it is 0 when either list is empty.
//
// When considerAlbum is false the album term contributes zero but its
// weight still applies, capping the attainable score at
// Title+Artist (0.9 with defaults). The default threshold sits below
// that cap on purpose; renormalizing the weights would move the
// decision boundary for every caller, so the cap is kept.
func MatchWeighted(title1 string, artists1 []string, album1, title2 string, artists2 []string, album2 string, considerAlbum bool, weights Weights, threshold float64) model.ScoreResult {
	_, titleScore := Similarity(title1, title2)

	artistScore := bestPairwise(artists1, artists2)

	albumScore := 0.0
	if considerAlbum {
		_, albumScore = Similarity(album1, album2)
	}

	score := titleScore*weights.Title + artistScore*weights.Artist + albumScore*weights.Album

	return model.ScoreResult{
		IsMatch: score >= threshold,
		Score:   score,
	}
}

// intersects reports whether the two artist sets share a member.
func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x != "" && x == y {
				return true
			}
		}
	}
	return false
}

// bestPairwise returns the highest similarity across all artist pairs,
// or 0 if either list is empty.
func bestPairwise(a, b []string) float64 {
	best := 0.0
	for _, x := range a {
		for _, y := range b {
			if _, score := Similarity(x, y); score > best {
				best = score
			}
		}
	}
	return best
}
