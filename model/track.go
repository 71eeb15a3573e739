package model

// TrackView is the engine's schema-neutral projection of a track
// record, whichever catalog it came from.
type TrackView struct {
	Title   string
	Artists []string
	Album   string

	// StableID is the source's own identifier for the track, if it has
	// one. Used by the verification ledger in preference to the
	// title/artist/album triple.
	StableID string

	// Availability is a platform-specific availability attribute used
	// only to collapse duplicate recordings: the number of markets a
	// streaming track is playable in, or the bitrate of a local file.
	// Zero when the source doesn't report one.
	Availability int
}

// PrimaryArtist returns the first listed artist, or "" if none.
func (t TrackView) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// MatchCandidate pairs a TrackView with the source-native record it was
// projected from. The payload is never inspected by the matching logic;
// it exists so callers can act on a match (star it, enqueue it).
type MatchCandidate struct {
	View    TrackView
	Payload any
}

// ScoreResult is the outcome of a single match test. Score is 1.0
// exactly when produced by the exact-match path.
type ScoreResult struct {
	IsMatch bool
	Score   float64
}
