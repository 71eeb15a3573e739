package model

// Catalog supplies the track records of one music source, already
// projected into MatchCandidates.
type Catalog interface {
	Tracks() ([]MatchCandidate, error)
}
