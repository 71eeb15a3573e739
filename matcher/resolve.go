package matcher

import (
	"errors"
	"sort"
	"strings"

	"tracksync/model"
	"tracksync/normalizer"
)

// Skip is returned by a Chooser to signal that none of the tied
// candidates should be used. It is a normal outcome, not an error.
const Skip = -1

// Chooser resolves a tie set that automatic collapsing couldn't. It
// returns the zero-based index of the chosen candidate, or Skip. The
// call may block indefinitely (e.g. awaiting a human decision); the
// error is reserved for I/O failure, never for "no selection".
type Chooser interface {
	Choose(source model.TrackView, ties []model.MatchCandidate) (int, error)
}

// Options control a single resolution pass.
type Options struct {
	// ConsiderAlbum includes album equality/similarity in the match
	// decision.
	ConsiderAlbum bool

	// OnlyFirst keeps only the first-seen candidate at the top score,
	// ignoring later ties.
	OnlyFirst bool

	// AllowDisambiguation lets the resolver collapse duplicate ties
	// automatically and delegate genuine ties to the Chooser.
	// Mutually exclusive with OnlyFirst.
	AllowDisambiguation bool
}

// ErrConflictingPolicies is returned when OnlyFirst and
// AllowDisambiguation are requested together.
var ErrConflictingPolicies = errors.New("only-first and disambiguation are mutually exclusive")

// Resolution is the outcome of scanning a catalog for one source
// track. At most one of Match and Ties is set; both empty means no
// candidate cleared the threshold. Malformed lists candidates that
// were excluded from scoring because they lacked a required field.
type Resolution struct {
	Match     *model.MatchCandidate
	Ties      []model.MatchCandidate
	Malformed []model.MatchCandidate
}

// Resolver scans candidate catalogs for the best match to a source
// track. It owns no persistent state; Resolve is a pure function of
// its inputs.
type Resolver struct {
	Normalizer *normalizer.Normalizer
	Weights    Weights
	Threshold  float64
	Chooser    Chooser
}

// NewResolver returns a Resolver with the default weights and
// threshold. The chooser may be nil if disambiguation is never
// requested.
func NewResolver(n *normalizer.Normalizer, chooser Chooser) *Resolver {
	return &Resolver{
		Normalizer: n,
		Weights:    DefaultWeights,
		Threshold:  DefaultThreshold,
		Chooser:    chooser,
	}
}

// Resolve linearly scans the catalog for the best-scoring candidates.
// Each candidate is tried against the exact matcher first, then the
// weighted matcher. A strictly higher score resets the tie set; an
// equal score joins it. Malformed candidates (no title, no artists, or
// no album when the album is considered) are skipped and reported,
// never fatal.
func (r *Resolver) Resolve(source model.TrackView, catalog []model.MatchCandidate, opts Options) (Resolution, error) {
	if opts.OnlyFirst && opts.AllowDisambiguation {
		return Resolution{}, ErrConflictingPolicies
	}
	if opts.AllowDisambiguation && r.Chooser == nil {
		return Resolution{}, errors.New("disambiguation requested without a chooser")
	}

	srcTitle, srcArtists, srcAlbum := r.normalizeFields(source)

	var (
		best      float64
		ties      []model.MatchCandidate
		malformed []model.MatchCandidate
	)

	for _, candidate := range catalog {
		if candidate.View.Title == "" || len(candidate.View.Artists) == 0 ||
			(opts.ConsiderAlbum && candidate.View.Album == "") {
			malformed = append(malformed, candidate)
			continue
		}

		title, artists, album := r.normalizeFields(candidate.View)

		result := MatchExact(srcTitle, srcArtists, srcAlbum, title, artists, album, opts.ConsiderAlbum)
		if !result.IsMatch {
			result = MatchWeighted(srcTitle, srcArtists, srcAlbum, title, artists, album, opts.ConsiderAlbum, r.Weights, r.Threshold)
		}
		if !result.IsMatch {
			continue
		}

		switch {
		case result.Score > best:
			best = result.Score
			ties = []model.MatchCandidate{candidate}
		case result.Score == best && !opts.OnlyFirst:
			ties = append(ties, candidate)
		}
	}

	return r.settle(source, ties, malformed, opts)
}

// settle turns the surviving tie set into a final Resolution.
func (r *Resolver) settle(source model.TrackView, ties, malformed []model.MatchCandidate, opts Options) (Resolution, error) {
	switch {
	case len(ties) == 0:
		return Resolution{Malformed: malformed}, nil

	case len(ties) == 1, opts.OnlyFirst:
		return Resolution{Match: &ties[0], Malformed: malformed}, nil

	case opts.AllowDisambiguation:
		if collapsed := r.collapseDuplicates(ties); collapsed != nil {
			return Resolution{Match: collapsed, Malformed: malformed}, nil
		}

		choice, err := r.Chooser.Choose(source, ties)
		if err != nil {
			return Resolution{}, err
		}
		if choice < 0 || choice >= len(ties) {
			return Resolution{Malformed: malformed}, nil
		}
		return Resolution{Match: &ties[choice], Malformed: malformed}, nil

	default:
		return Resolution{Ties: ties, Malformed: malformed}, nil
	}
}

// collapseDuplicates resolves a tie set whose members are all the same
// logical recording (identical normalized title, artist set and album)
// by picking the one with the largest availability attribute. Returns
// nil when more than one distinct recording remains tied.
func (r *Resolver) collapseDuplicates(ties []model.MatchCandidate) *model.MatchCandidate {
	first := r.identityKey(ties[0].View)
	for _, candidate := range ties[1:] {
		if r.identityKey(candidate.View) != first {
			return nil
		}
	}

	pick := &ties[0]
	for i := range ties[1:] {
		if ties[i+1].View.Availability > pick.View.Availability {
			pick = &ties[i+1]
		}
	}
	return pick
}

// identityKey builds a normalized (title, sorted artists, album) key
// for duplicate grouping.
func (r *Resolver) identityKey(view model.TrackView) string {
	title, artists, album := r.normalizeFields(view)
	sort.Strings(artists)
	return title + "\x00" + strings.Join(artists, "\x00") + "\x00" + album
}

// normalizeFields canonicalizes the comparable fields of a view. The
// album passes through the manual override table first so known
// irregular album names compare correctly.
func (r *Resolver) normalizeFields(view model.TrackView) (title string, artists []string, album string) {
	title = r.Normalizer.Normalize(view.Title)

	artists = make([]string, 0, len(view.Artists))
	for _, artist := range view.Artists {
		artists = append(artists, r.Normalizer.Normalize(artist))
	}

	album = r.Normalizer.Normalize(r.Normalizer.CanonicalAlbum(view.Album))
	return title, artists, album
}
