// Package reconcile drives a full reconciliation run of one source
// catalog against one target catalog.
package reconcile

import (
	"log/slog"

	"tracksync/ledger"
	"tracksync/matcher"
	"tracksync/model"
)

// MatchPair couples a source track with the target track it resolved
// to.
type MatchPair struct {
	Source model.MatchCandidate
	Target model.MatchCandidate
}

// Ambiguity is a source track whose tie set could not be resolved
// automatically; the caller decides what to do with it.
type Ambiguity struct {
	Source model.MatchCandidate
	Ties   []model.MatchCandidate
}

// Outcome categorizes every source track of a run: matched with album
// (Found), matched ignoring album (Partial), tied without resolution
// (Ambiguous), unmatched (NotFound), already verified (Skipped), or
// excluded for missing fields (Malformed). NewlyVerified is the delta
// of verified tracks for the caller to merge into its ledger; the run
// itself never mutates the ledger.
type Outcome struct {
	Found         []MatchPair
	Partial       []MatchPair
	Ambiguous     []Ambiguity
	NotFound      []model.MatchCandidate
	Skipped       []model.MatchCandidate
	Malformed     []model.MatchCandidate
	NewlyVerified []model.TrackView
}

// Options control how ties are resolved during the run.
type Options struct {
	OnlyFirst           bool
	AllowDisambiguation bool
}

// Run reconciles every source track against the target catalog: a
// first pass requiring the album to agree, then a fallback pass
// without it. Tracks without an album on either side sit out the
// strict pass, so the best they can do is a partial match. Tracks
// already present in the ledger are skipped. The run always completes;
// malformed records are reported, never fatal.
func Run(sources, targets []model.MatchCandidate, lg *ledger.Ledger, r *matcher.Resolver, opts Options) (Outcome, error) {
	if opts.OnlyFirst && opts.AllowDisambiguation {
		return Outcome{}, matcher.ErrConflictingPolicies
	}

	var outcome Outcome

	valid := make([]model.MatchCandidate, 0, len(targets))
	for _, target := range targets {
		if wellFormed(target.View) {
			valid = append(valid, target)
		} else {
			outcome.Malformed = append(outcome.Malformed, target)
		}
	}

	withAlbum := make([]model.MatchCandidate, 0, len(valid))
	for _, target := range valid {
		if target.View.Album != "" {
			withAlbum = append(withAlbum, target)
		}
	}

	for _, source := range sources {
		if !wellFormed(source.View) {
			outcome.Malformed = append(outcome.Malformed, source)
			continue
		}

		if lg.IsVerified(source.View) {
			outcome.Skipped = append(outcome.Skipped, source)
			continue
		}

		slog.Debug("Comparing track", "title", source.View.Title, "artist", source.View.PrimaryArtist(), "album", source.View.Album)

		if source.View.Album != "" {
			resolution, err := r.Resolve(source.View, withAlbum, matcher.Options{
				ConsiderAlbum:       true,
				OnlyFirst:           opts.OnlyFirst,
				AllowDisambiguation: opts.AllowDisambiguation,
			})
			if err != nil {
				return Outcome{}, err
			}

			if resolution.Match != nil {
				slog.Debug("Matched", "title", source.View.Title)
				outcome.Found = append(outcome.Found, MatchPair{Source: source, Target: *resolution.Match})
				outcome.NewlyVerified = append(outcome.NewlyVerified, source.View)
				continue
			}
			if len(resolution.Ties) > 0 {
				outcome.Ambiguous = append(outcome.Ambiguous, Ambiguity{Source: source, Ties: resolution.Ties})
				continue
			}

			slog.Debug("No match, trying without album", "title", source.View.Title)
		}

		resolution, err := r.Resolve(source.View, valid, matcher.Options{
			ConsiderAlbum:       false,
			OnlyFirst:           opts.OnlyFirst,
			AllowDisambiguation: opts.AllowDisambiguation,
		})
		if err != nil {
			return Outcome{}, err
		}

		switch {
		case resolution.Match != nil:
			slog.Debug("Partially matched", "title", source.View.Title)
			outcome.Partial = append(outcome.Partial, MatchPair{Source: source, Target: *resolution.Match})
		case len(resolution.Ties) > 0:
			outcome.Ambiguous = append(outcome.Ambiguous, Ambiguity{Source: source, Ties: resolution.Ties})
		default:
			slog.Debug("Not found", "title", source.View.Title)
			outcome.NotFound = append(outcome.NotFound, source)
		}
	}

	return outcome, nil
}

func wellFormed(view model.TrackView) bool {
	return view.Title != "" && len(view.Artists) > 0
}
