// Package ledger records confirmed matches so repeated reconciliation
// runs skip already-resolved tracks.
package ledger

import (
	"tracksync/model"
	"tracksync/normalizer"
)

// Record is the persisted identity key of a verified track: the
// source's stable ID when it has one, plus a normalized
// title/artist/album triple as the fallback identity.
type Record struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Ledger is a monotonically growing append log of verified tracks.
// It dedups on read (IsVerified), never on write.
type Ledger struct {
	norm    *normalizer.Normalizer
	records []Record
}

// New returns an empty ledger using the given normalizer for identity
// triples.
func New(n *normalizer.Normalizer) *Ledger {
	return &Ledger{norm: n}
}

// IsVerified reports whether the track was already reconciled on a
// previous run. Stable IDs are compared when both sides carry one;
// otherwise the normalized title/primary-artist/album triple decides.
func (l *Ledger) IsVerified(view model.TrackView) bool {
	key := l.keyFor(view)
	for _, record := range l.records {
		if record.ID != "" && key.ID != "" {
			if record.ID == key.ID {
				return true
			}
			continue
		}
		if record.Title == key.Title && record.Artist == key.Artist && record.Album == key.Album {
			return true
		}
	}
	return false
}

// Append records the track as verified. No deduplication happens here;
// callers are expected to have checked IsVerified first.
func (l *Ledger) Append(view model.TrackView) {
	l.records = append(l.records, l.keyFor(view))
}

// Records returns the underlying append log.
func (l *Ledger) Records() []Record {
	return l.records
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	return len(l.records)
}

func (l *Ledger) keyFor(view model.TrackView) Record {
	return Record{
		ID:     view.StableID,
		Title:  l.norm.Normalize(view.Title),
		Artist: l.norm.Normalize(view.PrimaryArtist()),
		Album:  l.norm.Normalize(l.norm.CanonicalAlbum(view.Album)),
	}
}
