package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"tracksync/model"
	"tracksync/reconcile"
)

func pair(sourceTitle, targetTitle string) reconcile.MatchPair {
	return reconcile.MatchPair{
		Source: model.MatchCandidate{View: model.TrackView{
			Title:   sourceTitle,
			Artists: []string{"The Beatles"},
			Album:   "Help!",
		}},
		Target: model.MatchCandidate{View: model.TrackView{
			Title:    targetTitle,
			Artists:  []string{"The Beatles"},
			Album:    "Help!",
			StableID: "nd-1",
		}},
	}
}

func TestWriteFoundAppendsAcrossRuns(t *testing.T) {
	w := NewWriter(t.TempDir())

	assert.NoError(t, w.WriteFound([]reconcile.MatchPair{pair("Yesterday", "yesterday")}))
	assert.NoError(t, w.WriteFound([]reconcile.MatchPair{pair("Ticket to Ride", "Ticket To Ride")}))

	data, err := os.ReadFile(filepath.Join(w.Dir, "songs_found.json"))
	assert.NoError(t, err)

	var pairs []pairJSON
	assert.NoError(t, json.Unmarshal(data, &pairs))
	assert.Len(t, pairs, 2)
	assert.Equal(t, "Yesterday", pairs[0].Source.Title)
	assert.Equal(t, "Ticket to Ride", pairs[1].Source.Title)
}

func TestWriteFoundRecoversFromCorruptReport(t *testing.T) {
	w := NewWriter(t.TempDir())
	assert.NoError(t, os.WriteFile(filepath.Join(w.Dir, "songs_found.json"), []byte("{not json"), 0o644))

	assert.NoError(t, w.WriteFound([]reconcile.MatchPair{pair("Yesterday", "yesterday")}))

	data, err := os.ReadFile(filepath.Join(w.Dir, "songs_found.json"))
	assert.NoError(t, err)

	var pairs []pairJSON
	assert.NoError(t, json.Unmarshal(data, &pairs))
	assert.Len(t, pairs, 1)
}

func TestWriteNotFound(t *testing.T) {
	w := NewWriter(t.TempDir())

	tracks := []model.MatchCandidate{
		{View: model.TrackView{
			Title:   "Nonexistent Song",
			Artists: []string{"Nobody", "Nobody Else"},
			Album:   "Nothing",
		}},
	}

	assert.NoError(t, w.WriteNotFound(tracks))

	plain, err := os.ReadFile(filepath.Join(w.Dir, "songs_not_found_list.log"))
	assert.NoError(t, err)
	assert.Equal(t, "Nonexistent Song, Nobody, Nothing\n", string(plain))

	download, err := os.ReadFile(filepath.Join(w.Dir, "album_not_found_download.log"))
	assert.NoError(t, err)
	assert.Equal(t, "/search qobuz album Nothing Nobody\n", string(download))

	listing, err := os.ReadFile(filepath.Join(w.Dir, "songs_not_found.log"))
	assert.NoError(t, err)
	assert.Contains(t, string(listing), "Artist: Nobody - Nobody Else")
}

func TestWritePartialRewrites(t *testing.T) {
	w := NewWriter(t.TempDir())

	assert.NoError(t, w.WritePartial([]reconcile.MatchPair{pair("Yesterday", "yesterday"), pair("Help!", "help")}))
	assert.NoError(t, w.WritePartial([]reconcile.MatchPair{pair("Yesterday", "yesterday")}))

	data, err := os.ReadFile(filepath.Join(w.Dir, "partially_matched.json"))
	assert.NoError(t, err)

	var pairs []pairJSON
	assert.NoError(t, json.Unmarshal(data, &pairs))
	assert.Len(t, pairs, 1)
}

func TestWriterCreatesDirectory(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "nested", "reports"))

	assert.NoError(t, w.WriteNotFound(nil))

	_, err := os.Stat(filepath.Join(w.Dir, "songs_not_found.json"))
	assert.NoError(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c", sanitizeFilename(`a<b>c`))
	assert.Equal(t, "songs_found.json", sanitizeFilename("songs_found.json"))
}
