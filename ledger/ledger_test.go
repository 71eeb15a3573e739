package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"tracksync/model"
	"tracksync/normalizer"
)

func TestIsVerifiedByStableID(t *testing.T) {
	l := New(normalizer.Default())
	l.Append(model.TrackView{
		Title:    "Yesterday",
		Artists:  []string{"The Beatles"},
		Album:    "Help!",
		StableID: "spotify-123",
	})

	// ID wins even when the fields have drifted.
	assert.True(t, l.IsVerified(model.TrackView{
		Title:    "Completely Different",
		Artists:  []string{"Someone Else"},
		Album:    "Other",
		StableID: "spotify-123",
	}))

	assert.False(t, l.IsVerified(model.TrackView{
		Title:    "Completely Different",
		Artists:  []string{"Someone Else"},
		Album:    "Other",
		StableID: "spotify-456",
	}))
}

func TestIsVerifiedByTriple(t *testing.T) {
	l := New(normalizer.Default())
	l.Append(model.TrackView{
		Title:   "Yesterday",
		Artists: []string{"The Beatles"},
		Album:   "Help! (Remastered)",
	})

	// The triple is stored normalized, so raw variants still match.
	assert.True(t, l.IsVerified(model.TrackView{
		Title:   "yesterday",
		Artists: []string{"THE BEATLES"},
		Album:   "Help!",
	}))

	assert.False(t, l.IsVerified(model.TrackView{
		Title:   "Something",
		Artists: []string{"The Beatles"},
		Album:   "Abbey Road",
	}))
}

func TestIsVerifiedFallsBackWhenOneSideLacksID(t *testing.T) {
	l := New(normalizer.Default())
	l.Append(model.TrackView{
		Title:    "Yesterday",
		Artists:  []string{"The Beatles"},
		Album:    "Help!",
		StableID: "spotify-123",
	})

	// The check side has no ID, so the triple decides.
	assert.True(t, l.IsVerified(model.TrackView{
		Title:   "Yesterday",
		Artists: []string{"The Beatles"},
		Album:   "Help!",
	}))
}

func TestAppendDoesNotDeduplicate(t *testing.T) {
	l := New(normalizer.Default())
	view := model.TrackView{Title: "Yesterday", Artists: []string{"The Beatles"}, Album: "Help!"}

	l.Append(view)
	l.Append(view)

	assert.Equal(t, 2, l.Len())
	assert.Len(t, l.Records(), 2)
}

func TestLoadMissingFile(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "nope.json"), normalizer.Default())

	assert.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	norm := normalizer.Default()
	path := filepath.Join(t.TempDir(), "reports", "verified_songs.json")

	l := New(norm)
	l.Append(model.TrackView{
		Title:    "Yesterday",
		Artists:  []string{"The Beatles"},
		Album:    "Help!",
		StableID: "spotify-123",
	})

	assert.NoError(t, Save(l, path))

	loaded, err := Load(path, norm)
	assert.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	assert.True(t, loaded.IsVerified(model.TrackView{StableID: "spotify-123", Title: "Yesterday", Artists: []string{"The Beatles"}, Album: "Help!"}))
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verified_songs.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path, normalizer.Default())
	assert.Error(t, err)
}
