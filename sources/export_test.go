package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExportArtistObjects(t *testing.T) {
	path := writeTemp(t, "export.json", `[
		{
			"id": "sp-1",
			"name": "Under Pressure",
			"artists": [
				{"id": "a1", "name": "Queen"},
				{"id": "a2", "name": "David Bowie"}
			],
			"album-id": "al-1",
			"album": "Hot Space",
			"available_markets": ["IT", "GB", "US"]
		}
	]`)

	catalog := &Export{Path: path, Format: FormatArtistObjects}
	candidates, err := catalog.Tracks()

	assert.NoError(t, err)
	assert.Len(t, candidates, 1)

	view := candidates[0].View
	assert.Equal(t, "Under Pressure", view.Title)
	assert.Equal(t, []string{"Queen", "David Bowie"}, view.Artists)
	assert.Equal(t, "Hot Space", view.Album)
	assert.Equal(t, "sp-1", view.StableID)
	assert.Equal(t, 3, view.Availability)
}

func TestExportNestedAlbum(t *testing.T) {
	path := writeTemp(t, "export.json", `[
		{
			"id": "sp-2",
			"name": "Yesterday",
			"artists": [{"id": "a1", "name": "The Beatles"}],
			"album": {"id": "al-2", "name": "Help!"}
		}
	]`)

	catalog := &Export{Path: path, Format: FormatNestedAlbum}
	candidates, err := catalog.Tracks()

	assert.NoError(t, err)
	assert.Len(t, candidates, 1)

	view := candidates[0].View
	assert.Equal(t, "Yesterday", view.Title)
	assert.Equal(t, []string{"The Beatles"}, view.Artists)
	assert.Equal(t, "Help!", view.Album)
	assert.Equal(t, 0, view.Availability)
}

func TestExportFlat(t *testing.T) {
	path := writeTemp(t, "export.json", `[
		{
			"id": "nd-1",
			"title": "Yesterday",
			"artist": "The Beatles",
			"album": "Help!",
			"bitRate": 320
		}
	]`)

	catalog := &Export{Path: path, Format: FormatFlat}
	candidates, err := catalog.Tracks()

	assert.NoError(t, err)
	assert.Len(t, candidates, 1)

	view := candidates[0].View
	assert.Equal(t, "Yesterday", view.Title)
	assert.Equal(t, []string{"The Beatles"}, view.Artists)
	assert.Equal(t, 320, view.Availability)
}

func TestExportUnknownFormat(t *testing.T) {
	path := writeTemp(t, "export.json", `[]`)

	catalog := &Export{Path: path, Format: "nope"}
	_, err := catalog.Tracks()

	assert.Error(t, err)
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("flat")
	assert.NoError(t, err)
	assert.Equal(t, FormatFlat, format)

	_, err = ParseExportFormat("bogus")
	assert.Error(t, err)
}

func TestCSVFile(t *testing.T) {
	path := writeTemp(t, "songs.csv", "title,artist,album\nYesterday,The Beatles,Help!\nOne,Metallica,\"...And Justice for All\"\n")

	catalog := &CSVFile{Path: path}
	candidates, err := catalog.Tracks()

	assert.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.Equal(t, "Yesterday", candidates[0].View.Title)
	assert.Equal(t, []string{"The Beatles"}, candidates[0].View.Artists)
	assert.Equal(t, "...And Justice for All", candidates[1].View.Album)
}

func TestCSVFileWithoutHeader(t *testing.T) {
	path := writeTemp(t, "songs.csv", "Yesterday,The Beatles,Help!\n")

	catalog := &CSVFile{Path: path}
	candidates, err := catalog.Tracks()

	assert.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestTroiFile(t *testing.T) {
	content := "Album  Artist\n" +
		"Help!  The Beatles\n" +
		"    Yesterday  3 lookups\n" +
		"    The Night Before\n" +
		"\n" +
		"OK Computer  Radiohead\n" +
		"    Karma Police  1 lookups\n"

	path := writeTemp(t, "unresolved.txt", content)

	catalog := &TroiFile{Path: path}
	candidates, err := catalog.Tracks()

	assert.NoError(t, err)
	assert.Len(t, candidates, 3)

	assert.Equal(t, "Yesterday", candidates[0].View.Title)
	assert.Equal(t, []string{"The Beatles"}, candidates[0].View.Artists)
	assert.Equal(t, "Help!", candidates[0].View.Album)

	assert.Equal(t, "The Night Before", candidates[1].View.Title)

	assert.Equal(t, "Karma Police", candidates[2].View.Title)
	assert.Equal(t, []string{"Radiohead"}, candidates[2].View.Artists)
	assert.Equal(t, "OK Computer", candidates[2].View.Album)
}
