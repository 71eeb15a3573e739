package sources

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"tracksync/model"
)

// ExportFormat names one of the documented JSON export shapes. The
// shapes are not self-describing, so loaders must be told which one
// they are reading.
type ExportFormat string

const (
	// FormatArtistObjects is the playlist exporter's shape: nested
	// artist objects with a flat album string and separate album id.
	FormatArtistObjects ExportFormat = "artist-objects"
	// FormatNestedAlbum is the raw streaming API shape, with the album
	// as a nested object.
	FormatNestedAlbum ExportFormat = "nested-album"
	// FormatFlat is a flat record with a single artist string, as
	// produced by media server exports.
	FormatFlat ExportFormat = "flat"
)

// ParseExportFormat validates a format tag from configuration.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case FormatArtistObjects, FormatNestedAlbum, FormatFlat:
		return ExportFormat(s), nil
	default:
		return "", fmt.Errorf("unknown export format: %q", s)
	}
}

// Export is a catalog loaded from a JSON export file in one of the
// documented shapes.
type Export struct {
	Path   string
	Format ExportFormat
}

// Tracks loads and projects the export file.
func (e *Export) Tracks() ([]model.MatchCandidate, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	switch e.Format {
	case FormatArtistObjects:
		var records []artistObjectsRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse export %s: %w", e.Path, err)
		}
		candidates := make([]model.MatchCandidate, 0, len(records))
		for _, record := range records {
			candidates = append(candidates, model.MatchCandidate{View: projectArtistObjects(record), Payload: record})
		}
		return candidates, nil

	case FormatNestedAlbum:
		var records []nestedAlbumRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse export %s: %w", e.Path, err)
		}
		candidates := make([]model.MatchCandidate, 0, len(records))
		for _, record := range records {
			candidates = append(candidates, model.MatchCandidate{View: projectNestedAlbum(record), Payload: record})
		}
		return candidates, nil

	case FormatFlat:
		var records []flatRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse export %s: %w", e.Path, err)
		}
		candidates := make([]model.MatchCandidate, 0, len(records))
		for _, record := range records {
			candidates = append(candidates, model.MatchCandidate{View: projectFlat(record), Payload: record})
		}
		return candidates, nil

	default:
		return nil, fmt.Errorf("unknown export format: %q", e.Format)
	}
}

type exportArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type artistObjectsRecord struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Artists          []exportArtist `json:"artists"`
	Album            string         `json:"album"`
	AlbumID          string         `json:"album-id"`
	AvailableMarkets []string       `json:"available_markets"`
}

type nestedAlbumRecord struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Artists []exportArtist `json:"artists"`
	Album   struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"album"`
	AvailableMarkets []string `json:"available_markets"`
}

type flatRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	BitRate int    `json:"bitRate"`
}

// The projections are pure, stateless mappings; they never mutate
// their input.

func projectArtistObjects(record artistObjectsRecord) model.TrackView {
	artists := make([]string, 0, len(record.Artists))
	for _, artist := range record.Artists {
		artists = append(artists, artist.Name)
	}
	return model.TrackView{
		Title:        record.Name,
		Artists:      artists,
		Album:        record.Album,
		StableID:     record.ID,
		Availability: len(record.AvailableMarkets),
	}
}

func projectNestedAlbum(record nestedAlbumRecord) model.TrackView {
	artists := make([]string, 0, len(record.Artists))
	for _, artist := range record.Artists {
		artists = append(artists, artist.Name)
	}
	return model.TrackView{
		Title:        record.Name,
		Artists:      artists,
		Album:        record.Album.Name,
		StableID:     record.ID,
		Availability: len(record.AvailableMarkets),
	}
}

func projectFlat(record flatRecord) model.TrackView {
	var artists []string
	if record.Artist != "" {
		artists = []string{record.Artist}
	}
	return model.TrackView{
		Title:        record.Title,
		Artists:      artists,
		Album:        record.Album,
		StableID:     record.ID,
		Availability: record.BitRate,
	}
}

// CSVFile is a catalog loaded from a flat spreadsheet export with
// title, artist and album columns.
type CSVFile struct {
	Path string
}

// Tracks loads the CSV rows. A leading header row is skipped.
func (c *CSVFile) Tracks() ([]model.MatchCandidate, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", c.Path, err)
	}

	var candidates []model.MatchCandidate
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "title") {
			continue
		}

		view := model.TrackView{
			Title: strings.TrimSpace(row[0]),
			Album: strings.TrimSpace(row[2]),
		}
		if artist := strings.TrimSpace(row[1]); artist != "" {
			view.Artists = []string{artist}
		}

		candidates = append(candidates, model.MatchCandidate{View: view, Payload: row})
	}

	return candidates, nil
}

var (
	_ model.Catalog = &Export{}
	_ model.Catalog = &CSVFile{}
)
