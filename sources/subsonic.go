package sources

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"tracksync/model"

	"github.com/supersonic-app/go-subsonic/subsonic"
)

// Subsonic is a catalog backed by a Subsonic-compatible server such as
// Navidrome.
type Subsonic struct {
	BaseURL    string
	Username   string
	Password   string
	ClientName string

	mu       sync.Mutex
	client   *subsonic.Client
	allSongs []*subsonic.Child
}

// Tracks retrieves the full song library.
func (s *Subsonic) Tracks() ([]model.MatchCandidate, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	songs, err := s.getAllSongs(client)
	if err != nil {
		return nil, err
	}

	return childrenToCandidates(songs), nil
}

// Starred retrieves the server's starred tracks.
func (s *Subsonic) Starred() ([]model.MatchCandidate, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieving starred tracks", "source", "subsonic")

	starred, err := client.GetStarred2(nil)
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieved starred tracks", "count", len(starred.Song), "source", "subsonic")
	return childrenToCandidates(starred.Song), nil
}

// Star stars the given candidates on the server. Candidates that did
// not come from this catalog are skipped with a warning.
func (s *Subsonic) Star(candidates []model.MatchCandidate) error {
	var songIDs []string
	for _, candidate := range candidates {
		song, ok := candidate.Payload.(*subsonic.Child)
		if !ok {
			slog.Warn("Cannot star candidate from another catalog", "title", candidate.View.Title, "source", "subsonic")
			continue
		}
		songIDs = append(songIDs, song.ID)
	}

	if len(songIDs) == 0 {
		return nil
	}

	client, err := s.getClient()
	if err != nil {
		return err
	}

	return client.Star(subsonic.StarParameters{
		SongIDs: songIDs,
	})
}

// getClient lazily connects to the Subsonic server
func (s *Subsonic) getClient() (*subsonic.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	client := &subsonic.Client{
		Client:     http.DefaultClient,
		BaseUrl:    s.BaseURL,
		User:       s.Username,
		ClientName: s.ClientName,
	}

	if s.Password != "" {
		if err := client.Authenticate(s.Password); err != nil {
			return nil, fmt.Errorf("subsonic authentication failed: %w", err)
		}
	}

	s.client = client
	return s.client, nil
}

// getAllSongs retrieves all songs from the Subsonic server
func (s *Subsonic) getAllSongs(client *subsonic.Client) ([]*subsonic.Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allSongs != nil {
		return s.allSongs, nil
	}

	slog.Debug("Retrieving all songs", "source", "subsonic")

	var allSongs []*subsonic.Child
	offset := 0
	const batchSize = 500

	for {
		results, err := client.Search3("", map[string]string{
			"songCount":   strconv.Itoa(batchSize),
			"songOffset":  strconv.Itoa(offset),
			"artistCount": "0",
			"albumCount":  "0",
		})
		if err != nil {
			return nil, err
		}

		if len(results.Song) == 0 {
			break
		}

		allSongs = append(allSongs, results.Song...)

		if len(results.Song) < batchSize {
			break
		}
		offset += batchSize
	}

	slog.Debug("Retrieved all songs", "count", len(allSongs), "source", "subsonic")
	s.allSongs = allSongs
	return allSongs, nil
}

// childrenToCandidates projects Subsonic songs into MatchCandidates.
// The bitrate stands in as the availability attribute so duplicate
// rips collapse to the best one.
func childrenToCandidates(songs []*subsonic.Child) []model.MatchCandidate {
	candidates := make([]model.MatchCandidate, 0, len(songs))
	for _, song := range songs {
		candidates = append(candidates, model.MatchCandidate{
			View: model.TrackView{
				Title:        song.Title,
				Artists:      []string{song.Artist},
				Album:        song.Album,
				StableID:     song.ID,
				Availability: song.BitRate,
			},
			Payload: song,
		})
	}
	return candidates
}

var _ model.Catalog = &Subsonic{}
