package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tracksync/model"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// Spotify is a catalog backed by the Spotify Web API: the user's liked
// songs, or a single playlist when PlaylistID is set.
type Spotify struct {
	AccessToken string
	PlaylistID  string

	mu     sync.Mutex
	client *spotify.Client
}

// Tracks retrieves the configured catalog from Spotify.
func (s *Spotify) Tracks() ([]model.MatchCandidate, error) {
	client := s.getClient()

	if s.PlaylistID != "" {
		return s.playlistTracks(client)
	}
	return s.likedTracks(client)
}

// likedTracks pages through the user's saved tracks.
func (s *Spotify) likedTracks(client *spotify.Client) ([]model.MatchCandidate, error) {
	ctx := context.Background()

	slog.Debug("Retrieving liked songs", "source", "spotify")

	page, err := client.CurrentUsersTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get liked songs: %w", err)
	}

	var candidates []model.MatchCandidate
	for {
		for _, saved := range page.Tracks {
			candidates = append(candidates, fullTrackToCandidate(saved.FullTrack))
		}

		err = client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("liked songs pagination failed: %w", err)
		}
	}

	slog.Debug("Retrieved liked songs", "count", len(candidates), "source", "spotify")
	return candidates, nil
}

// playlistTracks pages through one playlist.
func (s *Spotify) playlistTracks(client *spotify.Client) ([]model.MatchCandidate, error) {
	ctx := context.Background()

	slog.Debug("Retrieving playlist", "playlist", s.PlaylistID, "source", "spotify")

	playlist, err := client.GetPlaylist(ctx, spotify.ID(s.PlaylistID))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	var candidates []model.MatchCandidate
	page := playlist.Tracks
	for {
		for _, item := range page.Tracks {
			if item.Track.ID == "" || item.IsLocal {
				continue
			}
			candidates = append(candidates, fullTrackToCandidate(item.Track))
		}

		err = client.NextPage(ctx, &page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("playlist pagination failed: %w", err)
		}
	}

	slog.Debug("Retrieved playlist", "playlist", playlist.Name, "count", len(candidates), "source", "spotify")
	return candidates, nil
}

// getClient lazily builds an API client from the static access token.
func (s *Spotify) getClient() *spotify.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client
	}

	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
	}))

	s.client = spotify.New(httpClient)
	return s.client
}

// fullTrackToCandidate projects a Spotify track. The market count is
// the availability attribute used to collapse duplicate recordings.
func fullTrackToCandidate(track spotify.FullTrack) model.MatchCandidate {
	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	return model.MatchCandidate{
		View: model.TrackView{
			Title:        track.Name,
			Artists:      artists,
			Album:        track.Album.Name,
			StableID:     string(track.ID),
			Availability: len(track.AvailableMarkets),
		},
		Payload: track,
	}
}

var _ model.Catalog = &Spotify{}
