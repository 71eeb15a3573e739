package sources

import (
	"fmt"
	"log/slog"
	"sync"

	"tracksync/model"

	"github.com/twoscott/gobble-fm/lastfm"
	"github.com/twoscott/gobble-fm/session"
)

// Lastfm is a catalog of a user's loved tracks on Last.fm.
type Lastfm struct {
	APIKey   string
	Secret   string
	Username string
	Password string

	mu     sync.Mutex
	client *session.Client
}

// Tracks retrieves the user's loved tracks. Last.fm doesn't report an
// album for loved tracks, so these only ever match through the
// album-free pass.
func (l *Lastfm) Tracks() ([]model.MatchCandidate, error) {
	client, err := l.getClient()
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieving loved tracks", "source", "lastfm")

	var candidates []model.MatchCandidate
	page := uint(1)

	for {
		lovedTracks, err := client.User.LovedTracks(lastfm.LovedTracksParams{
			User:  l.Username,
			Page:  page,
			Limit: 200,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get loved tracks: %w", err)
		}

		for _, track := range lovedTracks.Tracks {
			candidates = append(candidates, model.MatchCandidate{
				View: model.TrackView{
					Title:    track.Title,
					Artists:  []string{track.Artist.Name},
					StableID: track.MBID,
				},
				Payload: track,
			})
		}

		if page >= uint(lovedTracks.TotalPages) {
			break
		}
		page++
	}

	slog.Debug("Retrieved loved tracks", "count", len(candidates), "source", "lastfm")
	return candidates, nil
}

// getClient lazily connects to Last.fm
func (l *Lastfm) getClient() (*session.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}

	client := session.NewClient(l.APIKey, l.Secret)
	if err := client.Login(l.Username, l.Password); err != nil {
		return nil, fmt.Errorf("lastfm login failed: %w", err)
	}

	l.client = client
	return l.client, nil
}

var _ model.Catalog = &Lastfm{}
