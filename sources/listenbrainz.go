package sources

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tracksync/model"
)

// ListenBrainz is a catalog of a user's loved recordings on
// ListenBrainz. Feedback entries only carry recording MBIDs, so the
// titles and artists are filled in with batched metadata lookups.
type ListenBrainz struct {
	Token    string
	Username string
}

type listenBrainzFeedbackResponse struct {
	Feedback   []listenBrainzFeedback `json:"feedback"`
	Offset     int                    `json:"offset"`
	Count      int                    `json:"count"`
	TotalCount int                    `json:"total_count"`
}

type listenBrainzFeedback struct {
	RecordingMBID string `json:"recording_mbid"`
	Score         int    `json:"score"`
}

type listenBrainzMetadata struct {
	Recording struct {
		Name string `json:"name"`
	} `json:"recording"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
	Release struct {
		Name string `json:"name"`
	} `json:"release"`
}

// Tracks retrieves the user's loved recordings with their metadata.
func (lb *ListenBrainz) Tracks() ([]model.MatchCandidate, error) {
	slog.Debug("Retrieving loved recordings", "source", "listenbrainz")

	var mbids []string
	offset := 0
	const pageSize = 100

	for {
		pageMBIDs, totalCount, err := lb.fetchFeedbackPage(offset, pageSize)
		if err != nil {
			return nil, err
		}

		mbids = append(mbids, pageMBIDs...)

		if offset+len(pageMBIDs) >= totalCount || len(pageMBIDs) == 0 {
			break
		}
		offset += len(pageMBIDs)
	}

	slog.Debug("Retrieved loved recordings", "count", len(mbids), "source", "listenbrainz")

	candidates := make([]model.MatchCandidate, 0, len(mbids))
	const metadataBatch = 50

	for start := 0; start < len(mbids); start += metadataBatch {
		end := start + metadataBatch
		if end > len(mbids) {
			end = len(mbids)
		}

		metadata, err := lb.fetchMetadata(mbids[start:end])
		if err != nil {
			return nil, err
		}

		for _, mbid := range mbids[start:end] {
			meta, ok := metadata[mbid]
			if !ok {
				slog.Warn("No metadata for recording", "mbid", mbid, "source", "listenbrainz")
				continue
			}
			candidates = append(candidates, model.MatchCandidate{
				View: model.TrackView{
					Title:    meta.Recording.Name,
					Artists:  []string{meta.Artist.Name},
					Album:    meta.Release.Name,
					StableID: mbid,
				},
				Payload: mbid,
			})
		}
	}

	return candidates, nil
}

// fetchFeedbackPage fetches a single page of loved recordings with retry logic
func (lb *ListenBrainz) fetchFeedbackPage(offset, count int) ([]string, int, error) {
	const maxRetries = 3
	requestURL := fmt.Sprintf("https://api.listenbrainz.org/1/feedback/user/%s/get-feedback?score=1&offset=%d&count=%d", lb.Username, offset, count)

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := lb.get(requestURL)
		if err != nil {
			return nil, 0, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lb.sleepForRateLimit(resp, attempt)
			resp.Body.Close()
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, 0, fmt.Errorf("ListenBrainz API error: %s - %s", resp.Status, string(body))
		}

		var feedbackResp listenBrainzFeedbackResponse
		err = json.NewDecoder(resp.Body).Decode(&feedbackResp)
		resp.Body.Close()
		if err != nil {
			return nil, 0, err
		}

		mbids := make([]string, 0, len(feedbackResp.Feedback))
		for _, feedback := range feedbackResp.Feedback {
			if feedback.RecordingMBID != "" {
				mbids = append(mbids, feedback.RecordingMBID)
			}
		}

		time.Sleep(1 * time.Second)
		return mbids, feedbackResp.TotalCount, nil
	}

	return nil, 0, fmt.Errorf("ListenBrainz: max retries exceeded due to rate limiting")
}

// fetchMetadata resolves recording MBIDs to titles, artists and
// releases in one batched call.
func (lb *ListenBrainz) fetchMetadata(mbids []string) (map[string]listenBrainzMetadata, error) {
	const maxRetries = 3
	requestURL := fmt.Sprintf("https://api.listenbrainz.org/1/metadata/recording/?recording_mbids=%s&inc=artist+release",
		url.QueryEscape(strings.Join(mbids, ",")))

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := lb.get(requestURL)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lb.sleepForRateLimit(resp, attempt)
			resp.Body.Close()
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("ListenBrainz API error: %s - %s", resp.Status, string(body))
		}

		var metadata map[string]listenBrainzMetadata
		err = json.NewDecoder(resp.Body).Decode(&metadata)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		time.Sleep(1 * time.Second)
		return metadata, nil
	}

	return nil, fmt.Errorf("ListenBrainz: max retries exceeded due to rate limiting")
}

func (lb *ListenBrainz) get(requestURL string) (*http.Response, error) {
	req, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Token %s", lb.Token))

	return http.DefaultClient.Do(req)
}

// sleepForRateLimit waits out a 429 using the reset header when
// available.
func (lb *ListenBrainz) sleepForRateLimit(resp *http.Response, attempt int) {
	sleepDuration := 10 * time.Second
	if resetInStr := resp.Header.Get("X-RateLimit-Reset-In"); resetInStr != "" {
		if resetIn, err := strconv.Atoi(resetInStr); err == nil {
			sleepDuration = time.Duration(resetIn+5) * time.Second
		}
	}

	slog.Warn("Rate limited (429), retrying", "attempt", attempt+1, "sleep_seconds", sleepDuration.Seconds(), "source", "listenbrainz")
	time.Sleep(sleepDuration)
}

var _ model.Catalog = &ListenBrainz{}
