// Package report writes the durable reports of a reconciliation run:
// machine-readable JSON plus human-readable track lists.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"tracksync/model"
	"tracksync/reconcile"
)

const (
	foundFile            = "songs_found.json"
	foundListFile        = "songs_found.log"
	partialFile          = "partially_matched.json"
	partialListFile      = "partially_matched.log"
	notFoundFile         = "songs_not_found.json"
	notFoundListFile     = "songs_not_found.log"
	notFoundPlainFile    = "songs_not_found_list.log"
	notFoundDownloadFile = "album_not_found_download.log"
)

var forbiddenFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Writer persists run reports under a single directory, created on
// demand.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

type trackJSON struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title"`
	Artists []string `json:"artists"`
	Album   string   `json:"album"`
}

type pairJSON struct {
	Source trackJSON `json:"source"`
	Target trackJSON `json:"target"`
}

// WriteFound appends the matched pairs to the found report and
// rewrites the readable list. Appending keeps matches from earlier
// runs visible, mirroring the run-over-run growth of the ledger.
func (w *Writer) WriteFound(pairs []reconcile.MatchPair) error {
	merged, err := w.loadPairs(foundFile)
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		merged = append(merged, toPairJSON(pair))
	}

	if err := w.writeJSON(foundFile, merged); err != nil {
		return err
	}
	return w.writePairList(foundListFile, pairs)
}

// WritePartial rewrites the partial-match report and readable list.
func (w *Writer) WritePartial(pairs []reconcile.MatchPair) error {
	out := make([]pairJSON, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, toPairJSON(pair))
	}

	if err := w.writeJSON(partialFile, out); err != nil {
		return err
	}
	return w.writePairList(partialListFile, pairs)
}

// WriteNotFound rewrites the unmatched reports: JSON, a readable
// listing, a one-line-per-track list, and a download-command list for
// fetching the missing albums.
func (w *Writer) WriteNotFound(tracks []model.MatchCandidate) error {
	out := make([]trackJSON, 0, len(tracks))
	for _, track := range tracks {
		out = append(out, toTrackJSON(track.View))
	}
	if err := w.writeJSON(notFoundFile, out); err != nil {
		return err
	}

	var listing strings.Builder
	var plain strings.Builder
	var download strings.Builder
	for _, track := range tracks {
		view := track.View
		fmt.Fprintf(&listing, "Title: %s\nArtist: %s\nAlbum: %s\n\n", view.Title, strings.Join(view.Artists, " - "), view.Album)
		fmt.Fprintf(&plain, "%s, %s, %s\n", view.Title, view.PrimaryArtist(), view.Album)
		fmt.Fprintf(&download, "/search qobuz album %s %s\n", view.Album, view.PrimaryArtist())
	}

	if err := w.writeText(notFoundListFile, listing.String()); err != nil {
		return err
	}
	if err := w.writeText(notFoundPlainFile, plain.String()); err != nil {
		return err
	}
	return w.writeText(notFoundDownloadFile, download.String())
}

func (w *Writer) writePairList(name string, pairs []reconcile.MatchPair) error {
	var b strings.Builder
	for _, pair := range pairs {
		src, dst := pair.Source.View, pair.Target.View
		fmt.Fprintf(&b, "%s;%s;%s\n%s;%s;%s\n\n",
			src.Title, strings.Join(src.Artists, " - "), src.Album,
			dst.Title, strings.Join(dst.Artists, " - "), dst.Album)
	}
	return w.writeText(name, b.String())
}

func (w *Writer) loadPairs(name string) ([]pairJSON, error) {
	data, err := os.ReadFile(w.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", name, err)
	}

	var pairs []pairJSON
	if err := json.Unmarshal(data, &pairs); err != nil {
		// A corrupt report shouldn't block the run; start it over.
		return nil, nil
	}
	return pairs, nil
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", name, err)
	}
	return w.writeFile(name, data)
}

func (w *Writer) writeText(name, content string) error {
	return w.writeFile(name, []byte(content))
}

func (w *Writer) writeFile(name string, data []byte) error {
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(w.path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", name, err)
	}
	return nil
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.Dir, sanitizeFilename(name))
}

// sanitizeFilename replaces characters that are invalid in filenames
// on Windows.
func sanitizeFilename(name string) string {
	return forbiddenFilenameChars.ReplaceAllString(name, "_")
}

func toPairJSON(pair reconcile.MatchPair) pairJSON {
	return pairJSON{
		Source: toTrackJSON(pair.Source.View),
		Target: toTrackJSON(pair.Target.View),
	}
}

func toTrackJSON(view model.TrackView) trackJSON {
	return trackJSON{
		ID:      view.StableID,
		Title:   view.Title,
		Artists: view.Artists,
		Album:   view.Album,
	}
}
