package sources

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"tracksync/model"
)

// TroiFile is a catalog parsed from a troi "unresolved tracks" dump:
// a header line, then album/artist lines with tracks indented below
// them, each track optionally suffixed with an "N lookups" count.
type TroiFile struct {
	Path string
}

var (
	troiColumnSplit  = regexp.MustCompile(`\s{2,}`)
	troiLookupSuffix = regexp.MustCompile(`\s+\d+\s+lookups$`)
)

// Tracks parses the dump into candidates.
func (t *TroiFile) Tracks() ([]model.MatchCandidate, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open troi file: %w", err)
	}
	defer f.Close()

	var candidates []model.MatchCandidate
	var currentAlbum, currentArtist string

	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")

		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			// Track line under the current album heading.
			if currentAlbum == "" || currentArtist == "" {
				continue
			}

			title := strings.TrimSpace(troiLookupSuffix.ReplaceAllString(strings.TrimSpace(line), ""))
			if title == "" {
				continue
			}

			candidates = append(candidates, model.MatchCandidate{
				View: model.TrackView{
					Title:   title,
					Artists: []string{currentArtist},
					Album:   currentAlbum,
				},
				Payload: line,
			})
			continue
		}

		// Album/artist heading, columns separated by runs of spaces.
		parts := troiColumnSplit.Split(line, -1)
		if len(parts) >= 2 {
			currentAlbum = strings.TrimSpace(parts[0])
			currentArtist = strings.TrimSpace(parts[1])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read troi file: %w", err)
	}

	return candidates, nil
}

var _ model.Catalog = &TroiFile{}
