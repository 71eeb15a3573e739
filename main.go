package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/csmith/envflag/v2"
	"github.com/csmith/slogflags"

	"tracksync/ledger"
	"tracksync/matcher"
	"tracksync/model"
	"tracksync/normalizer"
	"tracksync/reconcile"
	"tracksync/report"
	"tracksync/sources"
)

var (
	subsonicServer   = flag.String("subsonic-server", "", "Subsonic server base address")
	subsonicUsername = flag.String("subsonic-username", "", "Subsonic username")
	subsonicPassword = flag.String("subsonic-password", "", "Subsonic password")

	spotifyToken    = flag.String("spotify-token", "", "Spotify API access token")
	spotifyPlaylist = flag.String("spotify-playlist", "", "Spotify playlist ID; liked songs if empty")

	lastfmKey      = flag.String("lastfm-key", "", "Last.fm API key")
	lastfmSecret   = flag.String("lastfm-secret", "", "Last.fm API secret")
	lastfmUsername = flag.String("lastfm-username", "", "Last.fm username")
	lastfmPassword = flag.String("lastfm-password", "", "Last.fm password")

	listenbrainzToken    = flag.String("listenbrainz-token", "", "ListenBrainz token")
	listenbrainzUsername = flag.String("listenbrainz-username", "", "ListenBrainz username")

	source       = flag.String("source", "", "Catalog to reconcile against the Subsonic library: spotify, lastfm, listenbrainz, export, csv or troi")
	sourceFile   = flag.String("source-file", "", "Path of the export, csv or troi source file")
	exportFormat = flag.String("export-format", string(sources.FormatArtistObjects), "Shape of the JSON export: artist-objects, nested-album or flat")

	ledgerPath = flag.String("ledger", "compare_report/verified_songs.json", "Path of the verified-tracks ledger")
	reportDir  = flag.String("report-dir", "compare_report", "Directory for run reports")

	onlyFirst   = flag.Bool("only-first", false, "Keep only the first of equally scored candidates")
	interactive = flag.Bool("interactive", false, "Prompt to choose between equally scored candidates")
	star        = flag.Bool("star", false, "Star matched tracks on the Subsonic server")
	dryRun      = flag.Bool("dry-run", false, "Don't write reports, the ledger, or stars; just log the outcome")
)

func main() {
	envflag.Parse()
	_ = slogflags.Logger(slogflags.WithSetDefault(true))

	norm := normalizer.Default()

	src, err := selectedSource()
	if err != nil {
		slog.Error("Failed to configure source", "error", err)
		os.Exit(1)
	}

	target, err := targetCatalog()
	if err != nil {
		slog.Error("Failed to configure target", "error", err)
		os.Exit(1)
	}

	lg, err := ledger.Load(*ledgerPath, norm)
	if err != nil {
		slog.Error("Failed to load ledger", "path", *ledgerPath, "error", err)
		os.Exit(1)
	}

	var chooser matcher.Chooser
	if *interactive {
		chooser = &matcher.TerminalChooser{}
	}
	resolver := matcher.NewResolver(norm, chooser)

	sourceTracks, err := src.Tracks()
	if err != nil {
		slog.Error("Failed to get source tracks", "source", *source, "error", err)
		os.Exit(1)
	}

	targetTracks, err := target.Tracks()
	if err != nil {
		slog.Error("Failed to get target library", "error", err)
		os.Exit(1)
	}

	outcome, err := reconcile.Run(sourceTracks, targetTracks, lg, resolver, reconcile.Options{
		OnlyFirst:           *onlyFirst,
		AllowDisambiguation: *interactive,
	})
	if err != nil {
		slog.Error("Reconciliation failed", "error", err)
		os.Exit(1)
	}

	slog.Info(
		"Reconciliation complete",
		"source", *source,
		"source_count", len(sourceTracks),
		"target_count", len(targetTracks),
		"found", len(outcome.Found),
		"partial", len(outcome.Partial),
		"ambiguous", len(outcome.Ambiguous),
		"not_found", len(outcome.NotFound),
		"skipped", len(outcome.Skipped),
		"malformed", len(outcome.Malformed),
	)

	for _, ambiguity := range outcome.Ambiguous {
		slog.Warn("Unresolved tie", "title", ambiguity.Source.View.Title, "artist", ambiguity.Source.View.PrimaryArtist(), "candidates", len(ambiguity.Ties))
	}

	if *dryRun {
		return
	}

	if err := writeReports(outcome); err != nil {
		slog.Error("Failed to write reports", "error", err)
		os.Exit(1)
	}

	for _, view := range outcome.NewlyVerified {
		lg.Append(view)
	}
	if err := ledger.Save(lg, *ledgerPath); err != nil {
		slog.Error("Failed to save ledger", "path", *ledgerPath, "error", err)
		os.Exit(1)
	}

	if *star {
		matched := make([]model.MatchCandidate, 0, len(outcome.Found))
		for _, pair := range outcome.Found {
			matched = append(matched, pair.Target)
		}

		starred, err := target.Starred()
		if err != nil {
			slog.Error("Failed to get starred tracks", "error", err)
			os.Exit(1)
		}
		matched = excludeStarred(matched, starred)

		if err := target.Star(matched); err != nil {
			slog.Error("Failed to star matched tracks", "error", err)
			os.Exit(1)
		}
		slog.Info("Starred matched tracks", "count", len(matched))
	}
}

// targetCatalog builds the Subsonic target, validating its settings.
func targetCatalog() (*sources.Subsonic, error) {
	if *subsonicServer == "" {
		return nil, fmt.Errorf("subsonic-server must be specified")
	}
	return &sources.Subsonic{
		BaseURL:    *subsonicServer,
		Username:   *subsonicUsername,
		Password:   *subsonicPassword,
		ClientName: "tracksync",
	}, nil
}

// excludeStarred drops tracks that are already starred on the server,
// so repeat runs don't re-star them.
func excludeStarred(matched, starred []model.MatchCandidate) []model.MatchCandidate {
	starredIDs := make(map[string]bool, len(starred))
	for _, candidate := range starred {
		starredIDs[candidate.View.StableID] = true
	}

	remaining := make([]model.MatchCandidate, 0, len(matched))
	for _, candidate := range matched {
		if starredIDs[candidate.View.StableID] {
			continue
		}
		remaining = append(remaining, candidate)
	}
	return remaining
}

// selectedSource builds the configured source catalog, validating its
// settings.
func selectedSource() (model.Catalog, error) {
	switch *source {
	case "spotify":
		if *spotifyToken == "" {
			return nil, fmt.Errorf("spotify-token must be specified")
		}
		return &sources.Spotify{AccessToken: *spotifyToken, PlaylistID: *spotifyPlaylist}, nil

	case "lastfm":
		if *lastfmKey == "" || *lastfmSecret == "" {
			return nil, fmt.Errorf("lastfm-key and lastfm-secret must be specified")
		}
		return &sources.Lastfm{
			APIKey:   *lastfmKey,
			Secret:   *lastfmSecret,
			Username: *lastfmUsername,
			Password: *lastfmPassword,
		}, nil

	case "listenbrainz":
		if *listenbrainzToken == "" || *listenbrainzUsername == "" {
			return nil, fmt.Errorf("listenbrainz-token and listenbrainz-username must be specified")
		}
		return &sources.ListenBrainz{Token: *listenbrainzToken, Username: *listenbrainzUsername}, nil

	case "export":
		if *sourceFile == "" {
			return nil, fmt.Errorf("source-file must be specified")
		}
		format, err := sources.ParseExportFormat(*exportFormat)
		if err != nil {
			return nil, err
		}
		return &sources.Export{Path: *sourceFile, Format: format}, nil

	case "csv":
		if *sourceFile == "" {
			return nil, fmt.Errorf("source-file must be specified")
		}
		return &sources.CSVFile{Path: *sourceFile}, nil

	case "troi":
		if *sourceFile == "" {
			return nil, fmt.Errorf("source-file must be specified")
		}
		return &sources.TroiFile{Path: *sourceFile}, nil

	case "":
		return nil, fmt.Errorf("source must be specified")

	default:
		return nil, fmt.Errorf("source not configured or invalid: %s", *source)
	}
}

// writeReports persists the categorized outcome.
func writeReports(outcome reconcile.Outcome) error {
	writer := report.NewWriter(*reportDir)

	if len(outcome.Found) > 0 {
		if err := writer.WriteFound(outcome.Found); err != nil {
			return err
		}
	}
	if len(outcome.Partial) > 0 {
		if err := writer.WritePartial(outcome.Partial); err != nil {
			return err
		}
	}
	if len(outcome.NotFound) > 0 {
		if err := writer.WriteNotFound(outcome.NotFound); err != nil {
			return err
		}
	}
	return nil
}
