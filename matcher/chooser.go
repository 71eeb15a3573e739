package matcher

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"tracksync/model"
)

// TerminalChooser prompts a human to pick from a tie set on the
// terminal. Entering 0 skips the track.
type TerminalChooser struct {
	In  io.Reader
	Out io.Writer
}

// Choose prints the source track and the numbered tie set, then reads
// selections until a valid one arrives.
func (c *TerminalChooser) Choose(source model.TrackView, ties []model.MatchCandidate) (int, error) {
	in, out := c.In, c.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "\nMore than one match found with the same score for:\n\n\t%s - %s [%s]\n\nChoose the song:\n\n", source.Title, strings.Join(source.Artists, " - "), source.Album)
	fmt.Fprintln(out, "0. Skip")
	for i, tie := range ties {
		fmt.Fprintf(out, "%d. %s - %s [%s]\n", i+1, tie.View.Title, strings.Join(tie.View.Artists, " - "), tie.View.Album)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nInsert the number of the song to select: ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return Skip, err
			}
			return Skip, nil
		}

		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 0 || choice > len(ties) {
			fmt.Fprintf(out, "Please insert a number between 0 and %d\n", len(ties))
			continue
		}

		if choice == 0 {
			return Skip, nil
		}
		return choice - 1, nil
	}
}

// SkipChooser always skips; it suits non-interactive deployments.
type SkipChooser struct{}

func (SkipChooser) Choose(model.TrackView, []model.MatchCandidate) (int, error) {
	return Skip, nil
}

// FirstChooser always picks the first candidate.
type FirstChooser struct{}

func (FirstChooser) Choose(model.TrackView, []model.MatchCandidate) (int, error) {
	return 0, nil
}

var (
	_ Chooser = &TerminalChooser{}
	_ Chooser = SkipChooser{}
	_ Chooser = FirstChooser{}
)
