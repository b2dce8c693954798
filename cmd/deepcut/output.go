package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"deepcut/internal/history"
	"deepcut/internal/pipeline"
	"deepcut/internal/progress"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1A3"))

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	lyricsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)
)

// printOutcome writes the search result. A run without a qualifying track
// prints the "no song found" notice.
func printOutcome(w io.Writer, out pipeline.Outcome, ind *progress.Indicator) {
	if !out.Result.Found {
		fmt.Fprintln(w, warningStyle.Render("No song found."))
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Gave up on %s after %d attempts.", out.Resolution.Genre, out.Result.Attempts)))
		return
	}

	t := out.Result.Track
	fmt.Fprintf(w, "%s by %s %s\n",
		titleStyle.Render(t.Name),
		artistStyle.Render(t.LeadArtist()),
		dimStyle.Render(fmt.Sprintf("(Popularity %d)", t.Popularity)))

	switch {
	case t.HasPreview() && out.PreviewSource != "":
		fmt.Fprintf(w, "Preview URL: %s %s\n", t.PreviewURL, dimStyle.Render("(via "+out.PreviewSource+")"))
	case t.HasPreview():
		fmt.Fprintf(w, "Preview URL: %s\n", t.PreviewURL)
	default:
		fmt.Fprintln(w, dimStyle.Render("(No preview URL.)"))
	}
	if out.PreviewPath != "" {
		fmt.Fprintf(w, "Saved preview: %s\n", out.PreviewPath)
	}

	summary := fmt.Sprintf("Genre: %s (%s) - %d attempts", out.Resolution.Genre, out.Resolution.Method, out.Result.Attempts)
	if ind != nil {
		summary += " in " + progress.FormatDuration(ind.Elapsed())
	}
	fmt.Fprintln(w, dimStyle.Render(summary))

	if text := out.Lyrics.Text(); text != "" {
		fmt.Fprintln(w, lyricsStyle.Render(text))
	}
}

// printHistory writes recorded searches, newest first.
func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No searches recorded yet."))
		return
	}

	for _, e := range entries {
		when := dimStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04"))
		var result string
		if e.Found {
			result = fmt.Sprintf("%s by %s (%d)", titleStyle.Render(e.TrackName), artistStyle.Render(e.Artist), e.Popularity)
		} else {
			result = warningStyle.Render("no song found")
		}

		genre := e.Genre
		if e.Input != "" && !strings.EqualFold(e.Input, e.Genre) {
			genre = fmt.Sprintf("%s (from %q)", e.Genre, e.Input)
		}
		fmt.Fprintf(w, "%s  %s <%d: %s [%d attempts]\n", when, genre, e.Threshold, result, e.Attempts)
	}
}
