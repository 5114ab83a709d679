package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer creates a renderer writing summaries to stdout. Color is used
// only when requested and stdout is a terminal.
func NewRenderer(color bool) *Renderer {
	r := &Renderer{}
	r.SetOutput(os.Stdout, color)
	return r
}

// SetOutput redirects terminal summaries to w
func (r *Renderer) SetOutput(w io.Writer, color bool) {
	r.out = w
	r.color = color && shouldColorize(w)
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes an already rendered LLM note to path
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if markdown == "" {
		return nil
	}
	return writeFile(path, []byte(markdown))
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(report *model.Report) {
	_, _ = fmt.Fprint(r.out, r.Summary(report))
}

func writeFile(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# trackmatch: %s\n\n", report.Subject)
	if report.SourceURL != "" {
		fmt.Fprintf(&b, "- **Source**: %s\n", report.SourceURL)
	}
	fmt.Fprintf(&b, "- **Action**: `%s`\n", report.ActionID)
	fmt.Fprintf(&b, "- **Status**: `%s`\n", report.Status)
	if report.Message != "" {
		fmt.Fprintf(&b, "- **Result**: %s\n", report.Message)
	}
	fmt.Fprintf(&b, "- **Looks like music**: %t\n", report.MusicHint)

	b.WriteString("\n## Song guess\n\n")
	if g := report.Guess; g != nil {
		fmt.Fprintf(&b, "- **Song**: %s\n", g.Song)
		if g.Artist != "" {
			fmt.Fprintf(&b, "- **Artist**: %s\n", g.Artist)
		}
		fmt.Fprintf(&b, "- **Confidence**: %d/100\n", g.Confidence)
		fmt.Fprintf(&b, "- **Sources**: %s\n", strings.Join(kindNames(g.Sources), ", "))
		if len(g.PossibleArtists) > 1 {
			fmt.Fprintf(&b, "- **Possible artists**: %s\n", strings.Join(g.PossibleArtists, ", "))
		}
	} else {
		b.WriteString("_No song detected._\n")
	}

	if len(report.Signals) > 0 {
		b.WriteString("\n## Signals\n\n")
		tw := table.NewWriter()
		tw.AppendHeader(table.Row{"Kind", "Value", "Weight"})
		for _, s := range report.Signals {
			tw.AppendRow(table.Row{s.Kind.String(), s.Value, s.Weight})
		}
		b.WriteString(tw.RenderMarkdown())
		b.WriteString("\n")
	}

	if len(report.Queries) > 0 {
		b.WriteString("\n## Queries\n\n")
		tw := table.NewWriter()
		tw.AppendHeader(table.Row{"Query", "Results", "Cached", "Error"})
		for _, q := range report.Queries {
			tw.AppendRow(table.Row{q.Query, q.Results, q.Cached, q.Error})
		}
		b.WriteString(tw.RenderMarkdown())
		b.WriteString("\n")
	}

	if o := report.Outcome; o != nil {
		b.WriteString("\n## Match\n\n")
		switch {
		case o.Match != nil:
			b.WriteString(candidateTable([]model.ScoredCandidate{*o.Match}).RenderMarkdown())
			b.WriteString("\n")
		case len(o.Candidates) > 0:
			b.WriteString(candidateTable(o.Candidates).RenderMarkdown())
			b.WriteString("\n")
		default:
			b.WriteString("_No candidates._\n")
		}
	}

	if a := report.Added; a != nil {
		b.WriteString("\n## Playlist\n\n")
		if a.OK {
			fmt.Fprintf(&b, "Added `%s` to playlist `%s`.\n", a.URI, a.PlaylistID)
		} else {
			fmt.Fprintf(&b, "Adding `%s` failed: %s\n", a.URI, a.Error)
		}
	}

	return b.String()
}

// Summary renders the terminal summary
func (r *Renderer) Summary(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", r.paint(text.Bold, "trackmatch:"), report.Subject)
	fmt.Fprintf(&b, "Status: %s", r.paint(statusColor(report.Status), string(report.Status)))
	if report.Message != "" {
		fmt.Fprintf(&b, " (%s)", report.Message)
	}
	b.WriteString("\n")

	if g := report.Guess; g != nil {
		artist := g.Artist
		if artist == "" {
			artist = "unknown artist"
		}
		fmt.Fprintf(&b, "Guess: %q by %s, confidence %d/100\n", g.Song, artist, g.Confidence)
	}

	if o := report.Outcome; o != nil && len(o.Candidates) > 0 {
		tw := candidateTable(o.Candidates)
		tw.SetStyle(table.StyleRounded)
		b.WriteString(tw.Render())
		b.WriteString("\n")
	}

	if a := report.Added; a != nil {
		if a.OK {
			fmt.Fprintf(&b, "%s %s\n", r.paint(text.FgGreen, "Added to playlist:"), a.URI)
		} else {
			fmt.Fprintf(&b, "%s %s\n", r.paint(text.FgRed, "Playlist add failed:"), a.Error)
		}
	}

	return b.String()
}

func candidateTable(candidates []model.ScoredCandidate) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "Track", "Artists", "Album", "Duration", "Confidence", "URI"})
	for i, c := range candidates {
		tw.AppendRow(table.Row{
			i + 1,
			c.Name,
			c.ArtistsDisplay(),
			c.Album,
			formatDuration(c.DurationMs),
			fmt.Sprintf("%d%%", c.DisplayConfidence()),
			c.URI,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return tw
}

func formatDuration(ms int) string {
	if ms <= 0 {
		return ""
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func statusColor(s model.Status) text.Color {
	switch s {
	case model.StatusAutoMatch:
		return text.FgGreen
	case model.StatusDisambiguate:
		return text.FgYellow
	case model.StatusCancelled:
		return text.FgHiBlack
	default:
		return text.FgRed
	}
}

func (r *Renderer) paint(c text.Color, s string) string {
	if !r.color {
		return s
	}
	return c.Sprint(s)
}
