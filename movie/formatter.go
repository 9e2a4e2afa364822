package movie

import (
	"fmt"
	"strings"
)

// FormatOptions contains options for formatting output
type FormatOptions struct {
	ShowOverview bool
	ShowPoster   bool
	ShowNotes    bool
}

// ConsoleFormatter provides console output formatting for movies
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatRows formats a list of rows for console display
func (f *ConsoleFormatter) FormatRows(title string, rows []Row, options FormatOptions) string {
	if len(rows) == 0 {
		return "No movies found"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s (%d):\n\n", title, len(rows))

	for i, row := range rows {
		isLast := i == len(rows)-1
		f.formatRow(&sb, row, isLast, options)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func (f *ConsoleFormatter) formatRow(sb *strings.Builder, row Row, isLast bool, options FormatOptions) {
	prefix := "├"
	indent := "│   "
	if isLast {
		prefix = "╰"
		indent = "    "
	}

	fmt.Fprintf(sb, "%s── %s", prefix, row.Title)
	if year := row.ReleaseYear(); year != "" {
		fmt.Fprintf(sb, " (%s)", year)
	}
	if row.Overlay.Favorite {
		sb.WriteString(" ★")
	}
	sb.WriteString("\n")

	fmt.Fprintf(sb, "%sID: %d | Rating: %.1f\n", indent, row.ID, row.VoteAverage)

	if options.ShowPoster {
		if url, ok := row.PosterURL(); ok {
			fmt.Fprintf(sb, "%sPoster: %s\n", indent, url)
		}
	}
	if options.ShowOverview && row.Overview != "" {
		fmt.Fprintf(sb, "%s%s\n", indent, truncate(row.Overview, 120))
	}
	if options.ShowNotes && row.Overlay.Note != "" {
		fmt.Fprintf(sb, "%sNote: %s\n", indent, row.Overlay.Note)
	}
}

// FormatDetail formats a single movie detail with its overlay
func (f *ConsoleFormatter) FormatDetail(detail Detail, overlay Overlay) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s", detail.Title)
	if year := detail.ReleaseYear(); year != "" {
		fmt.Fprintf(&sb, " (%s)", year)
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Rating:    %.1f\n", detail.VoteAverage)
	if len(detail.Genres) > 0 {
		fmt.Fprintf(&sb, "Genres:    %s\n", strings.Join(detail.GenreNames(), ", "))
	}
	if url, ok := detail.PosterURL(); ok {
		fmt.Fprintf(&sb, "Poster:    %s\n", url)
	}
	fmt.Fprintf(&sb, "Favorite:  %s\n", yesNo(overlay.Favorite))
	if overlay.Note != "" {
		fmt.Fprintf(&sb, "Note:      %s\n", overlay.Note)
	}

	sb.WriteString("\n")
	if detail.Overview == "" {
		sb.WriteString("No synopsis available.\n")
	} else {
		sb.WriteString(detail.Overview)
		sb.WriteString("\n")
	}

	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
