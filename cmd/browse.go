package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/cinetrack/filter"
	"github.com/s0up4200/cinetrack/movie"
	"github.com/s0up4200/cinetrack/session"
)

const browseHelp = `Commands:
  popular            load popular movies
  search <query>     search by title (empty query loads popular)
  list               show the current results
  fav <id>           toggle favorite
  note <id> <text>   set a note (empty text clears it)
  detail <id>        show movie details
  favorites          show all favorites
  filter [expr]      filter listings (no expression clears it)
  help               show this help
  quit               exit
`

// browseCmd represents the interactive browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browse and search the catalog",
	Long: `Start an interactive session. Favorites and notes are kept for the
lifetime of the session and shown alongside results.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := &browser{
			sess:      sess,
			favorites: prefs.FavoriteIDs,
			filters:   filters,
			formatter: formatter,
			options:   formatOptions(),
			out:       cmd.OutOrStdout(),
			logger:    logger,
		}
		return b.run(cmd.Context(), os.Stdin)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// browser is a line-oriented front end over a session
type browser struct {
	sess      *session.Session
	favorites func() []int
	filters   *filter.Manager
	formatter *movie.ConsoleFormatter
	options   movie.FormatOptions
	active    filter.CompiledFilter
	out       io.Writer
	logger    zerolog.Logger
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	states, unsubscribe := b.sess.Subscribe()
	defer unsubscribe()

	go func() {
		for st := range states {
			b.logger.Debug().
				Str("status", st.Status.String()).
				Uint64("token", st.Token).
				Str("query", st.Query).
				Int("results", len(st.Results)).
				Msg("Session state changed")
		}
	}()

	fmt.Fprintln(b.out, "Type 'help' for a list of commands.")

	scanner := bufio.NewScanner(in)
	b.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line != "" && b.handle(ctx, line) {
			return nil
		}
		b.prompt()
	}

	return scanner.Err()
}

func (b *browser) prompt() {
	fmt.Fprint(b.out, "> ")
}

// handle runs one command line and reports whether the user asked to quit
func (b *browser) handle(ctx context.Context, line string) bool {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(b.out, browseHelp)
	case "popular":
		b.sess.LoadPopular(ctx)
		b.sess.Wait()
		b.printState()
	case "search":
		b.sess.Search(ctx, rest)
		b.sess.Wait()
		b.printState()
	case "list":
		b.printState()
	case "fav":
		id, ok := b.parseID(rest)
		if !ok {
			return false
		}
		if b.sess.ToggleFavorite(id).Favorite {
			fmt.Fprintf(b.out, "★ Added %d to favorites\n", id)
		} else {
			fmt.Fprintf(b.out, "Removed %d from favorites\n", id)
		}
	case "note":
		idArg, text, _ := strings.Cut(rest, " ")
		if idArg == "" {
			fmt.Fprintln(b.out, "Usage: note <id> <text>")
			return false
		}
		id, ok := b.parseID(idArg)
		if !ok {
			return false
		}
		text = strings.TrimSpace(text)
		b.sess.SetNote(id, text)
		if text == "" {
			fmt.Fprintf(b.out, "Note cleared for %d\n", id)
		} else {
			fmt.Fprintf(b.out, "Note saved for %d\n", id)
		}
	case "detail":
		id, ok := b.parseID(rest)
		if !ok {
			return false
		}
		detail, err := b.sess.FetchDetail(ctx, id)
		if err != nil {
			fmt.Fprintf(b.out, "Error: %v\n", err)
			return false
		}
		fmt.Fprint(b.out, b.formatter.FormatDetail(detail, b.sess.Overlay(id)))
	case "favorites":
		b.printFavorites(ctx)
	case "filter":
		b.setFilter(rest)
	default:
		fmt.Fprintf(b.out, "Unknown command %q. Type 'help' for a list of commands.\n", command)
	}

	return false
}

func (b *browser) parseID(arg string) (int, bool) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		fmt.Fprintf(b.out, "Invalid movie id %q\n", arg)
		return 0, false
	}
	return id, true
}

func (b *browser) setFilter(expression string) {
	if expression == "" {
		b.active = nil
		fmt.Fprintln(b.out, "Filter cleared")
		return
	}

	f, ok := b.filters.GetFilter(expression)
	if !ok {
		var err error
		f, err = b.filters.Compile(expression)
		if err != nil {
			fmt.Fprintf(b.out, "Error: %v\n", err)
			return
		}
	}

	b.active = f
	fmt.Fprintf(b.out, "Filter set: %s\n", f.Expression())
}

func (b *browser) apply(rows []movie.Row) []movie.Row {
	if b.active == nil {
		return rows
	}
	return filter.Apply(b.active, rows)
}

func (b *browser) printState() {
	st := b.sess.State()

	title := "Popular movies"
	if st.IsSearch() {
		title = fmt.Sprintf("Results for %q", st.Query)
	}

	switch st.Status {
	case session.StatusIdle:
		fmt.Fprintln(b.out, "Nothing loaded yet. Try 'popular' or 'search <query>'.")
		return
	case session.StatusLoading:
		fmt.Fprintln(b.out, "Loading...")
		return
	case session.StatusFailed:
		fmt.Fprintf(b.out, "Error: %s\n", st.Message)
		if len(st.Results) == 0 {
			return
		}
		title = "Previous results"
	}

	fmt.Fprint(b.out, b.formatter.FormatRows(title, b.apply(b.sess.Rows()), b.options))
}

func (b *browser) printFavorites(ctx context.Context) {
	ids := b.favorites()
	if len(ids) == 0 {
		fmt.Fprintln(b.out, "No favorites yet")
		return
	}

	details, err := b.sess.FetchDetails(ctx, ids)
	if err != nil {
		fmt.Fprintf(b.out, "Warning: %v\n", err)
	}

	rows := make([]movie.Row, 0, len(details))
	for _, id := range ids {
		if d, ok := details[id]; ok {
			rows = append(rows, movie.Row{Movie: d.Movie, Overlay: b.sess.Overlay(id)})
		}
	}

	fmt.Fprint(b.out, b.formatter.FormatRows("Favorites", b.apply(rows), b.options))
}
