package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/cinetrack/filter"
	"github.com/s0up4200/cinetrack/session"
)

// popularCmd represents the popular command
var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List popular movies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd, "Popular movies", sess.LoadPopular)
	},
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search movies by title",
	Long:  `Search the TMDB catalog. An empty query lists popular movies instead.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return runListing(cmd, fmt.Sprintf("Results for %q", query), func(ctx context.Context) uint64 {
			return sess.Search(ctx, query)
		})
	},
}

// detailCmd represents the detail command
var detailCmd = &cobra.Command{
	Use:   "detail <id>",
	Short: "Show details for a movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid movie id %q", args[0])
		}

		detail, err := sess.FetchDetail(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to fetch movie %d: %w", id, err)
		}

		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDetail(detail, sess.Overlay(id)))
		return nil
	},
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to TMDB",
	Long:  `Test the connection to the TMDB API and display the active configuration.`,
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func init() {
	addFilterFlags(popularCmd)
	addFilterFlags(searchCmd)

	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(detailCmd)
	rootCmd.AddCommand(testCmd)
}

// runListing issues a load through the session, waits for it and prints the rows
func runListing(cmd *cobra.Command, title string, load func(context.Context) uint64) error {
	f, err := selectedFilter()
	if err != nil {
		return err
	}

	load(cmd.Context())
	sess.Wait()

	st := sess.State()
	if st.Status == session.StatusFailed {
		return errors.New(st.Message)
	}

	rows := sess.Rows()
	if f != nil {
		rows = filter.Apply(f, rows)
		logger.Debug().Int("total", len(st.Results)).Int("matched", len(rows)).Msg("Applied filter")
	}

	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRows(title, rows, formatOptions()))
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to TMDB at %s...\n", cfg.TMDB.URL)

	movies, err := tmdbClient.FetchPopular(cmd.Context())
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Connection successful!")
	fmt.Fprintf(out, "\nTMDB:\n")
	fmt.Fprintf(out, "- Language: %s\n", cfg.TMDB.Language)
	fmt.Fprintf(out, "- Popular movies on first page: %d\n", len(movies))
	if cfg.TMDB.RateLimit > 0 {
		fmt.Fprintf(out, "- Rate limit: %.1f req/s (burst %d)\n", cfg.TMDB.RateLimit, cfg.TMDB.RateBurst)
	} else {
		fmt.Fprintln(out, "- Rate limit: Disabled")
	}

	names := filters.ListFilters()
	if len(names) > 0 {
		fmt.Fprintf(out, "\nFilter presets:\n")
		for _, name := range names {
			f, _ := filters.GetFilter(name)
			fmt.Fprintf(out, "  • %s: %s\n", name, f.Expression())
		}
	}

	return nil
}
