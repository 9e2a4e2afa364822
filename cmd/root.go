package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/cinetrack/config"
	"github.com/s0up4200/cinetrack/filter"
	"github.com/s0up4200/cinetrack/movie"
	"github.com/s0up4200/cinetrack/preferences"
	"github.com/s0up4200/cinetrack/session"
	"github.com/s0up4200/cinetrack/tmdb"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	tmdbClient *tmdb.Client
	prefs      *preferences.Store
	sess       *session.Session
	filters    *filter.Manager
	formatter  = movie.NewConsoleFormatter()

	// Command flags
	filterExpr   string
	preset       string
	showOverview bool
	showPoster   bool

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cinetrack",
	Short: "Browse and search the TMDB movie catalog",
	Long: `cinetrack is a CLI for browsing popular movies, searching the TMDB catalog
and keeping personal favorites and notes while you browse.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// SetVersion sets the version reported by the version command
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&showOverview, "overview", false, "show movie overviews in listings")
	rootCmd.PersistentFlags().BoolVar(&showPoster, "posters", false, "show poster URLs in listings")

	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	tmdbClient, err = tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.URL, cfg.TMDB.Language, logger,
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithRateLimit(cfg.TMDB.RateLimit, cfg.TMDB.RateBurst),
		tmdb.WithUserAgent("cinetrack/"+version),
	)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("failed to load filter presets: %w", err)
	}

	prefs = preferences.NewStore(logger)
	sess = session.New(tmdbClient, prefs, logger,
		session.WithDetailConcurrency(cfg.Session.DetailConcurrency),
	)

	logger.Debug().
		Str("url", cfg.TMDB.URL).
		Str("language", cfg.TMDB.Language).
		Int("presets", len(cfg.Filter.Presets)).
		Msg("Initialized catalog session")

	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if sess != nil {
		sess.Close()
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; no colour when stderr is redirected
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// selectedFilter resolves --filter and --preset. It returns nil when neither is set.
func selectedFilter() (filter.Filter, error) {
	// Priority: command line filter > preset
	if filterExpr != "" {
		f, err := filters.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		f, ok := filters.GetFilter(preset)
		if !ok {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		return f, nil
	}

	return nil, nil
}

func formatOptions() movie.FormatOptions {
	return movie.FormatOptions{
		ShowOverview: showOverview,
		ShowPoster:   showPoster,
		ShowNotes:    true,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:                "version",
	Short:              "Print version information",
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cinetrack %s (built %s)\n", version, buildTime)
	},
}
