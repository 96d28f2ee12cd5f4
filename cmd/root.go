package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kodayn/osukit/config"
	"github.com/kodayn/osukit/filter"
	"github.com/kodayn/osukit/osuapi"
	"github.com/kodayn/osukit/tracker"
)

var (
	cfgFile        string
	cfg            *config.Config
	logger         zerolog.Logger
	osuClient      *osuapi.Client
	operations     *tracker.Tracker
	presetManager  *filter.Manager
	scoreEvaluator *filter.ConcurrentEvaluator

	// Command flags
	filterExpr  string
	preset      string
	modeFlag    string
	limitFlag   int
	jsonOut     bool
	showStats   bool
	showDetails bool
	showDates   bool
	outputPath  string
)

var (
	appVersion   = "dev"
	appBuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "osukit",
	Short: "A tool to track osu! players, scores and beatmaps",
	Long: `osukit is a CLI for the osu! API that lets you look up player profiles,
top and recent plays, beatmap leaderboards, multiplayer matches and
replays, with expression filters to slice the results.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records the build information stamped in by the linker
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = version
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&showDetails, "details", false, "show star rating, BPM, status and combo per play")
	rootCmd.PersistentFlags().BoolVar(&showDates, "dates", false, "show the date each play was set")

	// Add subcommands
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Create osu! API client
	opts := []osuapi.Option{
		osuapi.WithTimeout(cfg.Osu.Timeout),
		osuapi.WithRetries(cfg.Osu.Retries),
	}
	if cfg.Osu.BaseURL != "" {
		opts = append(opts, osuapi.WithBaseURL(cfg.Osu.BaseURL))
	}
	if cfg.Osu.CircuitBreaker {
		opts = append(opts, osuapi.WithCircuitBreaker())
	}

	osuClient, err = osuapi.NewClient(cfg.Osu.APIKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create osu! client: %w", err)
	}

	operations = tracker.New(osuClient, logger)

	// Register filter presets from config
	presetManager = filter.NewManager()
	for name, expression := range cfg.Filter.Presets {
		if err := presetManager.RegisterFilter(name, expression); err != nil {
			logger.Warn().Err(err).Str("preset", name).Msg("Skipping invalid filter preset")
		}
	}

	scoreEvaluator = filter.NewConcurrentEvaluator()

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
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

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// resolveMode determines the game mode from the flag or config
func resolveMode() (osuapi.GameMode, error) {
	name := modeFlag
	if name == "" {
		name = cfg.Osu.Mode
	}
	if name == "" {
		return osuapi.ModeOsu, nil
	}
	return osuapi.ParseGameMode(name)
}

// resolveLimit determines the result limit from the flag or config
func resolveLimit(cmd *cobra.Command) int {
	if cmd.Flags().Changed("limit") {
		return limitFlag
	}
	return cfg.Output.Limit
}

// resolveFilter determines the filter to apply.
// Priority: command line filter > preset > config default.
func resolveFilter() (filter.CompiledFilter, error) {
	if filterExpr != "" {
		compiled, err := filter.CompileFilter(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return compiled, nil
	}

	if preset != "" {
		compiled, ok := presetManager.GetFilter(preset)
		if !ok {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		return compiled, nil
	}

	if cfg.Filter.Default != "" {
		compiled, err := filter.CompileFilter(cfg.Filter.Default)
		if err != nil {
			return nil, fmt.Errorf("invalid default filter: %w", err)
		}
		return compiled, nil
	}

	return nil, nil
}

// applyFilter filters plays with the resolved filter, if any
func applyFilter(ctx context.Context, plays []tracker.ScoreInfo) ([]tracker.ScoreInfo, error) {
	compiled, err := resolveFilter()
	if err != nil {
		return nil, err
	}
	if compiled == nil {
		return plays, nil
	}

	matches, err := scoreEvaluator.Evaluate(ctx, compiled, plays)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("filter", compiled.Expression()).
		Int("matches", len(matches)).
		Msg("Applied filter")

	return matches, nil
}

// formatOptions builds the render options, letting flags override config
func formatOptions(cmd *cobra.Command) tracker.FormatOptions {
	opts := tracker.FormatOptions{
		ShowDetails: cfg.Output.ShowDetails,
		ShowDate:    cfg.Output.ShowDate,
	}
	if cmd.Flags().Changed("details") {
		opts.ShowDetails = showDetails
	}
	if cmd.Flags().Changed("dates") {
		opts.ShowDate = showDates
	}
	return opts
}

// jsonOutput reports whether results should be printed as JSON
func jsonOutput() bool {
	return jsonOut || cfg.Output.Format == "json"
}

// printJSON prints a value as indented JSON on stdout
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test the connection to the osu! API",
	Long:    `Test the connection to the osu! API and verify the configured API key.`,
	PreRunE: initializeApp,
	RunE:    runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Println("Testing connection to the osu! API...")

	ctx := context.Background()
	if err := osuClient.TestConnection(ctx); err != nil {
		return err
	}

	fmt.Println("✓ Connection successful!")
	return nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("osukit %s (built %s)\n", appVersion, appBuildTime)
	},
}
