package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yourusername/robot-dashboard/internal/config"
	"github.com/yourusername/robot-dashboard/internal/dashboard"
	"github.com/yourusername/robot-dashboard/internal/robot"
	"github.com/yourusername/robot-dashboard/internal/tui"
)

var (
	// Version information (set via -ldflags)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"

	// CLI flags
	logLevel     string
	robotURL     string
	pollInterval time.Duration
	commands     []string
	ordering     string
	headless     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "robot-dashboard",
		Short: "Operator dashboard for the robot webserver",
		Long: `robot-dashboard polls the robot webserver's status endpoint to show whether
the robot is reachable, and sends a command to the webserver for every button pressed.`,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; overrides LOG_LEVEL env var)")
	rootCmd.Flags().StringVar(&robotURL, "url", "", "Robot webserver base URL (overrides ROBOT_URL env var)")
	rootCmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Status poll period (overrides POLL_INTERVAL env var)")
	rootCmd.Flags().StringSliceVar(&commands, "command", nil, "Command button id, repeatable (overrides COMMANDS env var)")
	rootCmd.Flags().StringVar(&ordering, "ordering", "", "Response ordering: last-response or discard-stale (overrides ORDERING env var)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "Log state instead of drawing a terminal UI; command ids are read from stdin")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("robot-dashboard %s\n", version)
			fmt.Printf("  git commit: %s\n", gitCommit)
			fmt.Printf("  build date: %s\n", buildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Startup failures go to stderr; the terminal UI has not taken over yet.
	bootLogger := setupLogging(bootstrapLevel(logLevel), os.Stderr)

	// Load configuration
	cfg, err := loadConfig(cmd)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if !headless && !isatty.IsTerminal(os.Stdout.Fd()) {
		bootLogger.Fatal().Msg("The dashboard UI needs a terminal; use --headless to run without one")
	}

	// Setup logging. The terminal UI owns stdout, so log to a file there.
	var logOut io.Writer = os.Stdout
	if !headless {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			bootLogger.Fatal().Err(err).Str("log_file", cfg.LogFile).Msg("Failed to open log file")
		}
		defer logFile.Close()
		logOut = logFile
	}
	logger := setupLogging(cfg.LogLevel, logOut)

	logger.Info().
		Str("version", version).
		Str("git_commit", gitCommit).
		Str("build_date", buildDate).
		Msg("Starting robot-dashboard")

	logger.Info().
		Str("robot_url", cfg.RobotURL).
		Dur("poll_interval", cfg.PollInterval).
		Strs("commands", cfg.Commands).
		Str("ordering", cfg.Ordering).
		Bool("headless", headless).
		Msg("Configuration loaded")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	client := robot.NewClient(cfg.RobotURL, cfg.RequestTimeout, logger)
	opts := dashboard.Options{
		PollInterval:   cfg.PollInterval,
		CommandDisplay: cfg.CommandDisplay,
		ButtonFlash:    cfg.ButtonFlash,
		DiscardStale:   cfg.Ordering == config.OrderingDiscardStale,
		Logger:         logger,
	}

	var ui *tui.Dashboard
	var view dashboard.View
	if headless {
		view = dashboard.NewLogView(logger, cfg.Commands).View()
	} else {
		ui = tui.NewDashboard(fmt.Sprintf("Robot Dashboard  %s", cfg.RobotURL), cfg.Commands)
		view = ui.View()
	}

	ctrl, err := dashboard.New(client, view, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create controller")
	}

	servers := startServers(cfg, ctrl, logger)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		servers.shutdown(shutdownCtx)
	}()

	if headless {
		go readCommands(ctx, os.Stdin, ctrl, logger)
		if err := ctrl.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("Controller error")
			return err
		}
		logger.Info().Msg("Shutdown complete")
		return nil
	}

	return runUI(ctx, cancel, ui, ctrl, logger)
}

// runUI runs the controller behind the terminal UI until either the UI is
// closed or ctx is cancelled.
func runUI(ctx context.Context, cancel context.CancelFunc, ui *tui.Dashboard, ctrl *dashboard.Controller, logger zerolog.Logger) error {
	ui.SetPressHandler(ctrl.Press)

	errCh := make(chan error, 1)
	go func() {
		errCh <- ctrl.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		ui.Stop()
	}()

	uiErr := ui.Run()
	cancel()

	select {
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("Controller error")
			return err
		}
	case <-time.After(2 * time.Second):
		logger.Warn().Msg("Controller did not stop in time")
	}

	if uiErr != nil {
		logger.Error().Err(uiErr).Msg("Terminal UI error")
		return uiErr
	}

	logger.Info().Msg("Shutdown complete")
	return nil
}

// readCommands sends every non-empty line of r as a command id
func readCommands(ctx context.Context, r io.Reader, ctrl *dashboard.Controller, logger zerolog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		ctrl.Press(id)
	}
	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Msg("Stopped reading commands from stdin")
	}
}

// loadConfig reads the environment and applies CLI flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("url") {
		cfg.RobotURL = robotURL
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval = pollInterval
	}
	if flags.Changed("command") {
		cfg.Commands = commands
	}
	if flags.Changed("ordering") {
		cfg.Ordering = ordering
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bootstrapLevel picks the log level used before the configuration is
// loaded: the --log-level flag, then LOG_LEVEL, then info.
func bootstrapLevel(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return env
	}
	return "info"
}

// setupLogging configures structured JSON logging
func setupLogging(level string, out io.Writer) zerolog.Logger {
	// Parse log level. An empty level parses as NoLevel, which would
	// silence everything including Fatal.
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || logLevel == zerolog.NoLevel {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(out).With().
		Timestamp().
		Str("service", "robot-dashboard").
		Logger()

	return logger
}
