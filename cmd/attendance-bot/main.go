package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/neoleocvxs-lang/attendance-bot/internal/checker"
	"github.com/neoleocvxs-lang/attendance-bot/internal/config"
	"github.com/neoleocvxs-lang/attendance-bot/internal/daemon"
	"github.com/neoleocvxs-lang/attendance-bot/internal/notify"
	"github.com/neoleocvxs-lang/attendance-bot/internal/portal"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/dateutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "attendance-bot",
		Short: "Attendance verification bot",
		Long:  "Verify clock-in/out scans against the work schedule and push daily reports to LINE",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Credentials commonly live in a .env next to the binary
			_ = godotenv.Load()

			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	var dryRun bool
	var dateOverride string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single attendance check and push the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ExpandEnvVars()

			chk, err := initializeChecker(cfg)
			if err != nil {
				return err
			}

			now := time.Now()
			if dateOverride != "" {
				date, err := dateutil.ParseLabel(dateOverride)
				if err != nil {
					return fmt.Errorf("invalid --date, want dd/mm/yyyy: %w", err)
				}
				// An explicit date pins the target past the cutoff and
				// runs through the evening checkpoint rules
				now = date.Add(19 * time.Hour)
			}

			outcome, err := chk.Run(context.Background(), now, dryRun)
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}

			fmt.Printf("Target date: %s (%s)\n",
				dateutil.FormatLabel(outcome.TargetDate), outcome.Shift.Kind)
			fmt.Printf("In: %s  Out: %s\n", outcome.Result.In, outcome.Result.Out)
			if outcome.Suppressed {
				fmt.Printf("Notification suppressed: %s\n", outcome.Reason)
			} else if dryRun {
				fmt.Printf("\n[DRY RUN] Message that would be pushed:\n%s\n", outcome.Message)
			} else {
				fmt.Println("Notification delivered")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the report without pushing it")
	cmd.Flags().StringVar(&dateOverride, "date", "", "Check a specific date (dd/mm/yyyy) instead of today")

	return cmd
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run in daemon mode with scheduled checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ExpandEnvVars()

			chk, err := initializeChecker(cfg)
			if err != nil {
				return err
			}

			d := daemon.NewDaemon(chk, cfg.Daemon.GetCheckpoints(), cfg.Daemon.SystemTray, logger)
			return d.Start()
		},
	}
}

func initializeChecker(cfg *config.Config) (*checker.Checker, error) {
	session := portal.NewSessionManager(
		cfg.Portal.BaseURL,
		cfg.Portal.Username,
		cfg.Portal.Password,
		cfg.Portal.GetSessionLifetime(),
		logger,
	)

	source := portal.NewClient(cfg.Portal.BaseURL, session, logger)

	sink := notify.NewLineClient(
		cfg.Line.APIEndpoint,
		cfg.Line.AccessToken,
		cfg.Line.UserID,
		logger,
	)

	return checker.NewChecker(cfg, source, sink, logger), nil
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
