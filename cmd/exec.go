package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"grandprix-booking/config"
	"grandprix-booking/internal/activitylog"
	"grandprix-booking/internal/notify"
	"grandprix-booking/internal/storage"
	"grandprix-booking/models"
	"grandprix-booking/monitoring"
	"grandprix-booking/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Start runs the command line until the command finishes or the process is
// interrupted.
func Start() error {
	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "grandprix",
		Short:         "Grand Prix ticket booking system",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env") {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			setupLogger(config.LoadConfig().LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		newDemoCmd(),
		newStatusCmd(),
		newUserCmd(),
		newVerifyCmd(),
	)
	return root
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// openSystem wires the repository from the environment.
func openSystem(ctx context.Context) (*services.BookingSystem, *config.Config, error) {
	cfg := config.LoadConfig()

	scheme, err := models.ParsePasswordScheme(cfg.PasswordScheme)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}

	publisher, err := notify.NewPublisher(cfg)
	if err != nil {
		// Notifications are optional; keep booking without them.
		slog.Warn("Order notifications disabled", "provider", cfg.NotifyProvider, "error", err)
		publisher = notify.Nop{}
	}

	system, err := services.NewBookingSystem(ctx, services.Options{
		Name:            cfg.AppName,
		Version:         cfg.Version,
		Store:           store,
		ActivityLog:     activitylog.New(cfg.LogFile),
		Publisher:       publisher,
		Monitor:         monitoring.NewMonitor(),
		PasswordScheme:  scheme,
		DisableAutoSave: !cfg.AutoSave,
	})
	if err != nil {
		store.Close()
		publisher.Close()
		return nil, nil, err
	}

	slog.Info("Booking system ready", "store", cfg.StoreBackend, "notify", cfg.NotifyProvider, "auto_save", cfg.AutoSave)
	return system, cfg, nil
}

// closeSystem persists pending changes when write-through is off and
// releases the system's resources.
func closeSystem(ctx context.Context, system *services.BookingSystem, cfg *config.Config) {
	if !cfg.AutoSave {
		system.SaveData(ctx)
	}
	if err := system.Close(); err != nil {
		slog.Error("Failed to close booking system", "error", err)
	}
}
