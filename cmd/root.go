package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "todo-list.com/todo-list/internal/configs"
	apperrors "todo-list.com/todo-list/internal/errors"
	"todo-list.com/todo-list/internal/services"
	"todo-list.com/todo-list/internal/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "todo-list",
	Short:         "To-do list manager",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (defaults to $CONFIG_FILE)")
}

// app bundles what every subcommand needs once configuration is loaded.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  storage.Store
	close  func() error
}

func setup() (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using environment variables")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	store, closeFn, err := config.NewStore(cfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, close: closeFn}, nil
}

func (a *app) listOptions() []services.Option {
	opts := []services.Option{
		services.WithKey(a.cfg.StorageKey),
		services.WithLogger(a.logger),
	}
	if a.cfg.OptimisticLocking {
		opts = append(opts, services.WithOptimisticLocking())
	}
	return opts
}

// openList hydrates a TaskList. Unreadable stored data is reported but the
// command continues on an empty list.
func (a *app) openList(ctx context.Context) (*services.TaskList, error) {
	list, err := services.NewTaskList(ctx, a.store, a.listOptions()...)
	if err != nil {
		var readErr *apperrors.StorageReadError
		if !errors.As(err, &readErr) {
			return nil, err
		}
	}
	return list, nil
}

func (a *app) shutdown() {
	if err := a.close(); err != nil {
		a.logger.Warn("failed to close storage", "err", err)
	}
}
