package cmd

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"learno_backend/internal/app"
	"learno_backend/internal/config"
	"learno_backend/pkg/database"
	"learno_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serveOptions struct {
	migrateOnly bool
	memoryDB    bool
	noWatch     bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.migrateOnly, "migrate-only", false, "只执行数据库迁移，完成后退出")
	cmd.Flags().BoolVar(&opts.memoryDB, "memory-db", false, "Use a throwaway in-memory SQLite database")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Disable config hot reload")
	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.MigrateOnly = opts.migrateOnly

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	if opts.migrateOnly {
		if _, err := database.InitDB(&cfg.Database, false); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Log.Info("数据库迁移完成，退出程序")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appOpts := app.Options{}
	if !opts.noWatch {
		appOpts.ConfigFile = filepath.Join(dir, "config.yaml")
	}
	if opts.memoryDB {
		var db *gorm.DB
		if db, err = database.OpenInMemory("learno-" + uuid.NewString()); err != nil {
			return err
		}
		appOpts.DB = db
		logger.Log.Warn("Using in-memory database, saved courses are lost on exit")
	}

	application, err := app.NewApp(ctx, cfg, appOpts)
	if err != nil {
		logger.Log.Error("Failed to start", zap.Error(err))
		return err
	}
	return application.Run(ctx)
}

