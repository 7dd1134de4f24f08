package main

import (
	"os"

	"trendscope-backend/cache"
	"trendscope-backend/config"
	"trendscope-backend/database"
	"trendscope-backend/logger"
	"trendscope-backend/services"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type rootOptions struct {
	logLevel string
	timeout  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "trendctl",
		Short:        "Bulk maintenance for the trendscope catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(); err != nil {
				return err
			}
			// stdout carries export documents
			logger.Setup(opts.logLevel, "text").SetOutput(os.Stderr)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.timeout, "timeout", "", "Transaction timeout, e.g. 30s (defaults to BULK_TX_TIMEOUT)")

	cmd.AddCommand(newExportCmd(opts), newImportCmd(opts), newCleanupCmd(opts))
	return cmd
}

// env is what every subcommand works with. close releases the connections.
type env struct {
	db    *gorm.DB
	bulk  *services.BulkService
	tree  *cache.TreeCache
	close func()
}

func (o *rootOptions) connect() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.timeout != "" {
		if cfg.BulkTxTimeout, err = parseDuration(o.timeout); err != nil {
			return nil, err
		}
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	e := &env{db: db}
	closers := []func(){func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}}

	// With redis the CLI shares the server's maintenance lock and can drop
	// the cached category tree after a change.
	var locker services.Locker = &services.LocalLocker{}
	if cfg.RedisURL != "" {
		client, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, using a process-local lock")
		} else {
			closers = append(closers, func() { client.Close() })
			locker = cache.NewRedisLocker(client, cfg.BulkTxTimeout+cache.DefaultLockTTL)
			e.tree = cache.NewTreeCache(client, cfg.CategoryCacheTTL)
		}
	}

	e.bulk = services.NewBulkService(db, cfg.BulkTxTimeout, locker)
	e.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return e, nil
}
