package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Create or update the record store schema",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)

		_, closeLedger, err := openLedger(context.Background(), cfg, logger, true)
		if err != nil {
			return fmt.Errorf("failed to migrate %s record store: %w", cfg.DatabaseDriver, err)
		}
		defer closeLedger()

		logger.WithField("driver", cfg.DatabaseDriver).Info("record store migrated")

		return nil
	},
}
