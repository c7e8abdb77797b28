package main

import (
	"context"
	"fmt"

	"evidencechain/internal/seed"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed a demo case with generated evidence",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "case", Aliases: []string{"c"}, Usage: "Case identifier", Value: "DEMO-CASE"},
		&cli.IntFlag{Name: "count", Usage: "Number of evidence items", Value: 5},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()
		logger := newLogger(cfg)

		blobs, err := openStorage(ctx, cfg)
		if err != nil {
			return err
		}

		ledger, closeLedger, err := openLedger(ctx, cfg, logger, true)
		if err != nil {
			return fmt.Errorf("failed to open record store: %w", err)
		}
		defer closeLedger()

		logger.Info("Connected to record store")

		services := newCustodyServices(cfg, logger, blobs, ledger)

		records, err := seed.SeedDemoCase(ctx, blobs, services.writer, c.String("case"), c.Int("count"))
		if err != nil {
			return fmt.Errorf("failed to seed demo case: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"case_id": c.String("case"),
			"records": len(records),
		}).Info("demo case seeded")

		return nil
	},
}
