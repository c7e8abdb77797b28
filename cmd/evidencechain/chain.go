package main

import (
	"context"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var chainCommand = &cli.Command{
	Name:  "chain",
	Usage: "Audit every link of a case chain",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "case", Aliases: []string{"c"}, Usage: "Case identifier", Required: true},
		&cli.BoolFlag{Name: "rehash", Usage: "Also rehash every stored object"},
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()

		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		blobs, err := openStorage(ctx, cfg)
		if err != nil {
			return err
		}

		ledger, closeLedger, err := openLedger(ctx, cfg, logger, false)
		if err != nil {
			return err
		}
		defer closeLedger()

		report, err := newCustodyServices(cfg, logger, blobs, ledger).auditor.Audit(ctx, c.String("case"), c.Bool("rehash"))
		if err != nil {
			return err
		}

		pp.Println(report)

		if !report.OK {
			return cli.Exit("", 2)
		}

		return nil
	},
}
