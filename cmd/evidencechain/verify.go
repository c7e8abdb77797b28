package main

import (
	"context"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var verifyCommand = &cli.Command{
	Name:  "verify",
	Usage: "Rehash stored evidence and compare it with its recorded fingerprint",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "Evidence identifier", Required: true},
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

		result, err := newCustodyServices(cfg, logger, blobs, ledger).verifier.Verify(ctx, c.String("id"))
		if err != nil {
			return err
		}

		pp.Println(result)

		if !result.IsValid {
			return cli.Exit("", 2)
		}

		return nil
	},
}
