package main

import (
	"context"
	"fmt"
	"os"

	"evidencechain/internal/report"
	"evidencechain/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var reportCommand = &cli.Command{
	Name:  "report",
	Usage: "Write a PDF chain of custody report for a case",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "case", Aliases: []string{"c"}, Usage: "Case identifier", Required: true},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file", Value: "custody-report.pdf"},
		&cli.BoolFlag{Name: "rehash", Usage: "Rehash every stored object as part of the chain audit"},
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

		caseID := c.String("case")

		chain, err := newCustodyServices(cfg, logger, blobs, ledger).auditor.Audit(ctx, caseID, c.Bool("rehash"))
		if err != nil {
			return err
		}

		records, err := ledger.EvidenceByCase(ctx, caseID, 0)
		if err != nil {
			return fmt.Errorf("failed to list case evidence: %w", err)
		}

		var audits []*types.AuditLogEntry
		for _, record := range records {
			entries, err := ledger.AuditEntries(ctx, record.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch audit log for %s: %w", record.ID, err)
			}
			audits = append(audits, entries...)
		}

		out, err := os.Create(c.String("out"))
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.String("out"), err)
		}

		if err := report.Generate(out, caseID, records, chain, audits); err != nil {
			_ = out.Close()
			return err
		}

		if err := out.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", c.String("out"), err)
		}

		logger.WithFields(logrus.Fields{
			"case_id": caseID,
			"records": len(records),
			"out":     c.String("out"),
		}).Info("custody report written")

		return nil
	},
}
