package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"

	"evidencechain/internal/digest"
	"evidencechain/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var ingestCommand = &cli.Command{
	Name:  "ingest",
	Usage: "Upload a local file to blob storage and add it to a case chain",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "case", Aliases: []string{"c"}, Usage: "Case identifier", Required: true},
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Local file to upload"},
		&cli.StringFlag{Name: "path", Usage: "Storage path; with --file it defaults to <case>/<file name>, without it names an object already in storage"},
		&cli.StringFlag{Name: "evidence-id", Usage: "Identifier to record instead of a generated one"},
		&cli.StringFlag{Name: "name", Usage: "Evidence name"},
		&cli.StringFlag{Name: "description", Usage: "Evidence description"},
		&cli.StringFlag{Name: "type", Usage: "Evidence type"},
	},
	Action: ingest,
}

func ingest(c *cli.Context) error {
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
	storagePath := c.String("path")
	metadata := types.EvidenceMetadata{
		EvidenceID:   c.String("evidence-id"),
		EvidenceName: c.String("name"),
		Description:  c.String("description"),
		EvidenceType: c.String("type"),
	}

	var localHash string
	if local := c.String("file"); local != "" {
		file, err := os.Open(local)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", local, err)
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", local, err)
		}

		metadata.FileName = filepath.Base(local)
		metadata.FileSize = info.Size()
		metadata.MimeType = mime.TypeByExtension(filepath.Ext(local))

		if storagePath == "" {
			storagePath = path.Join(caseID, metadata.FileName)
		}

		contentType := metadata.MimeType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		localHash, err = hashAndRewind(file)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", local, err)
		}

		logger.WithFields(logrus.Fields{
			"file":         local,
			"path":         storagePath,
			"local_sha256": localHash,
		}).Info("uploading evidence file")

		if _, err := blobs.UploadFile(ctx, storagePath, file, contentType); err != nil {
			return fmt.Errorf("failed to upload %s: %w", local, err)
		}
	}

	if storagePath == "" {
		return fmt.Errorf("either --file or --path is required")
	}

	services := newCustodyServices(cfg, logger, blobs, ledger)

	result, err := services.writer.Ingest(ctx, &types.IngestRequest{
		FilePath: storagePath,
		CaseID:   caseID,
		Metadata: metadata,
	})
	if err != nil {
		return err
	}

	// the stored object is hashed after upload; a difference means it changed in transit
	if localHash != "" && localHash != result.Evidence.CurrentHash {
		logger.WithFields(logrus.Fields{
			"evidence_id":   result.Evidence.ID,
			"local_sha256":  localHash,
			"stored_sha256": result.Evidence.CurrentHash,
		}).Error("stored object does not match local file")
		return fmt.Errorf("evidence %s was recorded with hash %s but the local file hashes to %s", result.Evidence.ID, result.Evidence.CurrentHash, localHash)
	}

	pp.Println(result.Evidence)

	return nil
}

// hashAndRewind digests file and leaves it positioned at the start for upload.
func hashAndRewind(file io.ReadSeeker) (string, error) {
	sum, _, err := digest.Reader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return sum, nil
}
