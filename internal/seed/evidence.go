package seed

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"

	"evidencechain/internal/storage"
	"evidencechain/pkg/types"
)

var fakeEvidenceTypes = []string{
	"witness_statement",
	"photograph",
	"device_image",
	"log_export",
	"document_scan",
}

var fakeEvidenceNotes = []string{
	"Statement taken at the scene by the responding officer.",
	"Photograph of the entry point, north side of the building.",
	"Forensic image of the recovered handset.",
	"Firewall logs exported for the incident window.",
	"Scanned copy of the signed property receipt.",
	"Dashcam footage index covering the approach route.",
	"Email headers preserved from the reporting party.",
	"Hash list produced during acquisition of the laptop drive.",
}

type Ingester interface {
	Ingest(ctx context.Context, req *types.IngestRequest) (*types.IngestResult, error)
}

// SeedDemoCase uploads count generated text files under caseID and ingests
// each one, producing a linked chain for local testing.
func SeedDemoCase(
	ctx context.Context,
	uploader storage.Uploader,
	ingester Ingester,
	caseID string,
	count int,
) ([]*types.Evidence, error) {
	if count <= 0 {
		fmt.Println("Skipping demo case seed because count <= 0")
		return nil, nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	records := make([]*types.Evidence, 0, count)
	for i := 0; i < count; i++ {
		evidenceType := fakeEvidenceTypes[rng.Intn(len(fakeEvidenceTypes))]
		note := fakeEvidenceNotes[rng.Intn(len(fakeEvidenceNotes))]
		fileName := fmt.Sprintf("%03d-%s.txt", i+1, evidenceType)
		storagePath := path.Join(caseID, "seed", fileName)

		content := fmt.Sprintf("[seed] case %s item %d\n%s\ncollected %s\n", caseID, i+1, note, time.Now().UTC().Format(time.RFC3339Nano))

		if _, err := uploader.UploadFile(ctx, storagePath, strings.NewReader(content), "text/plain"); err != nil {
			return records, fmt.Errorf("failed to upload seed evidence %s: %w", storagePath, err)
		}

		result, err := ingester.Ingest(ctx, &types.IngestRequest{
			FilePath: storagePath,
			CaseID:   caseID,
			Metadata: types.EvidenceMetadata{
				FileName:     fileName,
				MimeType:     "text/plain",
				EvidenceName: fmt.Sprintf("Seed item %d", i+1),
				Description:  "[seed] " + note,
				EvidenceType: evidenceType,
			},
		})
		if err != nil {
			return records, fmt.Errorf("failed to ingest seed evidence %s: %w", storagePath, err)
		}

		records = append(records, result.Evidence)
	}

	fmt.Printf("Seeded %d evidence records for case %s\n", len(records), caseID)

	return records, nil
}
