// Package report renders a case's custody chain as a PDF.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"evidencechain/internal/utils"
	"evidencechain/pkg/types"

	"github.com/phpdave11/gofpdf"
)

const fontFamily = "Helvetica"

// Generate writes an A4 custody report for caseID to w: every record of the
// chain in order, the outcome of the chain audit and the tamper entries
// recorded against the case's evidence.
func Generate(w io.Writer, caseID string, records []*types.Evidence, chain *types.ChainReport, audits []*types.AuditLogEntry) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle("Evidence Custody Report - "+safeText(caseID), false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 9, "Evidence Custody Report", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, fmt.Sprintf("Case: %s", safeText(caseID)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated at: %s", time.Now().UTC().Format(time.RFC3339)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	sectionTitle(pdf, "Chain audit")
	if chain == nil {
		kv(pdf, "Result", "not run")
	} else {
		result := "intact"
		if !chain.OK {
			result = fmt.Sprintf("%d problem(s) found", len(chain.Failures))
		}
		kv(pdf, "Result", result)
		kv(pdf, "Records", fmt.Sprintf("%d", chain.Total))
		kv(pdf, "Content rehashed", fmt.Sprintf("%t", chain.Rehashed))
		kv(pdf, "Tip hash", orDash(chain.TipHash))
		for _, failure := range chain.Failures {
			pdf.SetFont(fontFamily, "", 9)
			pdf.SetTextColor(160, 30, 30)
			pdf.MultiCell(0, 4.5, safeText(fmt.Sprintf("- #%d %s [%s] %s", failure.Index+1, failure.EvidenceID, failure.Kind, failure.Message)), "", "L", false)
		}
	}
	pdf.Ln(2)

	sectionTitle(pdf, "Chain of custody")
	if len(records) == 0 {
		empty(pdf)
	}
	for i, record := range records {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(0, 6, safeText(fmt.Sprintf("#%d  %s", i+1, record.FileName)), "", 1, "L", false, 0, "")

		kv(pdf, "Evidence ID", record.ID)
		if record.EvidenceName != nil {
			kv(pdf, "Name", *record.EvidenceName)
		}
		if record.EvidenceType != nil {
			kv(pdf, "Type", *record.EvidenceType)
		}
		kv(pdf, "Size", fmt.Sprintf("%d bytes (%s)", record.FileSize, record.MimeType))
		kv(pdf, "Stored at", record.StorageLocation)
		kv(pdf, "Created", record.CreatedAt.UTC().Format(time.RFC3339Nano))
		kv(pdf, "SHA-256", record.CurrentHash)
		kv(pdf, "Previous", orDash(utils.PtrString(record.PreviousHash)))
		kv(pdf, "Status", fmt.Sprintf("%s / %s", record.Status, record.VerificationStatus))
		pdf.Ln(1)
	}
	pdf.Ln(2)

	sectionTitle(pdf, "Tamper audit log")
	if len(audits) == 0 {
		empty(pdf)
	}
	for _, entry := range audits {
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(0, 4.5, safeText(fmt.Sprintf("%s | %s | %s | %s",
			entry.Timestamp.UTC().Format(time.RFC3339), entry.EvidenceID, entry.Action, entry.Result)), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build custody report: %w", err)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write custody report: %w", err)
	}

	return nil
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdf.GetX(), pdf.GetY(), 196, pdf.GetY())
	pdf.Ln(2)
}

func kv(pdf *gofpdf.Fpdf, key string, value string) {
	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(32, 4.8, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	pdf.MultiCell(0, 4.8, safeText(value), "", "L", false)
}

func empty(pdf *gofpdf.Fpdf) {
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, "(empty)", "", "L", false)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// safeText keeps printable ASCII; the core fonts cannot encode anything else.
func safeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if r < 0x20 || r > 0x7e {
			return '?'
		}
		return r
	}, s)
}
